package job

import (
	"Lumen/internal/pkg/logger"
	"Lumen/internal/pkg/metrics"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// DirtyDrainer 取出待处理集合，处理完成后 Done，失败的成员重新 Mark 留给下一轮
type DirtyDrainer interface {
	Mark(ctx context.Context, member string) error
	Drain(ctx context.Context) ([]string, error)
	Done(ctx context.Context) error
}

const jobTimeout = 10 * time.Minute

// runWithTrace 生成 job 级 trace id，统一记录耗时与结果
func runWithTrace(name string, fn func(ctx context.Context) error) {
	traceID := "job-" + name + "-" + uuid.NewString()
	ctx := logger.WithTask(logger.WithTraceID(context.Background(), traceID), name)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordJob(name, err)
	if err != nil {
		log.ErrorContext(ctx, "job failed", "job", name, "cost", time.Since(start), "err", err)
		return
	}
	log.InfoContext(ctx, "job finished", "job", name, "cost", time.Since(start))
}

// requeue 把处理失败的成员放回脏集合
func requeue(ctx context.Context, dirty DirtyDrainer, failed []string) {
	for _, m := range failed {
		if err := dirty.Mark(ctx, m); err != nil {
			log.ErrorContext(ctx, "requeue dirty member failed", "member", m, "err", err)
		}
	}
	if len(failed) > 0 {
		log.WarnContext(ctx, "dirty members requeued", "count", len(failed))
	}
}
