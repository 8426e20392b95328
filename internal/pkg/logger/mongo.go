package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const mongoSlowThreshold = 200 * time.Millisecond

// NewMongoMonitor 学习快照集合的命令监控，成功命令只在变慢时记录
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration <= mongoSlowThreshold {
				return
			}
			log.WarnContext(ctx, "MongoDB command slow",
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
				log.Duration("latency", evt.Duration),
			)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB command failed",
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
				log.Duration("latency", evt.Duration),
				log.Any("err", evt.Failure),
			)
		},
	}
}
