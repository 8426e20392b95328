package job

import (
	"context"
	log "log/slog"
	"strconv"

	"github.com/pkg/errors"
)

// RebuildSubmitter 重建队列
type RebuildSubmitter interface {
	Submit(ctx context.Context, userID uint64) bool
}

// ProfileRebuildJob 处理队列满时被推迟的画像重建
type ProfileRebuildJob struct {
	dirty   DirtyDrainer
	queue   RebuildSubmitter
	rebuild func(ctx context.Context, userID uint64) error
}

func NewProfileRebuildJob(dirty DirtyDrainer, queue RebuildSubmitter, rebuild func(ctx context.Context, userID uint64) error) *ProfileRebuildJob {
	return &ProfileRebuildJob{
		dirty:   dirty,
		queue:   queue,
		rebuild: rebuild,
	}
}

func (s *ProfileRebuildJob) Run() {
	runWithTrace("profile-rebuild", s.run)
}

// run 队列仍然满时在当前协程同步重建
func (s *ProfileRebuildJob) run(ctx context.Context) error {
	members, err := s.dirty.Drain(ctx)
	if err != nil {
		return errors.Wrap(err, "drain profile dirty set")
	}
	if len(members) == 0 {
		return nil
	}
	log.InfoContext(ctx, "ProfileRebuildJob processing", "user_count", len(members))

	queued, rebuilt := 0, 0
	var failed []string
	for _, m := range members {
		uid, err := strconv.ParseUint(m, 10, 64)
		if err != nil || uid == 0 {
			log.WarnContext(ctx, "skip invalid dirty user", "member", m)
			continue
		}
		if s.queue.Submit(ctx, uid) {
			queued++
			continue
		}
		if err = s.rebuild(ctx, uid); err != nil {
			log.ErrorContext(ctx, "rebuild profile failed", "user_id", uid, "err", err)
			failed = append(failed, m)
			continue
		}
		rebuilt++
	}
	log.InfoContext(ctx, "ProfileRebuildJob done", "queued", queued, "rebuilt", rebuilt, "failed", len(failed))

	requeue(ctx, s.dirty, failed)

	return errors.Wrap(s.dirty.Done(ctx), "clear processing set")
}
