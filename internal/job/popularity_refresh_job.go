package job

import (
	"Lumen/internal/service"
	"context"
	log "log/slog"

	"github.com/pkg/errors"
)

// PopularityRefreshJob 重新计算有新互动的内容特征
type PopularityRefreshJob struct {
	dirty    DirtyDrainer
	features service.ContentFeatureService
}

func NewPopularityRefreshJob(dirty DirtyDrainer, features service.ContentFeatureService) *PopularityRefreshJob {
	return &PopularityRefreshJob{
		dirty:    dirty,
		features: features,
	}
}

func (s *PopularityRefreshJob) Run() {
	runWithTrace("popularity-refresh", s.run)
}

func (s *PopularityRefreshJob) run(ctx context.Context) error {
	members, err := s.dirty.Drain(ctx)
	if err != nil {
		return errors.Wrap(err, "drain feature dirty set")
	}
	if len(members) == 0 {
		return nil
	}

	refreshed := 0
	var failed []string
	for _, m := range members {
		key, ok := service.ParseFeatureMember(m)
		if !ok {
			log.WarnContext(ctx, "skip invalid dirty item", "member", m)
			continue
		}
		if _, err = s.features.RefreshFeatures(ctx, key.ItemID, key.ItemType); err != nil {
			log.ErrorContext(ctx, "refresh feature failed",
				"item_id", key.ItemID, "item_type", key.ItemType, "err", err)
			failed = append(failed, m)
			continue
		}
		refreshed++
	}
	log.InfoContext(ctx, "PopularityRefreshJob done", "total", len(members), "refreshed", refreshed, "failed", len(failed))

	requeue(ctx, s.dirty, failed)

	return errors.Wrap(s.dirty.Done(ctx), "clear processing set")
}
