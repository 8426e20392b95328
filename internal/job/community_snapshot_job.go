package job

import (
	"Lumen/internal/service"
	"context"
)

// CommunitySnapshotJob 每日社区学习统计快照
type CommunitySnapshotJob struct {
	learning service.LearningService
}

func NewCommunitySnapshotJob(learning service.LearningService) *CommunitySnapshotJob {
	return &CommunitySnapshotJob{
		learning: learning,
	}
}

func (s *CommunitySnapshotJob) Run() {
	runWithTrace("community-snapshot", s.run)
}

func (s *CommunitySnapshotJob) run(ctx context.Context) error {
	return s.learning.SnapshotCommunityStats(ctx)
}
