package service

import (
	"Lumen/internal/api/config"
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/cache"
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/mongo"
	"Lumen/internal/pkg/scoring"
	"Lumen/internal/repository"
	"context"
	log "log/slog"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	topSkillLimit       = 10
	topSkillWindow      = 7 * 24 * time.Hour
	defaultSnapshotSize = 20
	maxSnapshotSize     = 100
	communityLockTTL    = time.Minute
)

// Locker 分布式锁
type Locker interface {
	TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	UnLock(ctx context.Context, key, value string)
}

// LearningService 学习进度：技能掌握度、周统计、目标、成就与社区统计
type LearningService interface {
	RecordActivity(ctx context.Context, userID uint64, data *dto.ActivityData) (*dto.ActivityResp, error)
	GetProgress(ctx context.Context, userID uint64) (*dto.ProgressDTO, error)
	GetAchievements(ctx context.Context, userID uint64) ([]*dto.AchievementDTO, error)
	GetEfficiency(ctx context.Context, userID uint64) (*dto.EfficiencyDTO, error)
	SetGoal(ctx context.Context, userID uint64, data *dto.GoalData) (*dto.GoalDTO, error)
	UpdateGoalProgress(ctx context.Context, userID uint64, goalID string, progress float64) (*dto.GoalDTO, error)
	GetCommunityStats(ctx context.Context) (*dto.CommunityStatsDTO, error)
	SnapshotCommunityStats(ctx context.Context) error
	ListSnapshots(ctx context.Context, userID uint64, limit int) ([]*dto.SnapshotDTO, error)
}

type learningServiceImpl struct {
	cfg            config.LearningConfig
	behaviors      BehaviorService
	features       ContentFeatureService
	progressRepo   repository.LearningProgressRepo
	behaviorRepo   repository.BehaviorRepo
	statsRepo      repository.CommunityStatsRepo
	snapshotRepo   mongo.LearningSnapshotRepo
	locker         Locker
	progressCache  *cache.TTLCache[*model.LearningProgress]
	communityCache *cache.TTLCache[*model.CommunityLearningStats]
	clk            clock.Clock
}

func NewLearningService(
	cfg config.LearningConfig,
	behaviors BehaviorService,
	features ContentFeatureService,
	progressRepo repository.LearningProgressRepo,
	behaviorRepo repository.BehaviorRepo,
	statsRepo repository.CommunityStatsRepo,
	snapshotRepo mongo.LearningSnapshotRepo,
	locker Locker,
	progressCache *cache.TTLCache[*model.LearningProgress],
	communityCache *cache.TTLCache[*model.CommunityLearningStats],
	clk clock.Clock,
) LearningService {
	if cfg.RecentActivityLimit <= 0 {
		cfg.RecentActivityLimit = 10
	}
	return &learningServiceImpl{
		cfg:            cfg,
		behaviors:      behaviors,
		features:       features,
		progressRepo:   progressRepo,
		behaviorRepo:   behaviorRepo,
		statsRepo:      statsRepo,
		snapshotRepo:   snapshotRepo,
		locker:         locker,
		progressCache:  progressCache,
		communityCache: communityCache,
		clk:            clk,
	}
}

// RecordActivity 记一条学习行为，更新进度并解锁新成就
func (s *learningServiceImpl) RecordActivity(ctx context.Context, userID uint64, data *dto.ActivityData) (*dto.ActivityResp, error) {
	if userID == 0 || data == nil {
		return nil, ErrMissingFields
	}
	if data.ActionType == "" {
		data.ActionType = model.ActionView
	}

	behavior := &model.UserBehavior{
		UserID:           userID,
		ItemID:           data.ItemID,
		ItemType:         data.ItemType,
		ActionType:       data.ActionType,
		Duration:         data.Duration,
		Metadata:         data.Metadata,
		LearningType:     data.LearningType,
		CompletionStatus: data.CompletionStatus,
		ProficiencyLevel: data.ProficiencyLevel,
		LearningDuration: int(math.Round(float64(data.Duration) / 60)),
	}
	activityID, err := s.behaviors.Record(ctx, behavior)
	if err != nil {
		return nil, err
	}

	skills := s.skillsFor(ctx, behavior)
	delta := scoring.SkillDelta(behavior.LearningType, behavior.CompletionStatus, behavior.Duration)
	now := s.clk.Now()

	var unlocked []model.Achievement
	progress, err := s.progressRepo.UpdateProgress(ctx, userID, func(p *model.LearningProgress) error {
		applyActivity(p, behavior, skills, delta, now, s.cfg.RecentActivityLimit)
		unlocked = unlockAchievements(p, behavior.Duration, now)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "update learning progress")
	}
	s.invalidateProgress(userID)

	if err = s.snapshotRepo.SaveSnapshot(ctx, mongo.NewLearningSnapshot(progress, activityID, now)); err != nil {
		log.WarnContext(ctx, "save learning snapshot failed", "user_id", userID, "err", err)
	}

	resp := &dto.ActivityResp{
		ActivityID:   activityID,
		SkillDelta:   make(map[string]float64, len(skills)),
		Achievements: toAchievementDTOs(unlocked),
	}
	for _, skill := range skills {
		resp.SkillDelta[skill] = delta
	}
	return resp, nil
}

// skillsFor 内容技术栈即技能，没有特征或技术栈为空时按学习类型取默认技能
func (s *learningServiceImpl) skillsFor(ctx context.Context, b *model.UserBehavior) []string {
	feature, err := s.features.GetFeatures(ctx, b.ItemID, b.ItemType)
	if err != nil {
		log.WarnContext(ctx, "load feature for learning activity failed, use default skills",
			"item_id", b.ItemID, "item_type", b.ItemType, "err", err)
	}
	if feature != nil {
		if skills := model.NewTagSet(scoring.SplitTechStack(feature.TechStack)...); len(skills) > 0 {
			return skills
		}
	}
	return scoring.DefaultSkills(b.LearningType)
}

// applyActivity 技能只增不减且封顶 1，跨周时周统计清零
func applyActivity(p *model.LearningProgress, b *model.UserBehavior, skills []string, delta float64, now time.Time, recentLimit int) {
	if p.Skills == nil {
		p.Skills = model.SkillMap{}
	}
	for _, skill := range skills {
		p.Skills[skill] = math.Min(1, p.Skills[skill]+delta)
	}

	activityType := b.LearningType
	if activityType == "" {
		activityType = b.ActionType
	}
	recent := make(model.ActivityList, 0, len(p.RecentActivities)+1)
	recent = append(recent, model.Activity{
		Type:      activityType,
		ItemID:    b.ItemID,
		ItemType:  b.ItemType,
		Duration:  b.Duration,
		Timestamp: now,
	})
	recent = append(recent, p.RecentActivities...)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	p.RecentActivities = recent

	hours := float64(b.Duration) / 3600
	if week := scoring.Week(now); p.WeeklyStats.Week != week {
		p.WeeklyStats = model.WeeklyStats{Week: week}
	}
	p.WeeklyStats.TotalHours += hours
	if b.CompletionStatus == model.CompletionCompleted {
		p.WeeklyStats.CompletedItems++
	}
	today := now.Format(time.DateOnly)
	if !slices.Contains(p.WeeklyStats.ActiveDates, today) {
		p.WeeklyStats.ActiveDates = append(p.WeeklyStats.ActiveDates, today)
	}
	p.WeeklyStats.DaysActive = len(p.WeeklyStats.ActiveDates)

	p.TotalLearningHours += hours
	day := startOfDay(now)
	p.LastLearningDate = &day
}

// unlockAchievements 只追加尚未解锁的成就，返回本次新解锁的
func unlockAchievements(p *model.LearningProgress, durationSec int, now time.Time) []model.Achievement {
	unlocked := make([]model.Achievement, 0)
	for _, a := range scoring.CheckAchievements(p, durationSec) {
		if p.HasAchievement(a.ID) {
			continue
		}
		at := now
		a.UnlockedAt = &at
		p.Achievements = append(p.Achievements, a)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

func (s *learningServiceImpl) GetProgress(ctx context.Context, userID uint64) (*dto.ProgressDTO, error) {
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProgressDTO(progress)
}

func (s *learningServiceImpl) GetAchievements(ctx context.Context, userID uint64) ([]*dto.AchievementDTO, error) {
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAchievementDTOs(progress.Achievements), nil
}

func (s *learningServiceImpl) GetEfficiency(ctx context.Context, userID uint64) (*dto.EfficiencyDTO, error) {
	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills := make(map[string]float64, len(progress.Skills))
	for k, v := range progress.Skills {
		skills[k] = v
	}
	return &dto.EfficiencyDTO{
		Efficiency:        scoring.Efficiency(progress.WeeklyStats),
		SkillDistribution: skills,
		WeeklyStats:       toWeeklyStatsDTO(progress.WeeklyStats),
		TotalHours:        progress.TotalLearningHours,
	}, nil
}

// loadProgress 没有记录时返回空进度，不落库
func (s *learningServiceImpl) loadProgress(ctx context.Context, userID uint64) (*model.LearningProgress, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	key := progressKey(userID)
	if p, ok := s.progressCache.Get(key); ok {
		return p, nil
	}

	progress, err := s.progressRepo.GetProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get learning progress")
	}
	if progress == nil {
		progress = model.NewLearningProgress(userID)
	}
	s.progressCache.Set(key, progress, s.cfg.ProgressTTLDuration())
	return progress, nil
}

func (s *learningServiceImpl) SetGoal(ctx context.Context, userID uint64, data *dto.GoalData) (*dto.GoalDTO, error) {
	if userID == 0 || data == nil || data.Title == "" {
		return nil, ErrMissingFields
	}

	goal := model.Goal{
		ID:          "goal_" + uuid.NewString(),
		Title:       data.Title,
		TargetSkill: data.TargetSkill,
		TargetDate:  data.TargetDate,
		Description: data.Description,
		Progress:    0,
		Status:      model.GoalActive,
		CreatedAt:   s.clk.Now(),
	}
	_, err := s.progressRepo.UpdateProgress(ctx, userID, func(p *model.LearningProgress) error {
		p.Goals = append(p.Goals, goal)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "save goal")
	}
	s.invalidateProgress(userID)
	return toGoalDTO(goal)
}

// UpdateGoalProgress 进度截断到 0..100，达到 100 时目标完成
func (s *learningServiceImpl) UpdateGoalProgress(ctx context.Context, userID uint64, goalID string, progress float64) (*dto.GoalDTO, error) {
	if userID == 0 || goalID == "" {
		return nil, ErrMissingFields
	}
	if math.IsNaN(progress) {
		return nil, ErrInvalidProgress
	}
	progress = math.Max(0, math.Min(100, progress))

	var updated model.Goal
	_, err := s.progressRepo.UpdateProgress(ctx, userID, func(p *model.LearningProgress) error {
		for i := range p.Goals {
			if p.Goals[i].ID != goalID {
				continue
			}
			p.Goals[i].Progress = progress
			if progress >= 100 {
				p.Goals[i].Status = model.GoalCompleted
			} else {
				p.Goals[i].Status = model.GoalActive
			}
			updated = p.Goals[i]
			return nil
		}
		return ErrGoalNotFound
	})
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, errors.Wrap(err, "update goal progress")
	}
	s.invalidateProgress(userID)
	return toGoalDTO(updated)
}

// GetCommunityStats 优先读当天快照，没有时实时计算并落库
func (s *learningServiceImpl) GetCommunityStats(ctx context.Context) (*dto.CommunityStatsDTO, error) {
	if stats, ok := s.communityCache.Get(consts.CommunityStatsKey); ok {
		return toCommunityStatsDTO(stats), nil
	}

	now := s.clk.Now()
	stats, err := s.statsRepo.GetByDate(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "get community stats")
	}
	if stats == nil {
		if stats, err = s.computeCommunityStats(ctx, now); err != nil {
			return nil, err
		}
		if err = s.statsRepo.CreateStats(ctx, stats); err != nil {
			log.WarnContext(ctx, "persist community stats failed", "err", err)
		}
	}

	s.communityCache.Set(consts.CommunityStatsKey, stats, s.cfg.CommunityTTLDuration())
	return toCommunityStatsDTO(stats), nil
}

// SnapshotCommunityStats 每日快照，多实例之间用分布式锁互斥
func (s *learningServiceImpl) SnapshotCommunityStats(ctx context.Context) error {
	now := s.clk.Now()
	lockKey := consts.CommunityStatsLock + now.Format(time.DateOnly)
	lockValue := uuid.NewString()

	ok, err := s.locker.TryLock(ctx, lockKey, lockValue, communityLockTTL)
	if err != nil {
		return errors.Wrap(err, "lock community stats")
	}
	if !ok {
		log.InfoContext(ctx, "community stats snapshot is running elsewhere, skip")
		return nil
	}
	defer s.locker.UnLock(ctx, lockKey, lockValue)

	existing, err := s.statsRepo.GetByDate(ctx, now)
	if err != nil {
		return errors.Wrap(err, "get community stats")
	}
	if existing != nil {
		return nil
	}

	stats, err := s.computeCommunityStats(ctx, now)
	if err != nil {
		return err
	}
	if err = s.statsRepo.CreateStats(ctx, stats); err != nil {
		return errors.Wrap(err, "create community stats")
	}
	s.communityCache.Invalidate(consts.CommunityStatsKey)
	log.InfoContext(ctx, "community stats snapshot created",
		"total_users", stats.TotalUsers, "active_users", stats.ActiveUsersCount)
	return nil
}

func (s *learningServiceImpl) computeCommunityStats(ctx context.Context, now time.Time) (*model.CommunityLearningStats, error) {
	stats := &model.CommunityLearningStats{
		StatDate:  startOfDay(now),
		TopSkills: model.SkillCounter{},
	}
	var stacks []*model.TechStackCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.behaviorRepo.CountDistinctUsers(gctx)
		return errors.Wrap(err, "count users")
	})
	g.Go(func() error {
		var err error
		stats.ActiveUsersCount, err = s.behaviorRepo.CountActiveUsersSince(gctx, startOfDay(now))
		return errors.Wrap(err, "count active users")
	})
	g.Go(func() error {
		var err error
		stats.AverageLearningHours, err = s.progressRepo.AverageLearningHours(gctx)
		return errors.Wrap(err, "average learning hours")
	})
	g.Go(func() error {
		var err error
		stacks, err = s.behaviorRepo.GetTopTechStacks(gctx, now.Add(-topSkillWindow), topSkillLimit)
		return errors.Wrap(err, "top tech stacks")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, st := range stacks {
		stats.TopSkills[st.TechStack] = st.Count
	}
	return stats, nil
}

func (s *learningServiceImpl) ListSnapshots(ctx context.Context, userID uint64, limit int) ([]*dto.SnapshotDTO, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = defaultSnapshotSize
	}
	if limit > maxSnapshotSize {
		limit = maxSnapshotSize
	}

	snaps, err := s.snapshotRepo.ListSnapshots(ctx, userID, int64(limit))
	if err != nil {
		return nil, errors.Wrap(err, "list learning snapshots")
	}
	out := make([]*dto.SnapshotDTO, 0, len(snaps))
	for _, snap := range snaps {
		item := &dto.SnapshotDTO{}
		if err = copier.Copy(item, snap); err != nil {
			return nil, errors.Wrap(err, "copy snapshot")
		}
		item.WeeklyStats = toWeeklyStatsDTO(snap.WeeklyStats)
		out = append(out, item)
	}
	return out, nil
}

func (s *learningServiceImpl) invalidateProgress(userID uint64) {
	s.progressCache.Invalidate(progressKey(userID))
}

func progressKey(userID uint64) string {
	return consts.LearnProgressKey + strconv.FormatUint(userID, 10)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
