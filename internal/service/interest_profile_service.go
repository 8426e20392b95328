package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/cache"
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/metrics"
	"Lumen/internal/pkg/scoring"
	"Lumen/internal/repository"
	"context"
	"time"

	"github.com/pkg/errors"
)

// InterestProfileService 兴趣画像：基于最近行为窗口的整体重算
type InterestProfileService interface {
	Rebuild(ctx context.Context, userID uint64) (*model.InterestProfile, error)
	GetProfile(ctx context.Context, userID uint64) (*model.InterestProfile, error)
}

type interestProfileServiceImpl struct {
	behaviorRepo repository.BehaviorRepo
	featureRepo  repository.ContentFeatureRepo
	profileRepo  repository.InterestProfileRepo
	window       int
	clk          clock.Clock
}

func NewInterestProfileService(
	behaviorRepo repository.BehaviorRepo,
	featureRepo repository.ContentFeatureRepo,
	profileRepo repository.InterestProfileRepo,
	window int,
	clk clock.Clock,
) InterestProfileService {
	if window <= 0 {
		window = 100
	}
	return &interestProfileServiceImpl{
		behaviorRepo: behaviorRepo,
		featureRepo:  featureRepo,
		profileRepo:  profileRepo,
		window:       window,
		clk:          clk,
	}
}

// Rebuild 取最近 window 条行为，按行为权重与时间衰减累加到特征 token，再按最大值归一化
// 并发重建同一用户时后写覆盖先写
func (s *interestProfileServiceImpl) Rebuild(ctx context.Context, userID uint64) (*model.InterestProfile, error) {
	start := time.Now()
	profile, err := s.rebuild(ctx, userID)
	metrics.ProfileRebuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProfileRebuildErrors.Inc()
		return nil, err
	}
	return profile, nil
}

func (s *interestProfileServiceImpl) rebuild(ctx context.Context, userID uint64) (*model.InterestProfile, error) {
	behaviors, err := s.behaviorRepo.GetRecentBehaviors(ctx, userID, s.window)
	if err != nil {
		return nil, errors.Wrap(err, "get recent behaviors")
	}

	keys := make([]model.ItemKey, 0, len(behaviors))
	for _, b := range behaviors {
		keys = append(keys, model.ItemKey{ItemID: b.ItemID, ItemType: b.ItemType})
	}
	features, err := s.featureRepo.GetFeatures(ctx, keys)
	if err != nil {
		return nil, errors.Wrap(err, "get content features")
	}

	now := s.clk.Now()
	raw := make(map[string]float64)
	pattern := model.BehaviorPattern{ActiveHours: make(map[int]int)}
	totalDuration := 0

	for _, b := range behaviors {
		feature, ok := features[model.ItemKey{ItemID: b.ItemID, ItemType: b.ItemType}]
		if !ok {
			feature = scoring.DefaultFeature(b.ItemID, b.ItemType, b.LearningType)
		}

		weight := scoring.ActionWeight(b.ActionType, b.Duration) * scoring.TimeDecay(now.Sub(b.CreatedAt))
		for _, token := range scoring.FeatureTokens(feature) {
			raw[token] += weight
		}

		pattern.ActiveHours[b.CreatedAt.Hour()]++
		totalDuration += b.Duration
	}
	if len(behaviors) > 0 {
		pattern.AvgSessionDuration = float64(totalDuration) / float64(len(behaviors))
	}

	profile := &model.InterestProfile{
		UserID:          userID,
		InterestTags:    scoring.Normalize(raw),
		BehaviorPattern: pattern,
		LastUpdated:     now,
	}
	if err = s.profileRepo.SaveProfile(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "save interest profile")
	}
	return profile, nil
}

// GetProfile 没有画像时返回空画像
func (s *interestProfileServiceImpl) GetProfile(ctx context.Context, userID uint64) (*model.InterestProfile, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get interest profile")
	}
	if profile == nil {
		return &model.InterestProfile{
			UserID:          userID,
			InterestTags:    model.TagWeights{},
			BehaviorPattern: model.BehaviorPattern{ActiveHours: map[int]int{}},
		}, nil
	}
	return profile, nil
}

// NewProfileRebuildHandler 重建队列的任务处理：重建画像后清除相似度与推荐缓存
func NewProfileRebuildHandler(
	profiles InterestProfileService,
	similarity SimilarityService,
	resultCache *cache.TTLCache[[]*model.Recommendation],
) func(ctx context.Context, userID uint64) error {
	return func(ctx context.Context, userID uint64) error {
		if _, err := profiles.Rebuild(ctx, userID); err != nil {
			return err
		}
		similarity.Invalidate(userID)
		InvalidateRecommendations(resultCache, userID)
		return nil
	}
}
