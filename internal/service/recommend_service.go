package service

import (
	"Lumen/internal/api/config"
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/cache"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/metrics"
	"Lumen/internal/pkg/scoring"
	"Lumen/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var strategies = []string{
	model.StrategyContentBased,
	model.StrategyCollaborative,
	model.StrategyPopular,
	model.StrategyHybrid,
}

// PendingCounter 重建队列积压数
type PendingCounter interface {
	Pending() int
}

// RecommendService 推荐混合器
// 单个策略失败降级为热门，整体超时返回上一次成功的结果或热门结果，不向调用方传播策略错误
type RecommendService interface {
	Recommend(ctx context.Context, userID uint64, strategy string, limit int) ([]*model.Recommendation, error)
	InvalidateUser(userID uint64)
	GetStats(ctx context.Context) (*dto.RecommendStatsDTO, error)
}

type recommendServiceImpl struct {
	cfg          config.RecommendConfig
	profileRepo  repository.InterestProfileRepo
	contentRepo  repository.ContentRepo
	behaviorRepo repository.BehaviorRepo
	featureRepo  repository.ContentFeatureRepo
	similarity   SimilarityService
	resultCache  *cache.TTLCache[[]*model.Recommendation]
	lastGood     *cache.TTLCache[[]*model.Recommendation]
	queue        PendingCounter
}

func NewRecommendService(
	cfg config.RecommendConfig,
	profileRepo repository.InterestProfileRepo,
	contentRepo repository.ContentRepo,
	behaviorRepo repository.BehaviorRepo,
	featureRepo repository.ContentFeatureRepo,
	similarity SimilarityService,
	resultCache *cache.TTLCache[[]*model.Recommendation],
	lastGood *cache.TTLCache[[]*model.Recommendation],
	queue PendingCounter,
) RecommendService {
	return &recommendServiceImpl{
		cfg:          cfg,
		profileRepo:  profileRepo,
		contentRepo:  contentRepo,
		behaviorRepo: behaviorRepo,
		featureRepo:  featureRepo,
		similarity:   similarity,
		resultCache:  resultCache,
		lastGood:     lastGood,
		queue:        queue,
	}
}

type blendOutcome struct {
	recs []*model.Recommendation
	err  error
}

func (s *recommendServiceImpl) Recommend(ctx context.Context, userID uint64, strategy string, limit int) ([]*model.Recommendation, error) {
	if userID == 0 {
		return nil, ErrInvalidUserID
	}
	if strategy == "" {
		strategy = model.StrategyHybrid
	}
	if !slices.Contains(strategies, strategy) {
		return nil, ErrInvalidStrategy
	}
	limit = s.clampLimit(limit)

	key := recommendKey(userID, strategy, limit)
	if recs, ok := s.resultCache.Get(key); ok {
		return recs, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordRecommend(strategy, time.Since(start))
	}()

	tctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeoutDuration())
	defer cancel()

	done := make(chan blendOutcome, 1)
	go func() {
		recs, err := s.blend(tctx, userID, strategy, limit)
		done <- blendOutcome{recs: recs, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			log.WarnContext(ctx, "recommendation failed, serving fallback",
				"user_id", userID, "strategy", strategy, "err", out.err)
			return s.fallback(ctx, key, limit, "error"), nil
		}
		s.resultCache.Set(key, out.recs, s.cfg.ResultTTLDuration())
		s.lastGood.Set(key, out.recs, s.cfg.FallbackTTLDuration())
		recordServed(out.recs)
		return out.recs, nil
	case <-tctx.Done():
		log.WarnContext(ctx, "recommendation timed out, serving fallback",
			"user_id", userID, "strategy", strategy, "timeout", s.cfg.RequestTimeoutDuration())
		return s.fallback(ctx, key, limit, "timeout"), nil
	}
}

// fallback 先取该请求上一次成功的结果，没有时退回热门
func (s *recommendServiceImpl) fallback(ctx context.Context, key string, limit int, reason string) []*model.Recommendation {
	metrics.RecordFallback(reason)
	if recs, ok := s.lastGood.Get(key); ok {
		recordServed(recs)
		return recs
	}

	recs, ok := s.lastGood.Get(popularKey(limit))
	if !ok {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeoutDuration())
		defer cancel()

		var err error
		recs, err = s.popular(pctx, limit)
		if err != nil {
			log.ErrorContext(ctx, "popular fallback failed", "err", err)
			return []*model.Recommendation{}
		}
	}
	recordServed(recs)
	return recs
}

func (s *recommendServiceImpl) blend(ctx context.Context, userID uint64, strategy string, limit int) ([]*model.Recommendation, error) {
	if strategy == model.StrategyPopular {
		return s.popular(ctx, limit)
	}

	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		metrics.RecordFallback("profile_error")
		log.WarnContext(ctx, "load profile failed, degrade to popular", "user_id", userID, "err", err)
		return s.popular(ctx, limit)
	}
	if profile == nil || len(profile.InterestTags) == 0 {
		metrics.RecordFallback("cold_start")
		return s.popular(ctx, limit)
	}

	switch strategy {
	case model.StrategyContentBased:
		return s.orPopular(ctx, model.StrategyContentBased, limit, s.contentBased(profile))
	case model.StrategyCollaborative:
		return s.orPopular(ctx, model.StrategyCollaborative, limit, s.collaborative(userID))
	default:
		return s.hybrid(ctx, userID, profile, limit)
	}
}

type strategyFunc func(ctx context.Context, limit int) ([]*model.Recommendation, error)

func (s *recommendServiceImpl) orPopular(ctx context.Context, name string, limit int, fn strategyFunc) ([]*model.Recommendation, error) {
	recs, err := fn(ctx, limit)
	if err == nil {
		return recs, nil
	}
	metrics.RecordFallback(name + "_error")
	log.WarnContext(ctx, "strategy failed, degrade to popular", "strategy", name, "err", err)
	return s.popular(ctx, limit)
}

// hybrid 三个策略并发按 40/40/20 配额取候选，拼接后按 (itemType, itemId) 保留首次出现，再稳定排序截断
func (s *recommendServiceImpl) hybrid(ctx context.Context, userID uint64, profile *model.InterestProfile, limit int) ([]*model.Recommendation, error) {
	contentQuota, collabQuota, popularQuota := scoring.HybridQuotas(limit)

	var contentRecs, collabRecs, popularRecs []*model.Recommendation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contentRecs, err = s.orPopular(gctx, model.StrategyContentBased, contentQuota, s.contentBased(profile))
		return err
	})
	g.Go(func() error {
		var err error
		collabRecs, err = s.orPopular(gctx, model.StrategyCollaborative, collabQuota, s.collaborative(userID))
		return err
	})
	g.Go(func() error {
		var err error
		popularRecs, err = s.popular(gctx, popularQuota)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]*model.Recommendation, 0, len(contentRecs)+len(collabRecs)+len(popularRecs))
	candidates = append(candidates, contentRecs...)
	candidates = append(candidates, collabRecs...)
	candidates = append(candidates, popularRecs...)

	merged := dedupFirst(candidates)
	sortByScore(merged)
	return truncate(merged, limit), nil
}

func (s *recommendServiceImpl) contentBased(profile *model.InterestProfile) strategyFunc {
	return func(ctx context.Context, limit int) ([]*model.Recommendation, error) {
		items, err := s.contentRepo.ListTaggedContents(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list tagged contents")
		}

		recs := make([]*model.Recommendation, 0)
		for _, item := range items {
			score := scoring.ContentScore(profile.InterestTags, item.Tags, item.TechStack, item.Views)
			if score <= 0 {
				continue
			}
			recs = append(recs, &model.Recommendation{
				ItemID:   item.ItemID,
				ItemType: item.ItemType,
				Score:    score,
				Strategy: model.StrategyContentBased,
				Content:  item,
			})
		}
		sortByScore(recs)
		return truncate(recs, limit), nil
	}
}

// collaborative 相似用户正向互动过、目标用户没接触过的内容，得分为互动次数 / 相似用户数
func (s *recommendServiceImpl) collaborative(userID uint64) strategyFunc {
	return func(ctx context.Context, limit int) ([]*model.Recommendation, error) {
		similar, err := s.similarity.FindSimilarUsers(ctx, userID, s.cfg.SimilarUserLimit)
		if err != nil {
			return nil, err
		}
		if len(similar) == 0 || limit <= 0 {
			return []*model.Recommendation{}, nil
		}

		ids := make([]uint64, 0, len(similar))
		for _, u := range similar {
			ids = append(ids, u.UserID)
		}
		// 多取一倍，跳过已删除的内容后仍能填满
		interactions, err := s.behaviorRepo.GetSimilarUsersItems(ctx, ids, userID, model.PositiveActions, limit*2)
		if err != nil {
			return nil, errors.Wrap(err, "get similar users items")
		}

		keys := make([]model.ItemKey, 0, len(interactions))
		for _, it := range interactions {
			keys = append(keys, model.ItemKey{ItemID: it.ItemID, ItemType: it.ItemType})
		}
		contents, err := s.contentRepo.GetContentItems(ctx, keys)
		if err != nil {
			return nil, errors.Wrap(err, "get content items")
		}

		recs := make([]*model.Recommendation, 0, len(interactions))
		for i, it := range interactions {
			content := contents[keys[i]]
			if content == nil {
				continue
			}
			recs = append(recs, &model.Recommendation{
				ItemID:   it.ItemID,
				ItemType: it.ItemType,
				Score:    float64(it.InteractionCount) / float64(len(similar)),
				Strategy: model.StrategyCollaborative,
				Content:  content,
			})
		}
		sortByScore(recs)
		return truncate(recs, limit), nil
	}
}

// popular 每种内容各取 limit 条合并，按 views + popularityScore 排序
func (s *recommendServiceImpl) popular(ctx context.Context, limit int) ([]*model.Recommendation, error) {
	if limit <= 0 {
		return []*model.Recommendation{}, nil
	}

	recs := make([]*model.Recommendation, 0, limit*len(model.ItemTypes))
	for _, itemType := range model.ItemTypes {
		items, err := s.contentRepo.ListPopularContents(ctx, itemType, limit)
		if err != nil {
			return nil, errors.Wrap(err, "list popular contents")
		}
		for _, item := range items {
			recs = append(recs, &model.Recommendation{
				ItemID:   item.ItemID,
				ItemType: item.ItemType,
				Score:    scoring.PopularScore(item),
				Strategy: model.StrategyPopular,
				Content:  item,
			})
		}
	}
	sortByScore(recs)
	recs = truncate(recs, limit)

	s.lastGood.Set(popularKey(limit), recs, s.cfg.FallbackTTLDuration())
	return recs, nil
}

// InvalidateUser 画像变化后清除该用户的全部推荐缓存，上一次成功结果保留用于降级
func (s *recommendServiceImpl) InvalidateUser(userID uint64) {
	InvalidateRecommendations(s.resultCache, userID)
}

func InvalidateRecommendations(resultCache *cache.TTLCache[[]*model.Recommendation], userID uint64) {
	resultCache.InvalidatePrefix(fmt.Sprintf("%s%d:", consts.RecommendKey, userID))
}

func (s *recommendServiceImpl) GetStats(ctx context.Context) (*dto.RecommendStatsDTO, error) {
	var (
		actionStats  []*model.ActionStat
		profileCount int64
		typeCounts   []*model.ItemTypeCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actionStats, err = s.behaviorRepo.GetActionStats(gctx)
		return errors.Wrap(err, "get action stats")
	})
	g.Go(func() error {
		var err error
		profileCount, err = s.profileRepo.CountProfiles(gctx)
		return errors.Wrap(err, "count profiles")
	})
	g.Go(func() error {
		var err error
		typeCounts, err = s.featureRepo.CountByItemType(gctx)
		return errors.Wrap(err, "count features")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.RecommendStatsDTO{
		Behaviors:     make([]*dto.ActionStatDTO, 0, len(actionStats)),
		ProfileCount:  profileCount,
		FeatureCounts: make(map[string]int64, len(model.ItemTypes)),
		CacheSizes: map[string]int{
			consts.CacheSimilarUsers:  s.similarity.CacheSize(),
			consts.CacheRecommend:     s.resultCache.Len(),
			consts.CacheRecommendLast: s.lastGood.Len(),
		},
	}
	if err := copier.Copy(&out.Behaviors, &actionStats); err != nil {
		return nil, errors.Wrap(err, "copy action stats")
	}
	for _, t := range model.ItemTypes {
		out.FeatureCounts[t] = 0
	}
	for _, c := range typeCounts {
		out.FeatureCounts[c.ItemType] = c.Count
	}
	if s.queue != nil {
		out.PendingTasks = s.queue.Pending()
	}
	return out, nil
}

func (s *recommendServiceImpl) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func recommendKey(userID uint64, strategy string, limit int) string {
	return fmt.Sprintf("%s%d:%s:%d", consts.RecommendKey, userID, strategy, limit)
}

func popularKey(limit int) string {
	return consts.PopularKey + strconv.Itoa(limit)
}

// dedupFirst 按 (itemType, itemId) 去重，保留第一次出现
func dedupFirst(recs []*model.Recommendation) []*model.Recommendation {
	seen := make(map[model.ItemKey]struct{}, len(recs))
	out := make([]*model.Recommendation, 0, len(recs))
	for _, r := range recs {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func sortByScore(recs []*model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

func truncate(recs []*model.Recommendation, limit int) []*model.Recommendation {
	if limit >= 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func recordServed(recs []*model.Recommendation) {
	counts := make(map[string]int, 3)
	for _, r := range recs {
		counts[r.Strategy]++
	}
	for strategy, n := range counts {
		metrics.RecordServed(strategy, n)
	}
}
