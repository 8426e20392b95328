package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/cache"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/scoring"
	"Lumen/internal/repository"
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SimilarityService 用户间余弦相似度
type SimilarityService interface {
	CosineSimilarity(a, b model.TagWeights) float64
	FindSimilarUsers(ctx context.Context, userID uint64, limit int) ([]model.SimilarUser, error)
	Invalidate(userID uint64)
	CacheSize() int
}

type similarityServiceImpl struct {
	profileRepo repository.InterestProfileRepo
	cache       *cache.TTLCache[[]model.SimilarUser]
	threshold   float64
	ttl         time.Duration
}

func NewSimilarityService(
	profileRepo repository.InterestProfileRepo,
	similarCache *cache.TTLCache[[]model.SimilarUser],
	threshold float64,
	ttl time.Duration,
) SimilarityService {
	return &similarityServiceImpl{
		profileRepo: profileRepo,
		cache:       similarCache,
		threshold:   threshold,
		ttl:         ttl,
	}
}

func (s *similarityServiceImpl) CosineSimilarity(a, b model.TagWeights) float64 {
	return scoring.Cosine(a, b)
}

// FindSimilarUsers 得分严格大于阈值，降序，同分按扫描顺序，不包含自己
// 缓存的是完整列表，limit 只在读取时截断
func (s *similarityServiceImpl) FindSimilarUsers(ctx context.Context, userID uint64, limit int) ([]model.SimilarUser, error) {
	key := similarUsersKey(userID)
	all, ok := s.cache.Get(key)
	if !ok {
		var err error
		all, err = s.compute(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, all, s.ttl)
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]model.SimilarUser, len(all))
	copy(out, all)
	return out, nil
}

func (s *similarityServiceImpl) compute(ctx context.Context, userID uint64) ([]model.SimilarUser, error) {
	subject, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get subject profile")
	}
	if subject == nil || len(subject.InterestTags) == 0 {
		return []model.SimilarUser{}, nil
	}

	others, err := s.profileRepo.ListProfilesExcept(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list candidate profiles")
	}

	result := make([]model.SimilarUser, 0)
	for _, other := range others {
		if other.UserID == userID {
			continue
		}
		score := scoring.Cosine(subject.InterestTags, other.InterestTags)
		if score > s.threshold {
			result = append(result, model.SimilarUser{UserID: other.UserID, Score: score})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result, nil
}

// Invalidate 画像重建后调用
func (s *similarityServiceImpl) Invalidate(userID uint64) {
	s.cache.Invalidate(similarUsersKey(userID))
}

func (s *similarityServiceImpl) CacheSize() int {
	return s.cache.Len()
}

func similarUsersKey(userID uint64) string {
	return consts.SimilarUsersKey + strconv.FormatUint(userID, 10)
}
