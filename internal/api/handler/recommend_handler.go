package handler

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/response"
	"Lumen/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultSimilarLimit = 10

type RecommendHandler struct {
	behaviorSvc   service.BehaviorService
	recommendSvc  service.RecommendService
	profileSvc    service.InterestProfileService
	similaritySvc service.SimilarityService
	featureSvc    service.ContentFeatureService
}

func NewRecommendHandler(
	behaviorSvc service.BehaviorService,
	recommendSvc service.RecommendService,
	profileSvc service.InterestProfileService,
	similaritySvc service.SimilarityService,
	featureSvc service.ContentFeatureService,
) *RecommendHandler {
	return &RecommendHandler{
		behaviorSvc:   behaviorSvc,
		recommendSvc:  recommendSvc,
		profileSvc:    profileSvc,
		similaritySvc: similaritySvc,
		featureSvc:    featureSvc,
	}
}

// RecordBehavior 记录一条用户行为
func (s *RecommendHandler) RecordBehavior(c *gin.Context) {
	var req dto.BehaviorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	behaviorID, err := s.behaviorSvc.Record(c.Request.Context(), &model.UserBehavior{
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		ItemType:   req.ItemType,
		ActionType: req.ActionType,
		Duration:   req.Duration,
		Metadata:   req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.BehaviorResp{BehaviorID: behaviorID})
}

func (s *RecommendHandler) GetRecommendations(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	var query dto.RecommendQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	if query.Type == "" {
		query.Type = model.StrategyHybrid
	}

	recs, err := s.recommendSvc.Recommend(c.Request.Context(), userID, query.Type, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := service.ToRecommendationDTOs(recs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.RecommendResp{
		UserID:          userID,
		Type:            query.Type,
		Recommendations: items,
	})
}

func (s *RecommendHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	profile, err := s.profileSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToProfileDTO(profile))
}

func (s *RecommendHandler) GetSimilarUsers(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	limit, ok := limitQuery(c, defaultSimilarLimit)
	if !ok {
		return
	}
	users, err := s.similaritySvc.FindSimilarUsers(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToSimilarUserDTOs(users))
}

// InitializeFeatures 全量计算内容特征
func (s *RecommendHandler) InitializeFeatures(c *gin.Context) {
	processed, err := s.featureSvc.InitializeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FeatureBatchResp{Processed: processed})
}

// NormalizeFeatures 历史标签格式迁移
func (s *RecommendHandler) NormalizeFeatures(c *gin.Context) {
	processed, err := s.featureSvc.NormalizeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FeatureBatchResp{Processed: processed})
}

func (s *RecommendHandler) GetStats(c *gin.Context) {
	stats, err := s.recommendSvc.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func userIDParam(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.Error(c, service.ErrInvalidUserID)
		return 0, false
	}
	return userID, true
}

func limitQuery(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	if limit == 0 {
		limit = def
	}
	return limit, true
}
