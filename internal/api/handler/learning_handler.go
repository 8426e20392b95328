package handler

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/pkg/response"
	"Lumen/internal/pkg/util"
	"Lumen/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultSnapshotLimit = 20

type LearningHandler struct {
	learningSvc service.LearningService
}

func NewLearningHandler(learningSvc service.LearningService) *LearningHandler {
	return &LearningHandler{
		learningSvc: learningSvc,
	}
}

func (s *LearningHandler) GetProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	progress, err := s.learningSvc.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, progress)
}

// RecordActivity 记录学习活动，返回技能增量与新解锁的成就
func (s *LearningHandler) RecordActivity(c *gin.Context) {
	var req dto.ActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if req.UserID == 0 || req.ActivityData == nil {
		response.Error(c, service.ErrMissingFields)
		return
	}
	if err := util.ValidateDTO(req.ActivityData); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	resp, err := s.learningSvc.RecordActivity(c.Request.Context(), req.UserID, req.ActivityData)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

func (s *LearningHandler) GetCommunityStats(c *gin.Context) {
	stats, err := s.learningSvc.GetCommunityStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (s *LearningHandler) SetGoal(c *gin.Context) {
	var req dto.GoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if req.UserID == 0 || req.GoalData == nil {
		response.Error(c, service.ErrMissingFields)
		return
	}
	if err := util.ValidateDTO(req.GoalData); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	goal, err := s.learningSvc.SetGoal(c.Request.Context(), req.UserID, req.GoalData)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, goal)
}

func (s *LearningHandler) UpdateGoalProgress(c *gin.Context) {
	var req dto.GoalProgressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if req.UserID == 0 || req.Progress == nil {
		response.Error(c, service.ErrMissingFields)
		return
	}

	goal, err := s.learningSvc.UpdateGoalProgress(c.Request.Context(), req.UserID, c.Param("goal_id"), *req.Progress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, goal)
}

func (s *LearningHandler) GetAchievements(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	achievements, err := s.learningSvc.GetAchievements(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, achievements)
}

func (s *LearningHandler) GetEfficiency(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	efficiency, err := s.learningSvc.GetEfficiency(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, efficiency)
}

func (s *LearningHandler) ListSnapshots(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	limit, ok := limitQuery(c, defaultSnapshotLimit)
	if !ok {
		return
	}
	snapshots, err := s.learningSvc.ListSnapshots(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshots)
}
