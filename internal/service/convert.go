package service

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// ToRecommendationDTOs 推荐结果转返回结构
func ToRecommendationDTOs(recs []*model.Recommendation) ([]*dto.RecommendationDTO, error) {
	out := make([]*dto.RecommendationDTO, 0, len(recs))
	for _, r := range recs {
		item := &dto.RecommendationDTO{
			ItemID:             r.ItemID,
			ItemType:           r.ItemType,
			Score:              r.Score,
			RecommendationType: r.Strategy,
		}
		if r.Content != nil {
			content := &dto.ContentDTO{}
			if err := copier.Copy(content, r.Content); err != nil {
				return nil, errors.Wrapf(err, "copy content of %s %d", r.ItemType, r.ItemID)
			}
			content.Tags = append([]string{}, r.Content.Tags...)
			item.Content = content
		}
		out = append(out, item)
	}
	return out, nil
}

// ToProfileDTO 兴趣画像转返回结构
func ToProfileDTO(p *model.InterestProfile) *dto.ProfileDTO {
	out := &dto.ProfileDTO{
		UserID:             p.UserID,
		InterestTags:       make(map[string]float64, len(p.InterestTags)),
		ActiveHours:        make(map[int]int, len(p.BehaviorPattern.ActiveHours)),
		AvgSessionDuration: p.BehaviorPattern.AvgSessionDuration,
	}
	for k, v := range p.InterestTags {
		out.InterestTags[k] = v
	}
	for k, v := range p.BehaviorPattern.ActiveHours {
		out.ActiveHours[k] = v
	}
	if !p.LastUpdated.IsZero() {
		t := p.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// ToSimilarUserDTOs 相似用户转返回结构
func ToSimilarUserDTOs(users []model.SimilarUser) []*dto.SimilarUserDTO {
	out := make([]*dto.SimilarUserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, &dto.SimilarUserDTO{UserID: u.UserID, Similarity: u.Score})
	}
	return out
}

func toProgressDTO(p *model.LearningProgress) (*dto.ProgressDTO, error) {
	out := &dto.ProgressDTO{
		UserID:             p.UserID,
		Skills:             make(map[string]float64, len(p.Skills)),
		RecentActivities:   make([]*dto.ActivityDTO, 0, len(p.RecentActivities)),
		WeeklyStats:        toWeeklyStatsDTO(p.WeeklyStats),
		TotalLearningHours: p.TotalLearningHours,
		Goals:              make([]*dto.GoalDTO, 0, len(p.Goals)),
		Achievements:       toAchievementDTOs(p.Achievements),
	}
	for k, v := range p.Skills {
		out.Skills[k] = v
	}
	if err := copier.Copy(&out.RecentActivities, &p.RecentActivities); err != nil {
		return nil, errors.Wrap(err, "copy recent activities")
	}
	if err := copier.Copy(&out.Goals, &p.Goals); err != nil {
		return nil, errors.Wrap(err, "copy goals")
	}
	if p.LastLearningDate != nil {
		d := *p.LastLearningDate
		out.LastLearningDate = &d
	}
	return out, nil
}

func toWeeklyStatsDTO(s model.WeeklyStats) *dto.WeeklyStatsDTO {
	return &dto.WeeklyStatsDTO{
		Week:           s.Week,
		TotalHours:     s.TotalHours,
		DaysActive:     s.DaysActive,
		CompletedItems: s.CompletedItems,
	}
}

func toAchievementDTOs(list []model.Achievement) []*dto.AchievementDTO {
	out := make([]*dto.AchievementDTO, 0, len(list))
	for _, a := range list {
		item := &dto.AchievementDTO{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			BadgeURL:    a.BadgeURL,
		}
		if a.UnlockedAt != nil {
			t := *a.UnlockedAt
			item.UnlockedAt = &t
		}
		out = append(out, item)
	}
	return out
}

func toGoalDTO(g model.Goal) (*dto.GoalDTO, error) {
	out := &dto.GoalDTO{}
	if err := copier.Copy(out, &g); err != nil {
		return nil, errors.Wrap(err, "copy goal")
	}
	return out, nil
}

func toCommunityStatsDTO(s *model.CommunityLearningStats) *dto.CommunityStatsDTO {
	top := make(map[string]int64, len(s.TopSkills))
	for k, v := range s.TopSkills {
		top[k] = v
	}
	return &dto.CommunityStatsDTO{
		TotalUsers:           s.TotalUsers,
		ActiveUsersCount:     s.ActiveUsersCount,
		AverageLearningHours: s.AverageLearningHours,
		TopSkills:            top,
		StatDate:             s.StatDate.Format(time.DateOnly),
	}
}
