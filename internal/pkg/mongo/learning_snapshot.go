package mongo

import (
	"Lumen/internal/model"
	"time"
)

// LearningSnapshot 每次学习活动后的进度快照，只追加不修改
type LearningSnapshot struct {
	ID                 string             `bson:"_id,omitempty" json:"id"`
	UserID             uint64             `bson:"user_id" json:"userId"`
	ActivityID         uint64             `bson:"activity_id" json:"activityId"`
	Skills             map[string]float64 `bson:"skills" json:"skills"`
	WeeklyStats        model.WeeklyStats  `bson:"weekly_stats" json:"weeklyStats"`
	TotalLearningHours float64            `bson:"total_learning_hours" json:"totalLearningHours"`
	Achievements       []string           `bson:"achievements" json:"achievements"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
}

// NewLearningSnapshot 从进度文档生成快照
func NewLearningSnapshot(p *model.LearningProgress, activityID uint64, now time.Time) *LearningSnapshot {
	skills := make(map[string]float64, len(p.Skills))
	for k, v := range p.Skills {
		skills[k] = v
	}
	ids := make([]string, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		ids = append(ids, a.ID)
	}
	return &LearningSnapshot{
		UserID:             p.UserID,
		ActivityID:         activityID,
		Skills:             skills,
		WeeklyStats:        p.WeeklyStats,
		TotalLearningHours: p.TotalLearningHours,
		Achievements:       ids,
		CreatedAt:          now,
	}
}
