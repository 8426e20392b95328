package model

import (
	"database/sql/driver"
	"time"
)

// CommunityLearningStats 社区学习统计日快照
type CommunityLearningStats struct {
	ID                   uint64       `gorm:"primaryKey" json:"id"`
	StatDate             time.Time    `gorm:"type:date;not null;uniqueIndex" json:"statDate"`
	TotalUsers           int64        `gorm:"not null;default:0" json:"total_users"`
	AverageLearningHours float64      `gorm:"not null;default:0" json:"average_learning_hours"`
	TopSkills            SkillCounter `gorm:"type:json" json:"top_skills"`
	ActiveUsersCount     int64        `gorm:"not null;default:0" json:"active_users_count"`
	CreatedAt            time.Time    `json:"createdAt"`
}

func (CommunityLearningStats) TableName() string {
	return "community_learning_stats"
}

// SkillCounter 技术栈 -> 近 7 天出现次数
type SkillCounter map[string]int64

func (c SkillCounter) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return marshalColumn(map[string]int64(c))
}

func (c *SkillCounter) Scan(value any) error {
	return unmarshalColumn(value, c)
}
