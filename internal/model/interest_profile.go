package model

import (
	"database/sql/driver"
	"time"
)

// InterestProfile 用户兴趣画像，每个用户一行
type InterestProfile struct {
	UserID          uint64          `gorm:"primaryKey" json:"userId"`
	InterestTags    TagWeights      `gorm:"type:json" json:"interestTags"`
	BehaviorPattern BehaviorPattern `gorm:"type:json" json:"behaviorPattern"`
	LastUpdated     time.Time       `gorm:"not null" json:"lastUpdated"`
}

func (InterestProfile) TableName() string {
	return "user_profile"
}

// TagWeights 标签 -> 归一化后的权重
type TagWeights map[string]float64

func (w TagWeights) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	return marshalColumn(map[string]float64(w))
}

func (w *TagWeights) Scan(value any) error {
	return unmarshalColumn(value, w)
}

// BehaviorPattern 活跃时段直方图与平均会话时长（秒）
type BehaviorPattern struct {
	ActiveHours        map[int]int `json:"activeHours"`
	AvgSessionDuration float64     `json:"avgSessionDuration"`
}

func (p BehaviorPattern) Value() (driver.Value, error) {
	return marshalColumn(p)
}

func (p *BehaviorPattern) Scan(value any) error {
	return unmarshalColumn(value, p)
}

// SimilarUser 相似用户及得分
type SimilarUser struct {
	UserID uint64  `json:"userId"`
	Score  float64 `json:"score"`
}
