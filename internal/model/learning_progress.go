package model

import (
	"database/sql/driver"
	"time"
)

// LearningProgress 用户学习进度，每个用户一行
type LearningProgress struct {
	UserID             uint64          `gorm:"primaryKey" json:"userId"`
	Skills             SkillMap        `gorm:"type:json" json:"skills"`
	RecentActivities   ActivityList    `gorm:"type:json" json:"recentActivities"`
	WeeklyStats        WeeklyStats     `gorm:"type:json" json:"weeklyStats"`
	TotalLearningHours float64         `gorm:"not null;default:0;index" json:"totalLearningHours"`
	Goals              GoalList        `gorm:"type:json" json:"goals"`
	Achievements       AchievementList `gorm:"type:json" json:"achievements"`
	LastLearningDate   *time.Time      `gorm:"type:date" json:"lastLearningDate,omitempty"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (LearningProgress) TableName() string {
	return "user_learning_progress"
}

// NewLearningProgress 空进度
func NewLearningProgress(userID uint64) *LearningProgress {
	return &LearningProgress{
		UserID:           userID,
		Skills:           SkillMap{},
		RecentActivities: ActivityList{},
		Goals:            GoalList{},
		Achievements:     AchievementList{},
	}
}

// HasAchievement 是否已解锁
func (p *LearningProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// SkillMap 技能 -> 掌握度 [0,1]
type SkillMap map[string]float64

func (m SkillMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return marshalColumn(map[string]float64(m))
}

func (m *SkillMap) Scan(value any) error {
	return unmarshalColumn(value, m)
}

// Activity 最近学习活动
type Activity struct {
	Type      string    `json:"type"`
	ItemID    uint64    `json:"itemId"`
	ItemType  string    `json:"itemType"`
	Duration  int       `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

type ActivityList []Activity

func (l ActivityList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return marshalColumn([]Activity(l))
}

func (l *ActivityList) Scan(value any) error {
	return unmarshalColumn(value, l)
}

// WeeklyStats 本周统计，ActiveDates 记录本周出现过学习行为的日期
type WeeklyStats struct {
	Week           string   `json:"week" bson:"week"`
	TotalHours     float64  `json:"total_hours" bson:"total_hours"`
	DaysActive     int      `json:"days_active" bson:"days_active"`
	CompletedItems int      `json:"completed_items" bson:"completed_items"`
	ActiveDates    []string `json:"active_dates,omitempty" bson:"active_dates,omitempty"`
}

func (s WeeklyStats) Value() (driver.Value, error) {
	return marshalColumn(s)
}

func (s *WeeklyStats) Scan(value any) error {
	return unmarshalColumn(value, s)
}

const (
	GoalActive    = "active"
	GoalCompleted = "completed"
)

// Goal 学习目标，Progress 取值 0..100
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TargetSkill string    `json:"target_skill,omitempty"`
	TargetDate  string    `json:"target_date,omitempty"`
	Description string    `json:"description,omitempty"`
	Progress    float64   `json:"progress"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type GoalList []Goal

func (l GoalList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return marshalColumn([]Goal(l))
}

func (l *GoalList) Scan(value any) error {
	return unmarshalColumn(value, l)
}

// Achievement 成就
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	BadgeURL    string     `json:"badge_url"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type AchievementList []Achievement

func (l AchievementList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return marshalColumn([]Achievement(l))
}

func (l *AchievementList) Scan(value any) error {
	return unmarshalColumn(value, l)
}
