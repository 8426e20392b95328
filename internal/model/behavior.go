package model

import "time"

const (
	ItemTypeArticle   = "article"
	ItemTypeMyArticle = "my_article"
)

const (
	ActionView    = "view"
	ActionLike    = "like"
	ActionCollect = "collect"
	ActionComment = "comment"
	ActionShare   = "share"
)

const (
	LearningRead     = "read"
	LearningPractice = "practice"
	LearningProject  = "project"
	LearningTest     = "test"
	LearningVideo    = "video"
)

const (
	CompletionStarted   = "started"
	CompletionCompleted = "completed"
	CompletionAbandoned = "abandoned"
)

var (
	ItemTypes        = []string{ItemTypeArticle, ItemTypeMyArticle}
	ActionTypes      = []string{ActionView, ActionLike, ActionCollect, ActionComment, ActionShare}
	PositiveActions  = []string{ActionLike, ActionCollect, ActionComment}
	LearningTypes    = []string{LearningRead, LearningPractice, LearningProject, LearningTest, LearningVideo}
	CompletionStates = []string{CompletionStarted, CompletionCompleted, CompletionAbandoned}
)

// UserBehavior 用户行为日志，只追加不修改
type UserBehavior struct {
	ID               uint64    `gorm:"primaryKey" json:"id"`
	UserID           uint64    `gorm:"not null;index:idx_user_created,priority:1" json:"userId"`
	ItemID           uint64    `gorm:"not null;index:idx_item,priority:1" json:"itemId"`
	ItemType         string    `gorm:"type:varchar(16);not null;index:idx_item,priority:2" json:"itemType"`
	ActionType       string    `gorm:"type:varchar(16);not null" json:"actionType"`
	Duration         int       `gorm:"not null;default:0" json:"duration"`
	Metadata         Metadata  `gorm:"type:json" json:"metadata"`
	LearningType     string    `gorm:"type:varchar(16);not null;default:''" json:"learningType,omitempty"`
	CompletionStatus string    `gorm:"type:varchar(16);not null;default:''" json:"completionStatus,omitempty"`
	ProficiencyLevel int       `gorm:"not null;default:0" json:"proficiencyLevel,omitempty"`
	LearningDuration int       `gorm:"not null;default:0" json:"learningDuration,omitempty"` // 分钟
	CreatedAt        time.Time `gorm:"not null;index:idx_user_created,priority:2;index:idx_created" json:"createdAt"`
}

func (UserBehavior) TableName() string {
	return "user_behavior"
}

// ItemKey 内容的复合主键
type ItemKey struct {
	ItemID   uint64 `json:"itemId"`
	ItemType string `json:"itemType"`
}

// ItemInteraction 相似用户在某个内容上的正向互动数
type ItemInteraction struct {
	ItemID           uint64 `json:"itemId"`
	ItemType         string `json:"itemType"`
	InteractionCount int64  `json:"interactionCount"`
}

// ActionStat 按行为类型聚合的统计
type ActionStat struct {
	ActionType  string  `json:"actionType"`
	Count       int64   `json:"count"`
	AvgDuration float64 `json:"avgDuration"`
}

// TechStackCount 技术栈热度
type TechStackCount struct {
	TechStack string `json:"techStack"`
	Count     int64  `json:"count"`
}
