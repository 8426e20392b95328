package dto

import "time"

// ActivityData 学习活动内容
type ActivityData struct {
	ItemID           uint64         `json:"itemId" validate:"required"`
	ItemType         string         `json:"itemType" validate:"required"`
	ActionType       string         `json:"actionType"`
	LearningType     string         `json:"learningType"`
	Duration         int            `json:"duration" validate:"min=0"`
	CompletionStatus string         `json:"completionStatus"`
	ProficiencyLevel int            `json:"proficiencyLevel"`
	Metadata         map[string]any `json:"metadata"`
}

// ActivityReq 记录学习活动
type ActivityReq struct {
	UserID       uint64        `json:"userId"`
	ActivityData *ActivityData `json:"activityData"`
}

// AchievementDTO 成就
type AchievementDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	BadgeURL    string     `json:"badgeUrl"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// ActivityResp 学习活动记录结果
type ActivityResp struct {
	ActivityID   uint64             `json:"activityId"`
	SkillDelta   map[string]float64 `json:"skillDelta"`
	Achievements []*AchievementDTO  `json:"achievements"`
}

// GoalData 学习目标内容
type GoalData struct {
	Title       string `json:"title" validate:"required,max=100"`
	TargetSkill string `json:"targetSkill"`
	TargetDate  string `json:"targetDate"`
	Description string `json:"description"`
}

// GoalReq 创建学习目标
type GoalReq struct {
	UserID   uint64    `json:"userId"`
	GoalData *GoalData `json:"goalData"`
}

// GoalProgressReq 更新目标进度
type GoalProgressReq struct {
	UserID   uint64   `json:"userId"`
	Progress *float64 `json:"progress"`
}

// GoalDTO 学习目标
type GoalDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TargetSkill string    `json:"targetSkill"`
	TargetDate  string    `json:"targetDate"`
	Description string    `json:"description"`
	Progress    float64   `json:"progress"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WeeklyStatsDTO 周统计
type WeeklyStatsDTO struct {
	Week           string  `json:"week"`
	TotalHours     float64 `json:"totalHours"`
	DaysActive     int     `json:"daysActive"`
	CompletedItems int     `json:"completedItems"`
}

// ActivityDTO 最近活动
type ActivityDTO struct {
	Type      string    `json:"type"`
	ItemID    uint64    `json:"itemId"`
	ItemType  string    `json:"itemType"`
	Duration  int       `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressDTO 学习进度
type ProgressDTO struct {
	UserID             uint64             `json:"userId"`
	Skills             map[string]float64 `json:"skills"`
	RecentActivities   []*ActivityDTO     `json:"recentActivities"`
	WeeklyStats        *WeeklyStatsDTO    `json:"weeklyStats"`
	TotalLearningHours float64            `json:"totalLearningHours"`
	Goals              []*GoalDTO         `json:"goals"`
	Achievements       []*AchievementDTO  `json:"achievements"`
	LastLearningDate   *time.Time         `json:"lastLearningDate,omitempty"`
}

// EfficiencyDTO 学习效率
type EfficiencyDTO struct {
	Efficiency        float64            `json:"efficiency"`
	SkillDistribution map[string]float64 `json:"skillDistribution"`
	WeeklyStats       *WeeklyStatsDTO    `json:"weeklyStats"`
	TotalHours        float64            `json:"totalHours"`
}

// CommunityStatsDTO 社区学习统计
type CommunityStatsDTO struct {
	TotalUsers           int64            `json:"totalUsers"`
	ActiveUsersCount     int64            `json:"activeUsersCount"`
	AverageLearningHours float64          `json:"averageLearningHours"`
	TopSkills            map[string]int64 `json:"topSkills"`
	StatDate             string           `json:"statDate"`
}

// SnapshotDTO 学习进度快照
type SnapshotDTO struct {
	ID                 string             `json:"id"`
	ActivityID         uint64             `json:"activityId"`
	Skills             map[string]float64 `json:"skills"`
	WeeklyStats        *WeeklyStatsDTO    `json:"weeklyStats"`
	TotalLearningHours float64            `json:"totalLearningHours"`
	Achievements       []string           `json:"achievements"`
	CreatedAt          time.Time          `json:"createdAt"`
}
