package dto

import "time"

// RecommendQuery 推荐查询参数
type RecommendQuery struct {
	Type  string `form:"type"`
	Limit int    `form:"limit" binding:"min=0"`
}

// ContentDTO 推荐内容详情
type ContentDTO struct {
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	PublishDate     time.Time `json:"publishDate"`
	Views           int64     `json:"views"`
	TechStack       string    `json:"techStack"`
	Tags            []string  `json:"tags"`
	PopularityScore float64   `json:"popularityScore"`
}

// RecommendationDTO 单条推荐
type RecommendationDTO struct {
	ItemID             uint64      `json:"itemId"`
	ItemType           string      `json:"itemType"`
	Score              float64     `json:"score"`
	RecommendationType string      `json:"recommendationType"`
	Content            *ContentDTO `json:"content,omitempty"`
}

// RecommendResp 推荐列表
type RecommendResp struct {
	UserID          uint64               `json:"userId"`
	Type            string               `json:"type"`
	Recommendations []*RecommendationDTO `json:"recommendations"`
}

// ProfileDTO 兴趣画像
type ProfileDTO struct {
	UserID             uint64             `json:"userId"`
	InterestTags       map[string]float64 `json:"interestTags"`
	ActiveHours        map[int]int        `json:"activeHours"`
	AvgSessionDuration float64            `json:"avgSessionDuration"`
	LastUpdated        *time.Time         `json:"lastUpdated,omitempty"`
}

// SimilarUserDTO 相似用户
type SimilarUserDTO struct {
	UserID     uint64  `json:"userId"`
	Similarity float64 `json:"similarity"`
}

// ActionStatDTO 行为统计
type ActionStatDTO struct {
	ActionType  string  `json:"actionType"`
	Count       int64   `json:"count"`
	AvgDuration float64 `json:"avgDuration"`
}

// RecommendStatsDTO 引擎概况
type RecommendStatsDTO struct {
	Behaviors     []*ActionStatDTO `json:"behaviors"`
	ProfileCount  int64            `json:"profileCount"`
	FeatureCounts map[string]int64 `json:"featureCounts"`
	CacheSizes    map[string]int   `json:"cacheSizes"`
	PendingTasks  int              `json:"pendingTasks"`
}

// FeatureBatchResp 批量特征任务结果
type FeatureBatchResp struct {
	Processed int `json:"processed"`
}
