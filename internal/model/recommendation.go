package model

const (
	StrategyContentBased  = "content_based"
	StrategyCollaborative = "collaborative"
	StrategyPopular       = "popular"
	StrategyHybrid        = "hybrid"
)

// Recommendation 单条推荐结果
type Recommendation struct {
	ItemID   uint64       `json:"itemId"`
	ItemType string       `json:"itemType"`
	Score    float64      `json:"score"`
	Strategy string       `json:"recommendationType"`
	Content  *ContentItem `json:"content,omitempty"`
}

func (r *Recommendation) Key() ItemKey {
	return ItemKey{ItemID: r.ItemID, ItemType: r.ItemType}
}
