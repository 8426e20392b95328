package dto

// BehaviorReq 记录用户行为
type BehaviorReq struct {
	UserID     uint64         `json:"userId" binding:"required"`
	ItemID     uint64         `json:"itemId" binding:"required"`
	ItemType   string         `json:"itemType" binding:"required"`
	ActionType string         `json:"actionType" binding:"required"`
	Duration   int            `json:"duration" binding:"min=0"`
	Metadata   map[string]any `json:"metadata"`
}

// BehaviorResp 记录结果
type BehaviorResp struct {
	BehaviorID uint64 `json:"behaviorId"`
}
