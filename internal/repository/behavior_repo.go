package repository

import (
	"Lumen/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type BehaviorRepo interface {
	CreateBehavior(ctx context.Context, behavior *model.UserBehavior) error
	GetRecentBehaviors(ctx context.Context, userID uint64, limit int) ([]*model.UserBehavior, error)
	CountInteractions(ctx context.Context, itemID uint64, itemType string, actions []string) (int64, error)
	GetSimilarUsersItems(ctx context.Context, userIDs []uint64, excludeUserID uint64, actions []string, limit int) ([]*model.ItemInteraction, error)
	GetActionStats(ctx context.Context) ([]*model.ActionStat, error)
	CountDistinctUsers(ctx context.Context) (int64, error)
	CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error)
	GetTopTechStacks(ctx context.Context, since time.Time, limit int) ([]*model.TechStackCount, error)
}

type behaviorRepoImpl struct {
	db *gorm.DB
}

func NewBehaviorRepository(db *gorm.DB) BehaviorRepo {
	return &behaviorRepoImpl{db: db}
}

// CreateBehavior 追加一条行为日志
func (r *behaviorRepoImpl) CreateBehavior(ctx context.Context, behavior *model.UserBehavior) error {
	return r.db.WithContext(ctx).Create(behavior).Error
}

// GetRecentBehaviors 最近的 limit 条行为，新的在前
func (r *behaviorRepoImpl) GetRecentBehaviors(ctx context.Context, userID uint64, limit int) ([]*model.UserBehavior, error) {
	behaviors := make([]*model.UserBehavior, 0, limit)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&behaviors).Error
	if err != nil {
		return nil, err
	}
	return behaviors, nil
}

// CountInteractions 某内容上指定行为的总次数
func (r *behaviorRepoImpl) CountInteractions(ctx context.Context, itemID uint64, itemType string, actions []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserBehavior{}).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Where("action_type IN ?", actions).
		Count(&count).Error
	return count, err
}

// GetSimilarUsersItems 相似用户正向互动过、而目标用户从未接触过的内容
func (r *behaviorRepoImpl) GetSimilarUsersItems(ctx context.Context, userIDs []uint64, excludeUserID uint64, actions []string, limit int) ([]*model.ItemInteraction, error) {
	items := make([]*model.ItemInteraction, 0)
	if len(userIDs) == 0 {
		return items, nil
	}

	seen := r.db.
		Table("user_behavior AS seen").
		Select("1").
		Where("seen.user_id = ?", excludeUserID).
		Where("seen.item_id = ub.item_id AND seen.item_type = ub.item_type")

	err := r.db.WithContext(ctx).
		Table("user_behavior AS ub").
		Select("ub.item_id, ub.item_type, COUNT(*) AS interaction_count").
		Where("ub.user_id IN ?", userIDs).
		Where("ub.action_type IN ?", actions).
		Where("NOT EXISTS (?)", seen).
		Group("ub.item_id, ub.item_type").
		Order("interaction_count DESC, ub.item_type ASC, ub.item_id ASC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetActionStats 各行为类型的次数与平均停留时长
func (r *behaviorRepoImpl) GetActionStats(ctx context.Context) ([]*model.ActionStat, error) {
	stats := make([]*model.ActionStat, 0)
	err := r.db.WithContext(ctx).
		Model(&model.UserBehavior{}).
		Select("action_type, COUNT(*) AS count, COALESCE(AVG(duration), 0) AS avg_duration").
		Group("action_type").
		Order("count DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *behaviorRepoImpl) CountDistinctUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserBehavior{}).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *behaviorRepoImpl) CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserBehavior{}).
		Where("created_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// GetTopTechStacks 时间窗口内行为所关联内容的技术栈排行
func (r *behaviorRepoImpl) GetTopTechStacks(ctx context.Context, since time.Time, limit int) ([]*model.TechStackCount, error) {
	stacks := make([]*model.TechStackCount, 0, limit)
	err := r.db.WithContext(ctx).
		Table("user_behavior AS ub").
		Select("cf.tech_stack, COUNT(*) AS count").
		Joins("JOIN content_features cf ON cf.item_id = ub.item_id AND cf.item_type = ub.item_type").
		Where("ub.created_at >= ?", since).
		Where("cf.tech_stack <> ''").
		Group("cf.tech_stack").
		Order("count DESC").
		Limit(limit).
		Scan(&stacks).Error
	if err != nil {
		return nil, err
	}
	return stacks, nil
}
