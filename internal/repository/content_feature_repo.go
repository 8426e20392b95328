package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContentFeatureRepo interface {
	GetFeature(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error)
	GetFeatures(ctx context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentFeature, error)
	UpsertFeature(ctx context.Context, feature *model.ContentFeature) error
	DeleteFeature(ctx context.Context, itemID uint64, itemType string) error
	ListFeatures(ctx context.Context, afterID uint64, size int) ([]*model.ContentFeature, error)
	CountByItemType(ctx context.Context) ([]*model.ItemTypeCount, error)
	UpdateTags(ctx context.Context, id uint64, tags model.TagSet) error
}

type contentFeatureRepoImpl struct {
	db *gorm.DB
}

func NewContentFeatureRepository(db *gorm.DB) ContentFeatureRepo {
	return &contentFeatureRepoImpl{db: db}
}

// GetFeature 不存在时返回 nil, nil
func (r *contentFeatureRepoImpl) GetFeature(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error) {
	var feature model.ContentFeature
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		First(&feature).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feature, nil
}

// GetFeatures 批量获取，缺失的内容不出现在结果中
func (r *contentFeatureRepoImpl) GetFeatures(ctx context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentFeature, error) {
	result := make(map[model.ItemKey]*model.ContentFeature, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	pairs := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, []interface{}{k.ItemID, k.ItemType})
	}

	features := make([]*model.ContentFeature, 0, len(keys))
	err := r.db.WithContext(ctx).
		Where("(item_id, item_type) IN ?", pairs).
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		result[model.ItemKey{ItemID: f.ItemID, ItemType: f.ItemType}] = f
	}
	return result, nil
}

// UpsertFeature 以 (item_id, item_type) 为键整体覆盖
func (r *contentFeatureRepoImpl) UpsertFeature(ctx context.Context, feature *model.ContentFeature) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "item_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tags",
			"tech_stack",
			"popularity_score",
			"updated_at",
		}),
	}).Create(feature).Error
}

func (r *contentFeatureRepoImpl) DeleteFeature(ctx context.Context, itemID uint64, itemType string) error {
	return r.db.WithContext(ctx).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Delete(&model.ContentFeature{}).Error
}

// ListFeatures 按主键游标分页
func (r *contentFeatureRepoImpl) ListFeatures(ctx context.Context, afterID uint64, size int) ([]*model.ContentFeature, error) {
	features := make([]*model.ContentFeature, 0, size)
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(size).
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (r *contentFeatureRepoImpl) CountByItemType(ctx context.Context) ([]*model.ItemTypeCount, error) {
	counts := make([]*model.ItemTypeCount, 0, len(model.ItemTypes))
	err := r.db.WithContext(ctx).
		Model(&model.ContentFeature{}).
		Select("item_type, COUNT(*) AS count").
		Group("item_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// UpdateTags 只重写标签列，不触碰 updated_at
func (r *contentFeatureRepoImpl) UpdateTags(ctx context.Context, id uint64, tags model.TagSet) error {
	return r.db.WithContext(ctx).
		Model(&model.ContentFeature{}).
		Where("id = ?", id).
		UpdateColumn("tags", tags).Error
}
