package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ContentRepo 只读访问 articles / my_articles，联表带出特征
type ContentRepo interface {
	GetContentSource(ctx context.Context, itemID uint64, itemType string) (*model.ContentSource, error)
	ListContentSources(ctx context.Context, itemType string, afterID uint64, size int) ([]*model.ContentSource, error)
	ListTaggedContents(ctx context.Context) ([]*model.ContentItem, error)
	ListPopularContents(ctx context.Context, itemType string, limit int) ([]*model.ContentItem, error)
	GetContentItems(ctx context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentItem, error)
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepo {
	return &contentRepoImpl{db: db}
}

// sourceQuery 统一两类文章的列，my_article 没有浏览量，发布时间取 updatedAt
func (r *contentRepoImpl) sourceQuery(ctx context.Context, itemType string) (*gorm.DB, string, error) {
	switch itemType {
	case model.ItemTypeArticle:
		return r.db.WithContext(ctx).
			Table("articles AS c").
			Select("c.id AS item_id, ? AS item_type, c.title, c.content, c.tech_stack, c.views, c.publish_date AS published_at", itemType), "c.id", nil
	case model.ItemTypeMyArticle:
		return r.db.WithContext(ctx).
			Table("my_articles AS c").
			Select("c.id AS item_id, ? AS item_type, c.title, c.content, c.tech_stack, 0 AS views, c."+model.MyArticleUpdatedAtColumn+" AS published_at", itemType), "c.id", nil
	}
	return nil, "", fmt.Errorf("unknown item type %q", itemType)
}

// itemQuery 内容与特征的左联视图，没有特征的内容 tags 为空
func (r *contentRepoImpl) itemQuery(ctx context.Context, itemType string) (*gorm.DB, error) {
	switch itemType {
	case model.ItemTypeArticle:
		return r.db.WithContext(ctx).
			Table("articles AS c").
			Select("c.id AS item_id, ? AS item_type, c.title, c.author, c.publish_date, c.views, c.tech_stack, "+
				"cf.tags, COALESCE(cf.popularity_score, 0) AS popularity_score", itemType).
			Joins("LEFT JOIN content_features cf ON cf.item_id = c.id AND cf.item_type = ?", itemType), nil
	case model.ItemTypeMyArticle:
		return r.db.WithContext(ctx).
			Table("my_articles AS c").
			Select("c.id AS item_id, ? AS item_type, c.title, '' AS author, c."+model.MyArticleUpdatedAtColumn+" AS publish_date, 0 AS views, c.tech_stack, "+
				"cf.tags, COALESCE(cf.popularity_score, 0) AS popularity_score", itemType).
			Joins("LEFT JOIN content_features cf ON cf.item_id = c.id AND cf.item_type = ?", itemType), nil
	}
	return nil, fmt.Errorf("unknown item type %q", itemType)
}

// GetContentSource 内容不存在时返回 nil, nil
func (r *contentRepoImpl) GetContentSource(ctx context.Context, itemID uint64, itemType string) (*model.ContentSource, error) {
	query, idCol, err := r.sourceQuery(ctx, itemType)
	if err != nil {
		return nil, err
	}

	var source model.ContentSource
	err = query.Where(idCol+" = ?", itemID).Take(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

// ListContentSources 按主键游标分页，用于批量初始化特征
func (r *contentRepoImpl) ListContentSources(ctx context.Context, itemType string, afterID uint64, size int) ([]*model.ContentSource, error) {
	query, idCol, err := r.sourceQuery(ctx, itemType)
	if err != nil {
		return nil, err
	}

	sources := make([]*model.ContentSource, 0, size)
	err = query.
		Where(idCol+" > ?", afterID).
		Order(idCol + " ASC").
		Limit(size).
		Scan(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// ListTaggedContents 两类内容全集，供基于内容的打分
func (r *contentRepoImpl) ListTaggedContents(ctx context.Context) ([]*model.ContentItem, error) {
	items := make([]*model.ContentItem, 0)
	for _, itemType := range model.ItemTypes {
		query, err := r.itemQuery(ctx, itemType)
		if err != nil {
			return nil, err
		}
		part := make([]*model.ContentItem, 0)
		if err = query.Order("c.id ASC").Scan(&part).Error; err != nil {
			return nil, err
		}
		items = append(items, part...)
	}
	return items, nil
}

// ListPopularContents 单一类型的热门内容，article 先按浏览量，my_article 按热度再按更新时间
func (r *contentRepoImpl) ListPopularContents(ctx context.Context, itemType string, limit int) ([]*model.ContentItem, error) {
	query, err := r.popularQuery(ctx, itemType, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*model.ContentItem, 0, limit)
	if err = query.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *contentRepoImpl) popularQuery(ctx context.Context, itemType string, limit int) (*gorm.DB, error) {
	query, err := r.itemQuery(ctx, itemType)
	if err != nil {
		return nil, err
	}

	if itemType == model.ItemTypeArticle {
		query = query.Order("c.views DESC").Order("popularity_score DESC")
	} else {
		query = query.Order("popularity_score DESC").Order("c." + model.MyArticleUpdatedAtColumn + " DESC")
	}
	return query.Order("c.id ASC").Limit(limit), nil
}

// GetContentItems 批量补全推荐结果的内容详情
func (r *contentRepoImpl) GetContentItems(ctx context.Context, keys []model.ItemKey) (map[model.ItemKey]*model.ContentItem, error) {
	result := make(map[model.ItemKey]*model.ContentItem, len(keys))

	ids := make(map[string][]uint64, len(model.ItemTypes))
	for _, k := range keys {
		ids[k.ItemType] = append(ids[k.ItemType], k.ItemID)
	}

	for itemType, list := range ids {
		query, err := r.itemQuery(ctx, itemType)
		if err != nil {
			return nil, err
		}
		items := make([]*model.ContentItem, 0, len(list))
		if err = query.Where("c.id IN ?", list).Scan(&items).Error; err != nil {
			return nil, err
		}
		for _, item := range items {
			result[model.ItemKey{ItemID: item.ItemID, ItemType: item.ItemType}] = item
		}
	}
	return result, nil
}
