package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/scoring"
	"Lumen/internal/repository"
	"context"
	log "log/slog"
	"slices"

	"github.com/pkg/errors"
)

const featureBatchSize = 200

// ContentFeatureService 内容特征：标签、技术栈与热度
type ContentFeatureService interface {
	GetFeatures(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error)
	GetFeaturesOrDefault(ctx context.Context, itemID uint64, itemType, learningType string) (*model.ContentFeature, error)
	UpsertFeatures(ctx context.Context, itemID uint64, itemType string, tags model.TagSet, techStack string, popularity float64) error
	ComputePopularity(ctx context.Context, itemID uint64, itemType string) (float64, error)
	RefreshFeatures(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error)
	RemoveFeatures(ctx context.Context, itemID uint64, itemType string) error
	InitializeAll(ctx context.Context) (int, error)
	NormalizeAll(ctx context.Context) (int, error)
}

type contentFeatureServiceImpl struct {
	featureRepo  repository.ContentFeatureRepo
	contentRepo  repository.ContentRepo
	behaviorRepo repository.BehaviorRepo
	clk          clock.Clock
}

func NewContentFeatureService(
	featureRepo repository.ContentFeatureRepo,
	contentRepo repository.ContentRepo,
	behaviorRepo repository.BehaviorRepo,
	clk clock.Clock,
) ContentFeatureService {
	return &contentFeatureServiceImpl{
		featureRepo:  featureRepo,
		contentRepo:  contentRepo,
		behaviorRepo: behaviorRepo,
		clk:          clk,
	}
}

// GetFeatures 不存在时返回 nil, nil
func (s *contentFeatureServiceImpl) GetFeatures(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error) {
	if !isItemType(itemType) {
		return nil, ErrInvalidItemType
	}
	feature, err := s.featureRepo.GetFeature(ctx, itemID, itemType)
	if err != nil {
		return nil, errors.Wrap(err, "get content feature")
	}
	return feature, nil
}

// GetFeaturesOrDefault 缺失特征时按学习类型返回默认特征，从不返回 nil
func (s *contentFeatureServiceImpl) GetFeaturesOrDefault(ctx context.Context, itemID uint64, itemType, learningType string) (*model.ContentFeature, error) {
	feature, err := s.GetFeatures(ctx, itemID, itemType)
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return scoring.DefaultFeature(itemID, itemType, learningType), nil
	}
	return feature, nil
}

func (s *contentFeatureServiceImpl) UpsertFeatures(ctx context.Context, itemID uint64, itemType string, tags model.TagSet, techStack string, popularity float64) error {
	if !isItemType(itemType) {
		return ErrInvalidItemType
	}
	feature := &model.ContentFeature{
		ItemID:          itemID,
		ItemType:        itemType,
		Tags:            model.NewTagSet(tags...),
		TechStack:       techStack,
		PopularityScore: popularity,
	}
	return errors.Wrap(s.featureRepo.UpsertFeature(ctx, feature), "upsert content feature")
}

// ComputePopularity 内容不存在时为 0
func (s *contentFeatureServiceImpl) ComputePopularity(ctx context.Context, itemID uint64, itemType string) (float64, error) {
	source, err := s.contentRepo.GetContentSource(ctx, itemID, itemType)
	if err != nil {
		return 0, errors.Wrap(err, "get content source")
	}
	if source == nil {
		return 0, nil
	}
	return s.popularityOf(ctx, source)
}

func (s *contentFeatureServiceImpl) popularityOf(ctx context.Context, source *model.ContentSource) (float64, error) {
	interactions, err := s.behaviorRepo.CountInteractions(ctx, source.ItemID, source.ItemType, model.PositiveActions)
	if err != nil {
		return 0, errors.Wrap(err, "count interactions")
	}
	return scoring.Popularity(source.Views, source.PublishedAt, s.clk.Now(), interactions), nil
}

// RefreshFeatures 从内容重新计算并覆盖特征，内容已删除时返回 nil
func (s *contentFeatureServiceImpl) RefreshFeatures(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error) {
	if !isItemType(itemType) {
		return nil, ErrInvalidItemType
	}
	source, err := s.contentRepo.GetContentSource(ctx, itemID, itemType)
	if err != nil {
		return nil, errors.Wrap(err, "get content source")
	}
	if source == nil {
		return nil, nil
	}
	return s.refreshFrom(ctx, source)
}

func (s *contentFeatureServiceImpl) refreshFrom(ctx context.Context, source *model.ContentSource) (*model.ContentFeature, error) {
	popularity, err := s.popularityOf(ctx, source)
	if err != nil {
		return nil, err
	}
	feature := &model.ContentFeature{
		ItemID:          source.ItemID,
		ItemType:        source.ItemType,
		Tags:            scoring.ExtractTags(source.Title, source.Content, source.TechStack),
		TechStack:       source.TechStack,
		PopularityScore: popularity,
	}
	if err = s.featureRepo.UpsertFeature(ctx, feature); err != nil {
		return nil, errors.Wrap(err, "upsert content feature")
	}
	return feature, nil
}

func (s *contentFeatureServiceImpl) RemoveFeatures(ctx context.Context, itemID uint64, itemType string) error {
	if !isItemType(itemType) {
		return ErrInvalidItemType
	}
	return errors.Wrap(s.featureRepo.DeleteFeature(ctx, itemID, itemType), "delete content feature")
}

// InitializeAll 为两类内容全量计算特征，单条失败只记录日志
func (s *contentFeatureServiceImpl) InitializeAll(ctx context.Context) (int, error) {
	processed := 0
	for _, itemType := range model.ItemTypes {
		var afterID uint64
		for {
			sources, err := s.contentRepo.ListContentSources(ctx, itemType, afterID, featureBatchSize)
			if err != nil {
				return processed, errors.Wrap(err, "list content sources")
			}
			for _, source := range sources {
				if _, err = s.refreshFrom(ctx, source); err != nil {
					log.WarnContext(ctx, "initialize feature failed",
						"item_id", source.ItemID, "item_type", source.ItemType, "err", err)
					continue
				}
				processed++
			}
			if len(sources) < featureBatchSize {
				break
			}
			afterID = sources[len(sources)-1].ItemID
		}
	}
	log.InfoContext(ctx, "content features initialized", "processed", processed)
	return processed, nil
}

// NormalizeAll 把历史格式的 tags 列统一重写为有序 JSON 数组
func (s *contentFeatureServiceImpl) NormalizeAll(ctx context.Context) (int, error) {
	rewritten := 0
	var afterID uint64
	for {
		features, err := s.featureRepo.ListFeatures(ctx, afterID, featureBatchSize)
		if err != nil {
			return rewritten, errors.Wrap(err, "list content features")
		}
		for _, f := range features {
			if err = s.featureRepo.UpdateTags(ctx, f.ID, model.NewTagSet(f.Tags...)); err != nil {
				return rewritten, errors.Wrap(err, "rewrite tags")
			}
			rewritten++
		}
		if len(features) < featureBatchSize {
			break
		}
		afterID = features[len(features)-1].ID
	}
	log.InfoContext(ctx, "content feature tags normalized", "rewritten", rewritten)
	return rewritten, nil
}

func isItemType(itemType string) bool {
	return slices.Contains(model.ItemTypes, itemType)
}
