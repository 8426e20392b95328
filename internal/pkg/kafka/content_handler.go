package kafka

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/logger"
	"Lumen/internal/pkg/metrics"
	"Lumen/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// 内容表 -> 内容类型
var contentTables = map[string]string{
	"articles":    model.ItemTypeArticle,
	"my_articles": model.ItemTypeMyArticle,
}

// 会影响标签、技术栈或热度的列
var featureColumns = []string{"title", "content", "tech_stack", "views", "publish_date", model.MyArticleUpdatedAtColumn}

// FeatureUpdater 内容变更时需要的特征操作
type FeatureUpdater interface {
	RefreshFeatures(ctx context.Context, itemID uint64, itemType string) (*model.ContentFeature, error)
	RemoveFeatures(ctx context.Context, itemID uint64, itemType string) error
}

// ContentChangeHandler 消费文章表 binlog，保持 content_features 与内容同步
type ContentChangeHandler struct {
	features FeatureUpdater
}

func NewContentChangeHandler(features FeatureUpdater) *ContentChangeHandler {
	return &ContentChangeHandler{
		features: features,
	}
}

func (s *ContentChangeHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("content consumer setup")
	return nil
}

func (s *ContentChangeHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("content consumer cleanup")
	return nil
}

func (s *ContentChangeHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-content consume claim", "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-content process batch error", "err", err)
		return err
	}
	log.Info("topic-content consume claim end")
	return nil
}

func (s *ContentChangeHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ctx = logger.WithTraceID(ctx, "job-content-change-"+uuid.NewString())
	ctx = logger.WithTask(ctx, "content-change")

	canalMsg, err := ToCanalMessage(msg, "articles", "my_articles")
	if err != nil {
		return err
	}
	return s.apply(ctx, canalMsg)
}

// apply 同一条消息中的多行依次处理，任何一行失败整条消息重试
func (s *ContentChangeHandler) apply(ctx context.Context, canalMsg *CanalMessage) error {
	itemType, ok := contentTables[canalMsg.Table]
	if !ok {
		return ErrSkipMessage
	}
	metrics.ContentChanges.WithLabelValues(canalMsg.Table, canalMsg.Type).Inc()

	for i, row := range canalMsg.Data {
		itemID := rowUint64(row, "id")
		if itemID == 0 {
			log.WarnContext(ctx, "canal row without id", "table", canalMsg.Table)
			continue
		}

		switch canalMsg.Type {
		case canalInsert:
			if _, err := s.features.RefreshFeatures(ctx, itemID, itemType); err != nil {
				return errors.Wrapf(err, "refresh feature %s:%d", itemType, itemID)
			}
		case canalUpdate:
			if !featureColumnChanged(canalMsg.OldRow(i)) {
				continue
			}
			if _, err := s.features.RefreshFeatures(ctx, itemID, itemType); err != nil {
				return errors.Wrapf(err, "refresh feature %s:%d", itemType, itemID)
			}
		case canalDelete:
			if err := s.features.RemoveFeatures(ctx, itemID, itemType); err != nil {
				return errors.Wrapf(err, "remove feature %s:%d", itemType, itemID)
			}
		default:
			continue
		}
		log.InfoContext(ctx, "content feature synced", "type", canalMsg.Type, "item_type", itemType, "item_id", itemID)
	}
	return nil
}

// featureColumnChanged old 为空时按已变更处理
func featureColumnChanged(old map[string]interface{}) bool {
	if len(old) == 0 {
		return true
	}
	for _, col := range featureColumns {
		if _, ok := old[col]; ok {
			return true
		}
	}
	return false
}

var _ FeatureUpdater = (service.ContentFeatureService)(nil)
