package kafka

import (
	"Lumen/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Kafka 消费者
type ConsumerManager struct {
	contentConsumer sarama.ConsumerGroup
	contentHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, features FeatureUpdater) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	contentConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaContentConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		contentConsumer: contentConsumer,
		contentHandler:  NewContentChangeHandler(features),
	}, nil
}

// Start 启动消费者并阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		for err := range m.contentConsumer.Errors() {
			log.Error("content consumer group error", "err", err)
		}
	}()

	go func() {
		topic := cfg.KafkaContentConsumer.Topic
		log.Info("Content consumer started", "topic", topic)
		for {
			if err := m.contentConsumer.Consume(ctx, []string{topic}, m.contentHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.contentConsumer.Close(); err != nil {
		log.Error("Failed to close content consumer", "err", err)
	}
	return nil
}
