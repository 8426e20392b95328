package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 推荐与学习模块的可调参数默认值
func setDefaults() {
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.max_idle", 10)
	viper.SetDefault("database.max_open", 50)
	viper.SetDefault("database.max_lifetime", 60)

	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("redis.pool_size", 20)

	viper.SetDefault("mongo.url", "mongodb://127.0.0.1:27017")
	viper.SetDefault("mongo.database", "lumen")

	viper.SetDefault("kafka.consumer.session_timeout", 10)
	viper.SetDefault("kafka.consumer.heartbeat_interval", 3)
	viper.SetDefault("kafka.consumer.rebalance_timeout", 60)
	viper.SetDefault("kafka.consumer.max_processing_time", 5)
	viper.SetDefault("kafka_content_consumer.topic", "canal-content")
	viper.SetDefault("kafka_content_consumer.group_id", "lumen-content-features")

	viper.SetDefault("logstash.index", "logstash-lumen")

	viper.SetDefault("recommend.profile_window", 100)
	viper.SetDefault("recommend.similarity_threshold", 0.3)
	viper.SetDefault("recommend.similar_user_limit", 5)
	viper.SetDefault("recommend.similarity_ttl", 300)
	viper.SetDefault("recommend.result_ttl", 60)
	viper.SetDefault("recommend.fallback_ttl", 1800)
	viper.SetDefault("recommend.request_timeout", 3000)
	viper.SetDefault("recommend.worker_count", 4)
	viper.SetDefault("recommend.queue_size", 1024)
	viper.SetDefault("recommend.default_limit", 10)
	viper.SetDefault("recommend.max_limit", 50)

	viper.SetDefault("learning.progress_ttl", 300)
	viper.SetDefault("learning.community_ttl", 600)
	viper.SetDefault("learning.recent_activity_limit", 10)

	viper.SetDefault("cron.profile_rebuild", "0 */1 * * * *")
	viper.SetDefault("cron.popularity_refresh", "0 */10 * * * *")
	viper.SetDefault("cron.community_snapshot", "0 5 0 * * *")
}
