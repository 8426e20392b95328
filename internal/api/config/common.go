package config

import "time"

// Config 配置主体
type Config struct {
	Server               ServerConfig         `mapstructure:"server"`
	DB                   DBConfig             `mapstructure:"database"`
	Redis                RedisConfig          `mapstructure:"redis"`
	Mongo                MongoConfig          `mapstructure:"mongo"`
	Logstash             LogstashConfig       `mapstructure:"logstash"`
	Kafka                KafkaConfig          `mapstructure:"kafka"`
	KafkaContentConsumer KafkaContentConsumer `mapstructure:"kafka_content_consumer"`
	Recommend            RecommendConfig      `mapstructure:"recommend"`
	Learning             LearningConfig       `mapstructure:"learning"`
	Cron                 CronConfig           `mapstructure:"cron"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// LogstashConfig 远程日志配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaContentConsumer 文章表 binlog 消费配置
type KafkaContentConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// RecommendConfig 推荐引擎参数，时长单位：秒（request_timeout 为毫秒）
type RecommendConfig struct {
	ProfileWindow       int     `mapstructure:"profile_window"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	SimilarUserLimit    int     `mapstructure:"similar_user_limit"`
	SimilarityTTL       int     `mapstructure:"similarity_ttl"`
	ResultTTL           int     `mapstructure:"result_ttl"`
	FallbackTTL         int     `mapstructure:"fallback_ttl"`
	RequestTimeout      int     `mapstructure:"request_timeout"`
	WorkerCount         int     `mapstructure:"worker_count"`
	QueueSize           int     `mapstructure:"queue_size"`
	DefaultLimit        int     `mapstructure:"default_limit"`
	MaxLimit            int     `mapstructure:"max_limit"`
}

func (c RecommendConfig) SimilarityTTLDuration() time.Duration {
	return time.Duration(c.SimilarityTTL) * time.Second
}

func (c RecommendConfig) ResultTTLDuration() time.Duration {
	return time.Duration(c.ResultTTL) * time.Second
}

func (c RecommendConfig) FallbackTTLDuration() time.Duration {
	return time.Duration(c.FallbackTTL) * time.Second
}

func (c RecommendConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// LearningConfig 学习进度参数，时长单位：秒
type LearningConfig struct {
	ProgressTTL         int `mapstructure:"progress_ttl"`
	CommunityTTL        int `mapstructure:"community_ttl"`
	RecentActivityLimit int `mapstructure:"recent_activity_limit"`
}

func (c LearningConfig) ProgressTTLDuration() time.Duration {
	return time.Duration(c.ProgressTTL) * time.Second
}

func (c LearningConfig) CommunityTTLDuration() time.Duration {
	return time.Duration(c.CommunityTTL) * time.Second
}

// CronConfig 定时任务表达式（带秒）
type CronConfig struct {
	ProfileRebuild    string `mapstructure:"profile_rebuild"`
	PopularityRefresh string `mapstructure:"popularity_refresh"`
	CommunitySnapshot string `mapstructure:"community_snapshot"`
}
