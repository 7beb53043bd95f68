package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"
	DefaultMaxBody    = 16 << 20

	DefaultAromaticity        = "strict"
	DefaultEquivalenceTimeout = 5 * time.Second
	DefaultBatchConcurrency   = 4

	DefaultCachePrefix = "molkit:"
	DefaultCacheTTL    = 24 * time.Hour

	DefaultMetricsNamespace = "molkit"
	DefaultMetricsPath      = "/metrics"

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "molkit-worker"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "molkit-molfiles"

	DefaultLockTTL        = 2 * time.Minute
	DefaultProcessTimeout = time.Minute
	DefaultHealthPort     = 8081

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// registerDefaults seeds v with the defaults that a zero value cannot express
// and with every key that should be overridable from the environment.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)

	v.SetDefault("reader.relaxed", false)
	v.SetDefault("reader.extended", false)
	v.SetDefault("reader.parse_header", true)
	v.SetDefault("reader.rescale", false)

	v.SetDefault("annotation.aromaticity", DefaultAromaticity)
	v.SetDefault("annotation.compute_stereo", true)
	v.SetDefault("annotation.compute_hashes", true)
	v.SetDefault("annotation.equivalence_timeout", DefaultEquivalenceTimeout)
	v.SetDefault("annotation.batch_concurrency", DefaultBatchConcurrency)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", DefaultCacheTTL)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.consumer.group_id", DefaultKafkaGroupID)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
}

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// already set by the caller are left unchanged.  Booleans whose default is
// true are seeded by the loader instead, since false is a valid explicit
// value.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBody
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// ── Annotation ────────────────────────────────────────────────────────────
	if cfg.Annotation.Aromaticity == "" {
		cfg.Annotation.Aromaticity = DefaultAromaticity
	}
	if cfg.Annotation.EquivalenceTimeout == 0 {
		cfg.Annotation.EquivalenceTimeout = DefaultEquivalenceTimeout
	}
	if cfg.Annotation.BatchConcurrency == 0 {
		cfg.Annotation.BatchConcurrency = DefaultBatchConcurrency
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = "standalone"
	}
	if cfg.Redis.Addr == "" && cfg.Redis.Mode == "standalone" {
		cfg.Redis.Addr = DefaultRedisAddr
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}
	if cfg.Kafka.Consumer.GroupID == "" {
		cfg.Kafka.Consumer.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.Consumer.AutoOffsetReset == "" {
		cfg.Kafka.Consumer.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.Consumer.Retry.MaxRetries == 0 {
		cfg.Kafka.Consumer.Retry.MaxRetries = 3
	}
	if cfg.Kafka.Consumer.Retry.DeadLetterTopic == "" {
		cfg.Kafka.Consumer.Retry.DeadLetterTopic = kafka.TopicMolfileDeadLetter
	}
	if cfg.Kafka.Producer.Acks == "" {
		cfg.Kafka.Producer.Acks = "all"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.InputTopic == "" {
		cfg.Worker.InputTopic = kafka.TopicMolfileIngest
	}
	if cfg.Worker.OutputTopic == "" {
		cfg.Worker.OutputTopic = kafka.TopicMolfileAnnotated
	}
	if cfg.Worker.LockTTL == 0 {
		cfg.Worker.LockTTL = DefaultLockTTL
	}
	if cfg.Worker.ProcessTimeout == 0 {
		cfg.Worker.ProcessTimeout = DefaultProcessTimeout
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultHealthPort
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
