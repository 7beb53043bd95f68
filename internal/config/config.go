// Package config defines the configuration structures of the molkit binaries.
// Infrastructure sections reuse the config types of the packages they
// configure; only the root structure and its validation live here.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/keyip-molkit/internal/application/annotation"
	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/database/redis"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// EnableJobs mounts POST /api/v1/jobs, which needs Kafka and MinIO.
	EnableJobs bool `mapstructure:"enable_jobs"`
	// RateLimitRPS is the per-client request rate; zero disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReaderConfig holds the default molfile reader options.  Requests may only
// switch leniency on.
type ReaderConfig struct {
	Relaxed     bool `mapstructure:"relaxed"`
	Extended    bool `mapstructure:"extended"`
	ParseHeader bool `mapstructure:"parse_header"`
	Rescale     bool `mapstructure:"rescale"`
}

// AnnotationConfig holds the derived annotation defaults.
type AnnotationConfig struct {
	Aromaticity        string        `mapstructure:"aromaticity"` // "strict" | "relaxed"
	ComputeStereo      bool          `mapstructure:"compute_stereo"`
	ComputeHashes      bool          `mapstructure:"compute_hashes"`
	EquivalenceTimeout time.Duration `mapstructure:"equivalence_timeout"`
	BatchConcurrency   int           `mapstructure:"batch_concurrency"`
}

// CacheConfig controls the redis-backed annotation cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls the prometheus registry and scrape route.
type MetricsConfig struct {
	Enabled                    bool   `mapstructure:"enabled"`
	Path                       string `mapstructure:"path"`
	prometheus.CollectorConfig `mapstructure:",squash"`
}

// KafkaConfig carries the shared broker list and the client sections.
type KafkaConfig struct {
	Brokers           []string             `mapstructure:"brokers"`
	ReplicationFactor int                  `mapstructure:"replication_factor"`
	Producer          kafka.ProducerConfig `mapstructure:"producer"`
	Consumer          kafka.ConsumerConfig `mapstructure:"consumer"`
	Security          kafka.SecurityConfig `mapstructure:"security"`
}

// WorkerConfig holds ingest worker parameters.
type WorkerConfig struct {
	InputTopic     string        `mapstructure:"input_topic"`
	OutputTopic    string        `mapstructure:"output_topic"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	EnsureTopics   bool          `mapstructure:"ensure_topics"`
	// HealthPort serves the worker probes and scrape route.
	HealthPort int `mapstructure:"health_port"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration shared by the CLI, the API server and the
// ingest worker.  Each binary reads only the sections it needs.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Reader     ReaderConfig      `mapstructure:"reader"`
	Annotation AnnotationConfig  `mapstructure:"annotation"`
	Cache      CacheConfig       `mapstructure:"cache"`
	Log        logging.LogConfig `mapstructure:"log"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Redis      redis.RedisConfig `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	MinIO      minio.MinIOConfig `mapstructure:"minio"`
	Worker     WorkerConfig      `mapstructure:"worker"`
}

// AnnotationService assembles the annotation service configuration from the
// reader, annotation and cache sections.
func (c *Config) AnnotationService() annotation.Config {
	return annotation.Config{
		Relaxed:            c.Reader.Relaxed,
		Extended:           c.Reader.Extended,
		ParseHeader:        c.Reader.ParseHeader,
		Rescale:            c.Reader.Rescale,
		Aromaticity:        c.Annotation.Aromaticity,
		ComputeStereo:      c.Annotation.ComputeStereo,
		ComputeHashes:      c.Annotation.ComputeHashes,
		EquivalenceTimeout: c.Annotation.EquivalenceTimeout,
		CacheTTL:           c.Cache.TTL,
		BatchConcurrency:   c.Annotation.BatchConcurrency,
	}
}

// ProducerConfig returns the producer section with the shared brokers and
// security settings filled in.
func (c *Config) ProducerConfig() kafka.ProducerConfig {
	p := c.Kafka.Producer
	if len(p.Brokers) == 0 {
		p.Brokers = c.Kafka.Brokers
	}
	if !p.Security.Enabled() {
		p.Security = c.Kafka.Security
	}
	return p
}

// ConsumerConfig returns the consumer section subscribed to the worker input
// topic, with the shared brokers and security settings filled in.
func (c *Config) ConsumerConfig() kafka.ConsumerConfig {
	cc := c.Kafka.Consumer
	if len(cc.Brokers) == 0 {
		cc.Brokers = c.Kafka.Brokers
	}
	if len(cc.Topics) == 0 {
		cc.Topics = []string{c.Worker.InputTopic}
	}
	if !cc.Security.Enabled() {
		cc.Security = c.Kafka.Security
	}
	return cc
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimitRPS < 0 || (c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1) {
		return fmt.Errorf("config: server.rate_limit_burst must be >= 1 when server.rate_limit_rps is set")
	}

	// Annotation
	if _, err := aromaticity.ParseMode(c.Annotation.Aromaticity); err != nil {
		return fmt.Errorf("config: annotation.aromaticity %q is invalid; expected strict|relaxed", c.Annotation.Aromaticity)
	}
	if c.Annotation.EquivalenceTimeout < 0 {
		return fmt.Errorf("config: annotation.equivalence_timeout must be >= 0")
	}
	if c.Annotation.BatchConcurrency < 1 {
		return fmt.Errorf("config: annotation.batch_concurrency must be >= 1, got %d", c.Annotation.BatchConcurrency)
	}

	// Cache
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be > 0 when the cache is enabled")
	}

	// Redis
	switch c.Redis.Mode {
	case "", "standalone":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
	case "sentinel":
		if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
			return fmt.Errorf("config: redis.master_name and redis.sentinel_addrs are required in sentinel mode")
		}
	case "cluster":
		if len(c.Redis.ClusterAddrs) == 0 {
			return fmt.Errorf("config: redis.cluster_addrs is required in cluster mode")
		}
	default:
		return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.Consumer.GroupID == "" {
		return fmt.Errorf("config: kafka.consumer.group_id is required")
	}

	// MinIO
	if c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required")
	}

	// Worker
	if c.Worker.InputTopic == "" || c.Worker.OutputTopic == "" {
		return fmt.Errorf("config: worker.input_topic and worker.output_topic are required")
	}
	if c.Worker.HealthPort < 0 || c.Worker.HealthPort > 65535 {
		return fmt.Errorf("config: worker.health_port %d is out of range [0, 65535]", c.Worker.HealthPort)
	}
	if c.Worker.InputTopic == c.Worker.OutputTopic {
		return fmt.Errorf("config: worker.output_topic must differ from worker.input_topic")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
