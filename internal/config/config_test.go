package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, p := range []int{-1, 65536, 100000} {
		cfg := validConfig()
		cfg.Server.Port = p
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	}
}

func TestConfig_Validate_Fields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"server mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"rate limit burst", func(c *config.Config) { c.Server.RateLimitRPS = 5 }, "server.rate_limit_burst"},
		{"aromaticity", func(c *config.Config) { c.Annotation.Aromaticity = "loose" }, "annotation.aromaticity"},
		{"batch concurrency", func(c *config.Config) { c.Annotation.BatchConcurrency = 0 }, "annotation.batch_concurrency"},
		{"negative timeout", func(c *config.Config) { c.Annotation.EquivalenceTimeout = -time.Second }, "annotation.equivalence_timeout"},
		{"cache ttl", func(c *config.Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "cache.ttl"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"redis mode", func(c *config.Config) { c.Redis.Mode = "ring" }, "redis.mode"},
		{"sentinel", func(c *config.Config) { c.Redis.Mode = "sentinel" }, "sentinel"},
		{"cluster", func(c *config.Config) { c.Redis.Mode = "cluster" }, "redis.cluster_addrs"},
		{"brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"group id", func(c *config.Config) { c.Kafka.Consumer.GroupID = "" }, "kafka.consumer.group_id"},
		{"minio bucket", func(c *config.Config) { c.MinIO.Bucket = "" }, "minio.bucket"},
		{"same topics", func(c *config.Config) { c.Worker.OutputTopic = c.Worker.InputTopic }, "worker.output_topic"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_AnnotationService(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Reader.Relaxed = true
	cfg.Reader.ParseHeader = true
	cfg.Annotation.Aromaticity = "relaxed"
	cfg.Cache.TTL = time.Hour

	svc := cfg.AnnotationService()
	assert.True(t, svc.Relaxed)
	assert.True(t, svc.ParseHeader)
	assert.Equal(t, "relaxed", svc.Aromaticity)
	assert.Equal(t, time.Hour, svc.CacheTTL)
	assert.Equal(t, config.DefaultBatchConcurrency, svc.BatchConcurrency)
}

func TestConfig_KafkaSections(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.Brokers = []string{"k1:9092", "k2:9092"}
	cfg.Kafka.Security.SASLEnabled = true

	p := cfg.ProducerConfig()
	assert.Equal(t, cfg.Kafka.Brokers, p.Brokers)
	assert.True(t, p.Security.SASLEnabled)

	c := cfg.ConsumerConfig()
	assert.Equal(t, cfg.Kafka.Brokers, c.Brokers)
	assert.Equal(t, []string{"molfile.ingest"}, c.Topics)
	assert.Equal(t, "molfile.ingest.dlq", c.Retry.DeadLetterTopic)

	cfg.Kafka.Consumer.Brokers = []string{"other:9092"}
	assert.Equal(t, []string{"other:9092"}, cfg.ConsumerConfig().Brokers)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "127.0.0.1:9000", config.ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}

//Personal.AI order the ending
