// Ingest worker entry point for molkit.  The worker consumes ingest jobs,
// annotates their molfiles and publishes one result per job.  Messages that
// keep failing on infrastructure errors go to the dead-letter topic.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/keyip-molkit/internal/application/annotation"
	"github.com/turtacn/keyip-molkit/internal/application/ingest"
	"github.com/turtacn/keyip-molkit/internal/config"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/database/redis"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/keyip-molkit/internal/intelligence/canon"
	httpserver "github.com/turtacn/keyip-molkit/internal/interfaces/http"
	"github.com/turtacn/keyip-molkit/internal/interfaces/http/handlers"
	"github.com/turtacn/keyip-molkit/internal/interfaces/http/middleware"
)

var Version = "dev"

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting molkit worker",
		logging.String("version", Version),
		logging.String("input_topic", cfg.Worker.InputTopic),
		logging.String("output_topic", cfg.Worker.OutputTopic),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("molkit worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(cfg.Metrics.CollectorConfig, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		collector = c
		metrics = prometheus.NewAppMetrics(c)
	}

	if cfg.Worker.EnsureTopics {
		if err := ensureTopics(ctx, cfg, logger); err != nil {
			return err
		}
	}

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	storage, err := minio.NewMinIOClient(&cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	defer storage.Close()

	deps := annotation.Deps{Hooks: canon.DefaultHooks(), Metrics: metrics, Logger: logger}
	if cfg.Cache.Enabled {
		deps.Cache = redis.NewCache(rdb, logger,
			redis.WithPrefix(cfg.Cache.Prefix),
			redis.WithDefaultTTL(cfg.Cache.TTL),
		)
	}
	svc, err := annotation.NewService(cfg.AnnotationService(), deps)
	if err != nil {
		return err
	}

	producer, err := kafka.NewProducer(cfg.ProducerConfig(), logger)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	proc, err := ingest.NewProcessor(
		ingest.ProcessorConfig{OutputTopic: cfg.Worker.OutputTopic, Timeout: cfg.Worker.ProcessTimeout},
		ingest.ProcessorDeps{
			Service:   svc,
			Store:     minio.NewMolfileStore(storage, logger),
			Publisher: producer,
			Locker:    ingest.NewRedisLocker(rdb, cfg.Worker.LockTTL),
			Metrics:   metrics,
			Logger:    logger,
		},
	)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(cfg.ConsumerConfig(), logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.Subscribe(cfg.Worker.InputTopic, proc.Handle)

	health := httpserver.NewServer(
		config.ServerConfig{Host: cfg.Server.Host, Port: cfg.Worker.HealthPort, ShutdownTimeout: 5 * time.Second},
		httpserver.NewRouter(httpserver.RouterConfig{
			Mode: cfg.Server.Mode,
			HealthHandler: handlers.NewHealthHandler(Version,
				handlers.CheckFunc{ComponentName: "redis", Fn: rdb.Ping},
				handlers.CheckFunc{ComponentName: "minio", Fn: storage.HealthCheck},
			),
			Logger:        logger,
			LoggingConfig: middleware.DefaultLoggingConfig(),
			Collector:     collector,
			MetricsPath:   cfg.Metrics.Path,
		}),
		logger,
	)
	errCh := make(chan error, 1)
	go func() { errCh <- health.Start() }()

	if err := consumer.Start(ctx); err != nil {
		_ = consumer.Close()
		_ = health.Stop(context.Background())
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, draining consumer")
	case err := <-errCh:
		if err != nil {
			_ = consumer.Close()
			return fmt.Errorf("health server: %w", err)
		}
	}

	if err := consumer.Close(); err != nil {
		logger.Warn("consumer close error", logging.Err(err))
	}
	m := consumer.Metrics()
	logger.Info("consumer drained",
		logging.Int64("processed", m.MessagesProcessed),
		logging.Int64("failed", m.MessagesFailed),
		logging.Int64("dead_lettered", m.MessagesDeadLettered),
	)
	return health.Stop(context.Background())
}

func ensureTopics(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return fmt.Errorf("kafka topics: %w", err)
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.Kafka.ReplicationFactor))
}

//Personal.AI order the ending
