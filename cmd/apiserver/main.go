// API server entry point for molkit.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
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

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting molkit API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.String("addr", cfg.Server.Addr()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, *configPath, logger)
	if err != nil {
		logger.Error("failed to initialize server", logging.Err(err))
		os.Exit(1)
	}
	defer app.close()

	srv := httpserver.NewServer(cfg.Server, app.router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", logging.Err(err))
			app.close()
			os.Exit(1)
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
	}
	logger.Info("server stopped")
}

// app holds the wired components and the closers of their clients, run in
// reverse order.
type app struct {
	router  http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newApp(ctx context.Context, cfg *config.Config, configPath string, logger logging.Logger) (*app, error) {
	a := &app{}
	var checkers []handlers.HealthChecker

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(cfg.Metrics.CollectorConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		collector = c
		metrics = prometheus.NewAppMetrics(c)
	}

	deps := annotation.Deps{Hooks: canon.DefaultHooks(), Metrics: metrics, Logger: logger}
	if cfg.Cache.Enabled {
		client, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		deps.Cache = redis.NewCache(client, logger,
			redis.WithPrefix(cfg.Cache.Prefix),
			redis.WithDefaultTTL(cfg.Cache.TTL),
		)
		checkers = append(checkers, handlers.CheckFunc{ComponentName: "redis", Fn: client.Ping})
	}

	svc, err := annotation.NewReloadable(cfg.AnnotationService(), deps)
	if err != nil {
		a.close()
		return nil, err
	}
	if configPath != "" {
		err := config.Watch(configPath, logger, func(next *config.Config) {
			if err := svc.Reload(next.AnnotationService()); err != nil {
				logger.Warn("annotation config rejected", logging.Err(err))
			}
		})
		if err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	var jobs *handlers.JobHandler
	if cfg.Server.EnableJobs {
		submitter, err := a.jobSubmitter(ctx, cfg, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		jobs = handlers.NewJobHandler(submitter.Submitter)
		checkers = append(checkers, handlers.CheckFunc{ComponentName: "minio", Fn: submitter.storage.HealthCheck})
	}

	rc := httpserver.RouterConfig{
		Mode:           cfg.Server.Mode,
		MolfileHandler: handlers.NewMolfileHandler(svc, logger),
		JobHandler:     jobs,
		HealthHandler:  handlers.NewHealthHandler(Version, checkers...),
		Logger:         logger,
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		MaxBodySize:    cfg.Server.MaxBodySize,
		Metrics:        metrics,
		Collector:      collector,
		MetricsPath:    cfg.Metrics.Path,
	}
	if cfg.Server.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimitRPS
		rl.BurstSize = cfg.Server.RateLimitBurst
		limiter := middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.CleanupInterval)
		a.closers = append(a.closers, limiter.Stop)
		rc.RateLimiter = limiter
		rc.RateLimit = rl
	}
	a.router = httpserver.NewRouter(rc)
	return a, nil
}

type jobWiring struct {
	*ingest.Submitter
	storage *minio.MinIOClient
}

func (a *app) jobSubmitter(ctx context.Context, cfg *config.Config, logger logging.Logger) (*jobWiring, error) {
	storage, err := minio.NewMinIOClient(&cfg.MinIO, logger)
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	a.closers = append(a.closers, func() { _ = storage.Close() })

	ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ensureCtx); err != nil {
		return nil, fmt.Errorf("minio bucket: %w", err)
	}

	producer, err := kafka.NewProducer(cfg.ProducerConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	a.closers = append(a.closers, func() { _ = producer.Close() })

	sub, err := ingest.NewSubmitter(minio.NewMolfileStore(storage, logger), producer, cfg.Worker.InputTopic, logger)
	if err != nil {
		return nil, err
	}
	return &jobWiring{Submitter: sub, storage: storage}, nil
}

//Personal.AI order the ending
