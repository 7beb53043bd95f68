// Package http assembles the molkit REST API on gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-molkit/internal/interfaces/http/handlers"
	"github.com/turtacn/keyip-molkit/internal/interfaces/http/middleware"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	"github.com/turtacn/keyip-molkit/pkg/types/common"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Mode is the gin mode: debug, release or test.
	Mode string

	MolfileHandler *handlers.MolfileHandler
	JobHandler     *handlers.JobHandler
	HealthHandler  *handlers.HealthHandler

	Logger        logging.Logger
	LoggingConfig middleware.LoggingConfig
	RateLimiter   middleware.RateLimiter
	RateLimit     middleware.RateLimitConfig
	MaxBodySize   int64

	Metrics     *prometheus.AppMetrics
	Collector   prometheus.MetricsCollector
	MetricsPath string
}

// NewRouter builds the engine: probes and the scrape route at the root, the
// molfile and job resources under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.LoggingConfig))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	r.NoRoute(func(c *gin.Context) {
		writeStatus(c, http.StatusNotFound, errors.ErrCodeNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		writeStatus(c, http.StatusMethodNotAllowed, errors.ErrCodeBadRequest)
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.Collector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.MolfileHandler != nil {
		cfg.MolfileHandler.RegisterRoutes(api)
	}
	if cfg.JobHandler != nil {
		cfg.JobHandler.RegisterRoutes(api)
	}
	return r
}

func writeStatus(c *gin.Context, status int, code errors.ErrorCode) {
	resp := common.NewErrorResponse(string(code), http.StatusText(status))
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
