package router

import (
	"github.com/gin-gonic/gin"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"github.com/zambezimeats/backend/internal/interfaces/http/handler"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HealthPath is served outside the versioned API.
const HealthPath = "/health"

// EngineConfig selects the global middleware. Nil TracerProvider, Metrics
// or Limiter switch the matching middleware off.
type EngineConfig struct {
	ServiceName    string
	Production     bool
	HTTP           config.HTTPConfig
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	Metrics        *telemetry.HTTPMetrics
	MetricsPath    string
	Profiling      bool
	Limiter        middleware.Limiter
}

// NewEngine builds a gin engine with the global middleware chain and the
// operational endpoints. The order is: request id, tracing, recovery,
// access log, metrics, security headers, CORS, body limit, rate limit.
// Authentication is attached per route group.
func NewEngine(cfg EngineConfig, system *handler.SystemHandler) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	quiet := []string{HealthPath, metricsPath}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	if cfg.TracerProvider != nil {
		engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracerProvider), middleware.SpanEnricher())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, quiet...))
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics, quiet...))
	}
	if cfg.Profiling {
		engine.Use(middleware.Profiling(quiet...))
	}
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig(cfg.Production)))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.Limiter != nil {
		engine.Use(middleware.RateLimit(cfg.Limiter, log))
	}

	if system != nil {
		engine.GET(HealthPath, system.Health)
	}
	if cfg.Metrics != nil {
		engine.GET(metricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}
	return engine
}
