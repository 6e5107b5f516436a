package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"github.com/zambezimeats/backend/internal/interfaces/http/handler"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

func TestNewEngine_Health(t *testing.T) {
	healthy := handler.NewSystemHandler(handler.SystemInfo{Name: "zambezi-meats"},
		handler.HealthCheck{Name: "database", Check: func(context.Context) error { return nil }})
	engine := NewEngine(EngineConfig{Logger: zap.NewNop()}, healthy)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	down := handler.NewSystemHandler(handler.SystemInfo{},
		handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }})
	engine = NewEngine(EngineConfig{}, down)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestNewEngine_Metrics(t *testing.T) {
	engine := NewEngine(EngineConfig{Metrics: telemetry.NewHTTPMetrics()}, nil)
	engine.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/v1/products"`)
	assert.NotContains(t, w.Body.String(), `route="/metrics"`)
}

func TestNewEngine_BodyLimitAndRateLimit(t *testing.T) {
	limiter := middleware.NewMemoryLimiter(1, time.Minute)
	defer limiter.Stop()
	engine := NewEngine(EngineConfig{
		HTTP:    config.HTTPConfig{MaxBodySize: 16},
		Limiter: limiter,
	}, nil)
	engine.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
