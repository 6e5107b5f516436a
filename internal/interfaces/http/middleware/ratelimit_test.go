package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, limit int, period time.Duration) *MemoryLimiter {
	t.Helper()
	l := NewMemoryLimiter(limit, period)
	t.Cleanup(l.Stop)
	return l
}

func hit(router *gin.Engine, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks requests over the limit", func(t *testing.T) {
		l := newTestLimiter(t, 3, time.Minute)
		for i := 0; i < 3; i++ {
			d, err := l.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, d.Allowed, "request %d", i+1)
			assert.Equal(t, 2-i, d.Remaining)
		}
		d, err := l.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := newTestLimiter(t, 1, time.Minute)
		d, _ := l.Allow(ctx, "a")
		assert.True(t, d.Allowed)
		d, _ = l.Allow(ctx, "a")
		assert.False(t, d.Allowed)
		d, _ = l.Allow(ctx, "b")
		assert.True(t, d.Allowed)
	})

	t.Run("window resets", func(t *testing.T) {
		l := newTestLimiter(t, 1, time.Minute)
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		d, _ := l.Allow(ctx, "c")
		assert.True(t, d.Allowed)
		d, _ = l.Allow(ctx, "c")
		assert.False(t, d.Allowed)
		assert.Equal(t, time.Minute, d.ResetIn)

		now = now.Add(61 * time.Second)
		d, _ = l.Allow(ctx, "c")
		assert.True(t, d.Allowed)
	})
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(newTestLimiter(t, 2, time.Minute), zap.NewNop()))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		w := hit(router, http.MethodGet, "/test", "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := hit(router, http.MethodGet, "/test", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_RATE_LIMITED"`)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "10.0.0.2").Code)
}

func TestAuthRateLimit_SeparateFromGlobal(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(newTestLimiter(t, 100, time.Minute), zap.NewNop()))
	auth := router.Group("/auth")
	auth.Use(AuthRateLimit(newTestLimiter(t, 2, time.Minute), zap.NewNop()))
	auth.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/auth/login", "10.0.0.9").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodPost, "/auth/login", "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/products", "10.0.0.9").Code)
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	router := gin.New()
	router.Use(RateLimit(NewRedisLimiter(client, "global", 1, time.Minute), zap.NewNop()))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "10.0.0.1").Code)
	}
}
