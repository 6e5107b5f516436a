package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter keeps window counters in process. Suitable for a single
// instance or when redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
}

type window struct {
	count   int
	started time.Time
}

// NewMemoryLimiter creates a limiter allowing limit requests per period and
// starts its cleanup loop. Call Stop to end the loop.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(l.period * 2)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.clients {
				if now.Sub(w.started) > l.period*2 {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the cleanup loop.
func (l *MemoryLimiter) Stop() {
	close(l.stop)
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.started) >= l.period {
		w = &window{started: now}
		l.clients[key] = w
	}
	w.count++
	return decide(l.limit, w.count, l.period-now.Sub(w.started)), nil
}

// RedisLimiter shares window counters across instances with INCR and
// EXPIRE on one key per window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	period time.Duration
}

// NewRedisLimiter creates a redis backed limiter. prefix separates the
// counters of different limits.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, period: period}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn < 0 {
		// first hit in this window, or a key left without expiry
		if err := l.client.PExpire(ctx, redisKey, l.period).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expiry: %w", err)
		}
		resetIn = l.period
	}
	return decide(l.limit, int(incr.Val()), resetIn), nil
}

func decide(limit, count int, resetIn time.Duration) Decision {
	remaining := max(limit-count, 0)
	return Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}

// RateLimit limits requests per client IP. Limiter errors let the request
// through so a redis outage does not take the API down.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, log, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests using a custom key extractor.
func RateLimitByKey(limiter Limiter, log *zap.Logger, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(d.ResetIn.Round(time.Second).Seconds())))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

// AuthRateLimit is the stricter per-IP limit in front of login and
// registration. It keys separately from the global limit.
func AuthRateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, log, func(c *gin.Context) string { return "auth:" + c.ClientIP() })
}
