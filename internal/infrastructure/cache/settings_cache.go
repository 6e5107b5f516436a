package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"go.uber.org/zap"
)

const (
	settingsKey     = "settings:all"
	settingsChannel = "settings:invalidate"
)

// SettingsCache is a two-tier cache for the settings table. Redis is shared
// across instances; the local copy serves reads when redis is absent or
// failing. Invalidations are broadcast over redis pub/sub so every instance
// drops its local copy.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	local    []settings.Setting
	localExp time.Time
}

// NewSettingsCache creates a cache; client may be nil for local-only use.
func NewSettingsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SettingsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsCache{client: client, ttl: ttl, logger: logger.Named("settings_cache"), now: time.Now}
}

// Get returns the cached settings, trying the local copy first.
func (c *SettingsCache) Get(ctx context.Context) ([]settings.Setting, bool) {
	c.mu.RLock()
	if c.local != nil && c.now().Before(c.localExp) {
		list := c.local
		c.mu.RUnlock()
		return list, true
	}
	c.mu.RUnlock()

	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis read failed, using database", zap.Error(err))
		}
		return nil, false
	}
	var list []settings.Setting
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("discarding undecodable cached settings", zap.Error(err))
		return nil, false
	}
	c.setLocal(list)
	return list, true
}

// Set stores list in both tiers. Redis failures only cost a database read later.
func (c *SettingsCache) Set(ctx context.Context, list []settings.Setting) {
	c.setLocal(list)
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis write failed", zap.Error(err))
	}
}

// Invalidate drops both tiers and tells other instances to do the same.
func (c *SettingsCache) Invalidate(ctx context.Context) {
	c.dropLocal()
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		c.logger.Warn("redis delete failed", zap.Error(err))
	}
	if err := c.client.Publish(ctx, settingsChannel, "1").Err(); err != nil {
		c.logger.Warn("settings invalidation publish failed", zap.Error(err))
	}
}

// Listen drops the local copy whenever another instance invalidates. It
// blocks until ctx is cancelled.
func (c *SettingsCache) Listen(ctx context.Context) {
	if c.client == nil {
		return
	}
	sub := c.client.Subscribe(ctx, settingsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			c.dropLocal()
		}
	}
}

func (c *SettingsCache) setLocal(list []settings.Setting) {
	c.mu.Lock()
	c.local = list
	c.localExp = c.now().Add(c.ttl)
	c.mu.Unlock()
}

func (c *SettingsCache) dropLocal() {
	c.mu.Lock()
	c.local = nil
	c.mu.Unlock()
}
