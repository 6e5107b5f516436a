package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/settings"
)

func sampleSettings() []settings.Setting {
	return []settings.Setting{
		{Key: settings.KeyTaxRate, Value: "10", Type: settings.TypeNumber, Group: settings.GroupStore},
		{Key: settings.KeyStoreName, Value: "Zambezi Meats", Type: settings.TypeString, Group: settings.GroupGeneral, IsPublic: true},
	}
}

func TestSettingsCache_LocalOnly(t *testing.T) {
	c := NewSettingsCache(nil, time.Minute, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	c.Set(ctx, sampleSettings())
	list, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Len(t, list, 2)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestSettingsCache_LocalExpiry(t *testing.T) {
	c := NewSettingsCache(nil, time.Minute, nil)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, sampleSettings())
	now = now.Add(2 * time.Minute)

	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestSettingsCache_FallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewSettingsCache(client, time.Minute, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	c.Set(ctx, sampleSettings())
	list, ok := c.Get(ctx)
	require.True(t, ok, "local tier serves reads while redis is unreachable")
	assert.Equal(t, "10", settings.NewValues(list).String(settings.KeyTaxRate, ""))

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}
