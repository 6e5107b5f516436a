package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func seedCart(t *testing.T, repo *GormCartRepository, lines int) *cart.Cart {
	t.Helper()
	c := cart.NewCart(uuid.New())
	for i := 0; i < lines; i++ {
		_, err := c.AddItem(uuid.New(), decimal.NewFromInt(1), cart.DefaultMaxLines)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestGormCartRepository_SaveReplacesLines(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	c := seedCart(t, repo, 2)

	found, err := repo.FindByUser(ctx, c.UserID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)

	require.NoError(t, found.RemoveItem(found.Items[0].ID))
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByUser(ctx, c.UserID)
	require.NoError(t, err)
	assert.Len(t, again.Items, 1)

	_, err = repo.FindByUser(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCartRepository_DeleteIdleSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	stale := seedCart(t, repo, 2)
	fresh := seedCart(t, repo, 1)
	old := time.Now().Add(-45 * 24 * time.Hour)
	require.NoError(t, db.Model(&cart.Cart{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error)

	removed, err := repo.DeleteIdleSince(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.FindByUser(ctx, stale.UserID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var orphans int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("cart_id = ?", stale.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	kept, err := repo.FindByUser(ctx, fresh.UserID)
	require.NoError(t, err)
	assert.Len(t, kept.Items, 1)

	removed, err = repo.DeleteIdleSince(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}
