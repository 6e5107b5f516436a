package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

func seedCategory(t *testing.T, repo *GormCategoryRepository, name, slug string, sortOrder int, active bool) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name, slug)
	require.NoError(t, err)
	c.SortOrder = sortOrder
	c.IsActive = active
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestGormCategoryRepository_FindAll(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	seedCategory(t, repo, "Lamb", "lamb", 2, true)
	seedCategory(t, repo, "Beef", "beef", 1, true)
	seedCategory(t, repo, "Boerewors", "boerewors", 1, true)
	seedCategory(t, repo, "Game", "game", 0, false)

	t.Run("menu order without paging", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]any{"is_active": true}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"beef", "boerewors", "lamb"}, []string{got[0].Slug, got[1].Slug, got[2].Slug})
	})

	t.Run("paged with explicit sort", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 3, OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, got, 1)
		assert.Equal(t, "lamb", got[0].Slug)
	})

	t.Run("search", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, shared.Filter{Search: " BOER "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "boerewors", got[0].Slug)
	})
}

func TestGormCategoryRepository_LookupsAndDelete(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	beef := seedCategory(t, repo, "Beef", "beef", 0, true)

	found, err := repo.FindBySlug(ctx, "beef")
	require.NoError(t, err)
	assert.Equal(t, beef.ID, found.ID)

	exists, err := repo.ExistsBySlug(ctx, "beef")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, beef.ID))
	_, err = repo.FindByID(ctx, beef.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}
