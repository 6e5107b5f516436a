package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func newCategoryService(categories *MockCategoryRepository, products *MockProductRepository, events shared.EventPublisher) *CategoryService {
	return NewCategoryService(categories, products, events, zap.NewNop())
}

func TestCategoryService_ListActive_WithCounts(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	products := new(MockProductRepository)
	beef := newTestCategory(t, "Beef")
	lamb := newTestCategory(t, "Lamb")

	categories.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["is_active"] == true && f.OrderBy == "sort_order" && f.PageSize == 0
	})).Return([]catalog.Category{*beef, *lamb}, int64(2), nil)
	products.On("CountStorefrontByCategory", ctx).Return(map[uuid.UUID]int64{beef.ID: 12}, nil)

	out, err := newCategoryService(categories, products, nil).ListActive(ctx)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(12), out[0].ProductCount)
	assert.Equal(t, int64(0), out[1].ProductCount)
}

func TestCategoryService_GetBySlug_HidesInactive(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	category := newTestCategory(t, "Specials")
	category.SetActive(false)
	categories.On("FindBySlug", ctx, "specials").Return(category, nil)

	_, err := newCategoryService(categories, new(MockProductRepository), nil).GetBySlug(ctx, "specials")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestCategoryService_Create_DerivesSlug(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	events := &recordingPublisher{}
	categories.On("ExistsBySlug", ctx, "boerewors-sausages").Return(false, nil)
	categories.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

	inactive := false
	resp, err := newCategoryService(categories, new(MockProductRepository), events).Create(ctx, CategoryRequest{
		Name:      "Boerewors & Sausages",
		SortOrder: 3,
		IsActive:  &inactive,
	})

	require.NoError(t, err)
	assert.Equal(t, "boerewors-sausages", resp.Slug)
	assert.Equal(t, 3, resp.SortOrder)
	assert.False(t, resp.IsActive)
	require.Len(t, events.events, 1)
	assert.Equal(t, catalog.EventTypeCategoryCreated, events.events[0].EventType())
}

func TestCategoryService_Update_SlugConflict(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	category := newTestCategory(t, "Beef")
	categories.On("FindByID", ctx, category.ID).Return(category, nil)
	categories.On("ExistsBySlug", ctx, "lamb").Return(true, nil)

	_, err := newCategoryService(categories, new(MockProductRepository), nil).
		Update(ctx, category.ID, CategoryRequest{Name: "Beef", Slug: "lamb"})

	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("with products", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		category := newTestCategory(t, "Beef")
		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("CountByCategory", ctx, category.ID).Return(int64(3), nil)

		err := newCategoryService(categories, products, nil).Delete(ctx, category.ID)
		assert.True(t, shared.HasCode(err, "CATEGORY_HAS_PRODUCTS"))
		categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		category := newTestCategory(t, "Beef")
		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("CountByCategory", ctx, category.ID).Return(int64(0), nil)
		categories.On("Delete", ctx, category.ID).Return(nil)

		require.NoError(t, newCategoryService(categories, products, nil).Delete(ctx, category.ID))
		categories.AssertExpectations(t)
	})
}
