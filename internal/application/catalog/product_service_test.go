package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/sanitize"
	"go.uber.org/zap"
)

type productFixture struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	storage    *MockObjectStorage
	events     *recordingPublisher
	svc        *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		storage:    new(MockObjectStorage),
		events:     &recordingPublisher{},
	}
	f.svc = NewProductService(f.products, f.categories, f.storage, sanitize.New(), f.events, zap.NewNop())
	return f
}

func newTestCategory(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name, catalog.Slugify(name))
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func newTestProduct(t *testing.T, categoryID uuid.UUID, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(categoryID, name, catalog.Slugify(name), "SKU-"+uuid.NewString()[:6], catalog.UnitKilogram, decimal.NewFromInt(30))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func validProductRequest(categoryID uuid.UUID) ProductRequest {
	return ProductRequest{
		CategoryID:       categoryID,
		Name:             "Beef Rump Steak",
		SKU:              "beef-rump",
		Description:      `<p>Grass fed</p><script>alert(1)</script>`,
		ShortDescription: "Tender <b>rump</b>",
		Unit:             "kg",
		Price:            decimal.RequireFromString("32.99"),
	}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	category := newTestCategory(t, "Beef")

	f.categories.On("FindByID", ctx, category.ID).Return(category, nil)
	f.products.On("ExistsBySKU", ctx, "BEEF-RUMP").Return(false, nil)
	f.products.On("ExistsBySlug", ctx, "beef-rump-steak").Return(true, nil)
	f.products.On("ExistsBySlug", ctx, "beef-rump-steak-2").Return(false, nil)
	f.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := f.svc.Create(ctx, validProductRequest(category.ID))

	require.NoError(t, err)
	assert.Equal(t, "beef-rump-steak-2", resp.Slug)
	assert.Equal(t, "BEEF-RUMP", resp.SKU)
	assert.Equal(t, "<p>Grass fed</p>", resp.Description)
	assert.Equal(t, "Tender rump", resp.ShortDescription)
	assert.True(t, resp.StockQuantity.IsZero())
	assert.Equal(t, "Beef", resp.Category.Name)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, catalog.EventTypeProductCreated, f.events.events[0].EventType())
}

func TestProductService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture()
		id := uuid.New()
		f.categories.On("FindByID", ctx, id).Return(nil, shared.NotFound("Category"))

		_, err := f.svc.Create(ctx, validProductRequest(id))
		assert.True(t, shared.HasCode(err, "INVALID_CATEGORY"))
	})

	t.Run("duplicate sku", func(t *testing.T) {
		f := newProductFixture()
		category := newTestCategory(t, "Beef")
		f.categories.On("FindByID", ctx, category.ID).Return(category, nil)
		f.products.On("ExistsBySKU", ctx, "BEEF-RUMP").Return(true, nil)

		_, err := f.svc.Create(ctx, validProductRequest(category.ID))
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("sale price above price", func(t *testing.T) {
		f := newProductFixture()
		category := newTestCategory(t, "Beef")
		f.categories.On("FindByID", ctx, category.ID).Return(category, nil)
		f.products.On("ExistsBySKU", ctx, "BEEF-RUMP").Return(false, nil)
		f.products.On("ExistsBySlug", ctx, "beef-rump-steak").Return(false, nil)

		req := validProductRequest(category.ID)
		sale := decimal.NewFromInt(40)
		req.SalePrice = &sale
		_, err := f.svc.Create(ctx, req)
		assert.Error(t, err)
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("explicit slug taken", func(t *testing.T) {
		f := newProductFixture()
		category := newTestCategory(t, "Beef")
		f.categories.On("FindByID", ctx, category.ID).Return(category, nil)
		f.products.On("ExistsBySKU", ctx, "BEEF-RUMP").Return(false, nil)
		f.products.On("ExistsBySlug", ctx, "rump").Return(true, nil)

		req := validProductRequest(category.ID)
		req.Slug = "rump"
		_, err := f.svc.Create(ctx, req)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})
}

func TestProductService_ListStorefront_BuildsFilter(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	category := newTestCategory(t, "Lamb")
	product := newTestProduct(t, category.ID, "Lamb Chops")
	inStock := true

	f.categories.On("FindBySlug", ctx, "lamb").Return(category, nil)
	f.categories.On("FindByID", ctx, category.ID).Return(category, nil).Once()
	f.products.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
		min, _ := filter.Filters["min_price"].(decimal.Decimal)
		return filter.Filters["storefront"] == true &&
			filter.Filters["category_id"] == category.ID &&
			filter.Filters["in_stock"] == true &&
			min.Equal(decimal.NewFromInt(10)) &&
			filter.OrderBy == "price" && filter.OrderDir == "asc" &&
			filter.Page == 1 && filter.PageSize == 20
	})).Return([]catalog.Product{*product}, int64(1), nil)

	page, err := f.svc.ListStorefront(ctx, ProductListQuery{
		Category: "lamb",
		MinPrice: "10",
		InStock:  &inStock,
		Sort:     "price_asc",
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lamb", page.Items[0].Category.Slug)
	f.products.AssertExpectations(t)
	f.categories.AssertExpectations(t)
}

func TestProductService_ListStorefront_UnknownCategoryIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	f.categories.On("FindBySlug", ctx, "venison").Return(nil, shared.NotFound("Category"))

	page, err := f.svc.ListStorefront(ctx, ProductListQuery{Category: "venison"})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	f.products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestProductService_ListStorefront_InvalidPrice(t *testing.T) {
	f := newProductFixture()
	_, err := f.svc.ListStorefront(context.Background(), ProductListQuery{MaxPrice: "cheap"})
	assert.True(t, shared.HasCode(err, "INVALID_FILTER"))
}

func TestProductService_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("includes related products", func(t *testing.T) {
		f := newProductFixture()
		category := newTestCategory(t, "Chicken")
		product := newTestProduct(t, category.ID, "Chicken Thighs")
		other := newTestProduct(t, category.ID, "Chicken Wings")

		f.products.On("FindBySlug", ctx, product.Slug).Return(product, nil)
		f.categories.On("FindByID", ctx, category.ID).Return(category, nil)
		f.products.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.PageSize == 4 && filter.Filters["exclude_id"] == product.ID
		})).Return([]catalog.Product{*other}, int64(1), nil)

		resp, err := f.svc.GetBySlug(ctx, product.Slug)
		require.NoError(t, err)
		assert.Equal(t, product.ID, resp.ID)
		require.Len(t, resp.Related, 1)
		assert.Equal(t, other.ID, resp.Related[0].ID)
	})

	t.Run("inactive product is hidden", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, uuid.New(), "Boerewors")
		require.NoError(t, product.Deactivate())
		f.products.On("FindBySlug", ctx, product.Slug).Return(product, nil)

		_, err := f.svc.GetBySlug(ctx, product.Slug)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("inactive category hides product", func(t *testing.T) {
		f := newProductFixture()
		category := newTestCategory(t, "Game")
		category.SetActive(false)
		product := newTestProduct(t, category.ID, "Kudu Fillet")
		f.products.On("FindBySlug", ctx, product.Slug).Return(product, nil)
		f.categories.On("FindByID", ctx, category.ID).Return(category, nil)

		_, err := f.svc.GetBySlug(ctx, product.Slug)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestProductService_ListAdmin_HidesArchivedByDefault(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	lowStock := true
	f.products.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
		_, hasStatus := filter.Filters["status"]
		return filter.Filters["archived"] == false && !hasStatus && filter.Filters["low_stock"] == true
	})).Return([]catalog.Product{}, int64(0), nil)

	_, err := f.svc.ListAdmin(ctx, AdminProductListQuery{LowStock: &lowStock})
	require.NoError(t, err)
	f.products.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("referenced product is archived", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, uuid.New(), "T-Bone")
		product.SetFeatured(true)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.products.On("IsReferenced", ctx, product.ID).Return(true, nil)
		f.products.On("Save", ctx, product).Return(nil)

		resp, err := f.svc.Delete(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, resp.Archived)
		assert.Equal(t, catalog.ProductStatusArchived, product.Status)
		assert.False(t, product.IsFeatured)
		f.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unreferenced product is removed with its images", func(t *testing.T) {
		f := newProductFixture()
		product := newTestProduct(t, uuid.New(), "Mince")
		_, err := product.AddImage("products/a.jpg", "https://cdn/a.jpg", "", false)
		require.NoError(t, err)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.products.On("IsReferenced", ctx, product.ID).Return(false, nil)
		f.products.On("Delete", ctx, product.ID).Return(nil)
		f.storage.On("Delete", ctx, "products/a.jpg").Return(errors.New("s3 down"))

		resp, err := f.svc.Delete(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, resp.Archived)
		f.storage.AssertExpectations(t)
	})
}

func TestProductService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	category := newTestCategory(t, "Pork")
	product := newTestProduct(t, category.ID, "Pork Belly")
	f.products.On("FindByID", ctx, product.ID).Return(product, nil)
	f.products.On("Save", ctx, product).Return(nil)
	f.categories.On("FindByID", ctx, category.ID).Return(category, nil)

	resp, err := f.svc.UpdateStatus(ctx, product.ID, UpdateProductStatusRequest{Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	_, err = f.svc.UpdateStatus(ctx, product.ID, UpdateProductStatusRequest{Status: "inactive"})
	assert.True(t, shared.HasCode(err, "ALREADY_INACTIVE"))
}

func TestProductService_SetFeatured_RejectsArchived(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	product := newTestProduct(t, uuid.New(), "Oxtail")
	product.Archive()
	f.products.On("FindByID", ctx, product.ID).Return(product, nil)

	featured := true
	_, err := f.svc.SetFeatured(ctx, product.ID, UpdateFeaturedRequest{IsFeatured: &featured})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}
