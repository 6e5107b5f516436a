package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindAll supports filters: is_active (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, int64, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ProductRepository defines persistence for products and their images.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindByIDsForUpdate loads products with row locks for the enclosing
	// transaction, ordered by id so concurrent checkouts lock in one order.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindAll supports filters: category_id, status, storefront (bool: active
	// products in active categories), featured, in_stock, on_sale, low_stock,
	// min_price, max_price, exclude_id.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	// Save writes the product guarded by its version and syncs its images.
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IsReferenced reports whether order lines or stock movements point at
	// the product, in which case it must be archived rather than deleted.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	// CountStorefrontByCategory returns active product counts keyed by category.
	CountStorefrontByCategory(ctx context.Context) (map[uuid.UUID]int64, error)
	CountLowStock(ctx context.Context) (int64, error)
}
