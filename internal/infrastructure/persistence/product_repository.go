package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

// FindByID finds a product by ID with its images
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := preloadImages(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Product")
	}
	return &product, nil
}

// FindBySlug finds a product by slug with its images
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := preloadImages(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "Product")
	}
	return &product, nil
}

// FindByIDs loads several products; missing IDs are simply absent.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := preloadImages(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDsForUpdate loads products with SELECT ... FOR UPDATE. sqlite
// ignores the locking clause.
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll lists products with filters, sorting and pagination.
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	var products []catalog.Product
	var total int64

	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := preloadImages(r.applyFilter(query, filter)).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Save writes the product guarded by its version, then replaces its image
// rows with the in-memory gallery.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, product, &product.BaseAggregateRoot); err != nil {
			return err
		}
		keep := make([]uuid.UUID, 0, len(product.Images))
		for i := range product.Images {
			product.Images[i].ProductID = product.ID
			keep = append(keep, product.Images[i].ID)
		}
		del := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&catalog.ProductImage{}).Error; err != nil {
			return err
		}
		if len(product.Images) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"alt_text", "sort_order", "is_primary", "updated_at"}),
		}).Create(&product.Images).Error
	})
}

// Delete removes a product with its images and any cart lines holding it.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&catalog.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM cart_items WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Product")
		}
		return nil
	})
}

// IsReferenced checks order lines and the stock ledger for the product.
func (r *GormProductRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("order_items").Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Table("stock_movements").Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsBySlug checks if a product slug exists
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsBySKU checks if a SKU exists
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategory counts products of every status in a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// CountStorefrontByCategory counts active products per category
func (r *GormProductRepository) CountStorefrontByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		CategoryID uuid.UUID
		Count      int64
	}
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("status = ?", catalog.ProductStatusActive).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

// CountLowStock counts non-archived products at or below their threshold
func (r *GormProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("status <> ? AND stock_quantity <= low_stock_threshold", catalog.ProductStatusArchived).
		Count(&count).Error
	return count, err
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = query.Order(productSorts.clause(filter.OrderBy, filter.OrderDir, "created_at"))
	column := strings.TrimSpace(filter.OrderBy)
	if column != "name" {
		query = query.Order("name ASC")
	}
	return query
}

func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(short_description) LIKE ?)", pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "exclude_id":
			query = query.Where("id <> ?", value)
		case "storefront":
			if value == true {
				query = query.Where("status = ?", catalog.ProductStatusActive).
					Where("category_id IN (?)", r.db.Model(&catalog.Category{}).Select("id").Where("is_active = ?", true))
			}
		case "archived":
			if value == false {
				query = query.Where("status <> ?", catalog.ProductStatusArchived)
			}
		case "featured":
			query = query.Where("is_featured = ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("stock_quantity >= min_quantity")
			}
		case "on_sale":
			if value == true {
				query = query.Where("sale_price IS NOT NULL AND sale_price < price")
			}
		case "low_stock":
			if value == true {
				query = query.Where("stock_quantity <= low_stock_threshold")
			}
		case "min_price":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("COALESCE(sale_price, price) >= CAST(? AS DECIMAL(18,2))", d.String())
			}
		case "max_price":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("COALESCE(sale_price, price) <= CAST(? AS DECIMAL(18,2))", d.String())
			}
		}
	}
	return query
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
