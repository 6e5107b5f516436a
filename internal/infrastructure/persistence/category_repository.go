package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GormCategoryRepository) first(ctx context.Context, cond string, arg any) (*catalog.Category, error) {
	var c catalog.Category
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&c).Error; err != nil {
		return nil, notFound(err, "Category")
	}
	return &c, nil
}

// FindAll lists categories in menu order unless the filter names a sort.
// A zero PageSize returns every match, which is how the storefront menu
// is loaded.
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, int64, error) {
	matching := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&catalog.Category{}).Scopes(categoryMatches(filter))
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := matching()
	if filter.OrderBy == "" {
		page = page.Order("sort_order ASC, name ASC")
	} else {
		page = page.Order(categorySorts.clause(filter.OrderBy, filter.OrderDir, "sort_order"))
	}
	if filter.PageSize > 0 {
		p, size := normalizePage(filter.Page, filter.PageSize)
		page = page.Offset((p - 1) * size).Limit(size)
	}

	var categories []catalog.Category
	if err := page.Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func categoryMatches(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
		}
		if active, ok := filter.Filters["is_active"]; ok {
			q = q.Where("is_active = ?", active)
		}
		return q
	}
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return saveVersioned(r.db.WithContext(ctx), category, &category.BaseAggregateRoot)
}

// Delete is a hard delete; callers check that no product still uses the
// category first.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalog.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NotFound("Category")
	}
	return nil
}

func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Category{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
