package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements MovementRepository using GORM.
// The ledger is append-only; there is no update or delete.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateBatch inserts movements in chunks of 100.
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(movements, 100).Error
}

// FindAll lists movements newest first.
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	var movements []inventory.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.UTC())
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindByReference returns the movements written for one business document,
// such as an order number.
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, reference string) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

var _ inventory.MovementRepository = (*GormStockMovementRepository)(nil)
