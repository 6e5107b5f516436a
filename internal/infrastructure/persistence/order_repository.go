package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

// Create inserts the order with its lines and initial history.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translateError(err)
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		if err := tx.Create(&o.Items).Error; err != nil {
			return err
		}
		if err := r.appendHistory(tx, o); err != nil {
			return err
		}
		o.MarkPersisted()
		return nil
	})
}

// Save updates the order row and appends history recorded since load.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, o, &o.BaseAggregateRoot); err != nil {
			return err
		}
		return r.appendHistory(tx, o)
	})
}

func (r *GormOrderRepository) appendHistory(tx *gorm.DB, o *order.Order) error {
	pending := o.TakePendingHistory()
	if len(pending) == 0 {
		return nil
	}
	return tx.Create(&pending).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := preloadOrderDetails(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Order")
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := preloadOrderDetails(r.db.WithContext(ctx)).Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, notFound(err, "Order")
	}
	return &o, nil
}

// FindAll lists orders with their lines. History is loaded only by the
// single-order finders.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	var orders []order.Order
	var total int64

	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderSorts.clause(filter.OrderBy, filter.OrderDir, "placed_at"))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?)",
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		case "from":
			query = query.Where("placed_at >= ?", utcValue(value))
		case "to":
			query = query.Where("placed_at < ?", utcValue(value))
		}
	}
	return query
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, p *order.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translateError(err)
	}
	p.MarkPersisted()
	return nil
}

func (r *GormPaymentRepository) Save(ctx context.Context, p *order.Payment) error {
	return saveVersioned(r.db.WithContext(ctx), p, &p.BaseAggregateRoot)
}

func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*order.Payment, error) {
	var p order.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error; err != nil {
		return nil, notFound(err, "Payment")
	}
	return &p, nil
}

func (r *GormPaymentRepository) FindByProviderRef(ctx context.Context, ref string) (*order.Payment, error) {
	var p order.Payment
	if err := r.db.WithContext(ctx).Where("provider_ref = ?", ref).First(&p).Error; err != nil {
		return nil, notFound(err, "Payment")
	}
	return &p, nil
}

var (
	_ order.OrderRepository   = (*GormOrderRepository)(nil)
	_ order.PaymentRepository = (*GormPaymentRepository)(nil)
)
