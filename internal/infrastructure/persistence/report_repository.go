package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/report"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// nonRevenueStatuses are excluded from sold-line facts.
var nonRevenueStatuses = []order.Status{order.StatusCancelled, order.StatusRefunded}

// GormReportRepository reads report facts with plain selects; sums and
// buckets are computed by the report package.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// OrderFacts returns every order placed in [start, end) with its item quantity.
func (r *GormReportRepository) OrderFacts(ctx context.Context, start, end time.Time) ([]report.OrderFact, error) {
	start, end = start.UTC(), end.UTC()

	var rows []struct {
		ID             uuid.UUID
		PlacedAt       time.Time
		Status         order.Status
		Subtotal       decimal.Decimal
		DiscountAmount decimal.Decimal
		DeliveryFee    decimal.Decimal
		Total          decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("id, placed_at, status, subtotal, discount_amount, delivery_fee, total").
		Where("placed_at >= ? AND placed_at < ?", start, end).
		Order("placed_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	var lines []struct {
		OrderID  uuid.UUID
		Quantity decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Table("order_items").
		Select("order_items.order_id, order_items.quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.placed_at >= ? AND orders.placed_at < ?", start, end).
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	items := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, l := range lines {
		items[l.OrderID] = items[l.OrderID].Add(l.Quantity)
	}

	facts := make([]report.OrderFact, len(rows))
	for i, row := range rows {
		facts[i] = report.OrderFact{
			OrderID:     row.ID,
			PlacedAt:    row.PlacedAt,
			Status:      row.Status,
			Subtotal:    row.Subtotal,
			Discount:    row.DiscountAmount,
			DeliveryFee: row.DeliveryFee,
			Total:       row.Total,
			Items:       items[row.ID],
		}
	}
	return facts, nil
}

// LineFacts returns sold lines of revenue-bearing orders placed in [start, end).
func (r *GormReportRepository) LineFacts(ctx context.Context, start, end time.Time) ([]report.LineFact, error) {
	var facts []report.LineFact
	err := r.db.WithContext(ctx).Table("order_items").
		Select("order_items.order_id, order_items.product_id, order_items.product_name, order_items.sku, "+
			"order_items.unit, order_items.quantity, order_items.line_total").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.placed_at >= ? AND orders.placed_at < ?", start.UTC(), end.UTC()).
		Where("orders.status NOT IN ?", nonRevenueStatuses).
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// StockLevels returns the stock position of every product still on the books.
func (r *GormReportRepository) StockLevels(ctx context.Context) ([]report.StockLevel, error) {
	var levels []report.StockLevel
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("id AS product_id, name, sku, unit, stock_quantity, low_stock_threshold, price").
		Where("status <> ?", catalog.ProductStatusArchived).
		Order("name ASC").
		Scan(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// MovementTotals sums ledger rows in [start, end) per movement type.
func (r *GormReportRepository) MovementTotals(ctx context.Context, start, end time.Time) ([]report.MovementTotal, error) {
	var rows []struct {
		Type           inventory.MovementType
		QuantityChange decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Select("type, quantity_change").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byType := make(map[inventory.MovementType]*report.MovementTotal)
	for _, row := range rows {
		t, ok := byType[row.Type]
		if !ok {
			t = &report.MovementTotal{Type: string(row.Type), Quantity: decimal.Zero}
			byType[row.Type] = t
		}
		t.Count++
		t.Quantity = t.Quantity.Add(row.QuantityChange)
	}
	totals := make([]report.MovementTotal, 0, len(byType))
	for _, t := range byType {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Type < totals[j].Type })
	return totals, nil
}

// CountOrdersByStatus counts orders currently in any of statuses.
func (r *GormReportRepository) CountOrdersByStatus(ctx context.Context, statuses ...order.Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountCustomers counts customer accounts.
func (r *GormReportRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("role = ?", identity.RoleCustomer).
		Count(&count).Error
	return count, err
}

func (r *GormReportRepository) CountLowStock(ctx context.Context) (int64, error) {
	return NewGormProductRepository(r.db).CountLowStock(ctx)
}

// RecentOrders returns the newest orders first.
func (r *GormReportRepository) RecentOrders(ctx context.Context, limit int) ([]report.RecentOrder, error) {
	var recent []report.RecentOrder
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("id, order_number, customer_name, status, payment_status, total, placed_at").
		Order("placed_at DESC").
		Limit(limit).
		Scan(&recent).Error
	if err != nil {
		return nil, err
	}
	return recent, nil
}

var _ report.ReportRepository = (*GormReportRepository)(nil)
