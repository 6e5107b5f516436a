package report

import (
	"context"
	"time"

	"github.com/zambezimeats/backend/internal/domain/order"
)

// ReportRepository reads the facts reports are built from. Aggregation
// happens in Go so the queries stay portable across databases.
type ReportRepository interface {
	// OrderFacts returns orders placed in [start, end).
	OrderFacts(ctx context.Context, start, end time.Time) ([]OrderFact, error)
	// LineFacts returns lines of revenue-bearing orders placed in [start, end).
	LineFacts(ctx context.Context, start, end time.Time) ([]LineFact, error)
	// StockLevels returns every non-archived product.
	StockLevels(ctx context.Context) ([]StockLevel, error)
	MovementTotals(ctx context.Context, start, end time.Time) ([]MovementTotal, error)
	CountOrdersByStatus(ctx context.Context, statuses ...order.Status) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
}
