package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecentOrder is a short order summary for the dashboard.
type RecentOrder struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TodayOrders      int64           `json:"today_orders"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	MonthRevenue     decimal.Decimal `json:"month_revenue"`
	PendingOrders    int64           `json:"pending_orders"`
	AwaitingDelivery int64           `json:"awaiting_delivery"`
	LowStockProducts int64           `json:"low_stock_products"`
	TotalCustomers   int64           `json:"total_customers"`
	RecentOrders     []RecentOrder   `json:"recent_orders"`
	TopProducts      []ProductSales  `json:"top_products"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Revenue sums totals of revenue-bearing facts inside r.
func Revenue(r DateRange, facts []OrderFact) (count int64, revenue decimal.Decimal) {
	revenue = decimal.Zero
	for _, f := range facts {
		if f.Status.CountsAsRevenue() && r.Contains(f.PlacedAt) {
			count++
			revenue = revenue.Add(f.Total)
		}
	}
	return count, revenue
}
