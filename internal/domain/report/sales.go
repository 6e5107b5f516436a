package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// OrderFact is the slice of an order the sales report needs.
type OrderFact struct {
	OrderID     uuid.UUID
	PlacedAt    time.Time
	Status      order.Status
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Items       decimal.Decimal
}

// SalesRow is one bucket of the sales report.
type SalesRow struct {
	Period            string          `json:"period"`
	Orders            int64           `json:"orders"`
	Items             decimal.Decimal `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Discounts         decimal.Decimal `json:"discounts"`
	DeliveryFees      decimal.Decimal `json:"delivery_fees"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

func (r *SalesRow) add(f OrderFact) {
	r.Orders++
	r.Items = r.Items.Add(f.Items)
	r.Subtotal = r.Subtotal.Add(f.Subtotal)
	r.Discounts = r.Discounts.Add(f.Discount)
	r.DeliveryFees = r.DeliveryFees.Add(f.DeliveryFee)
	r.Revenue = r.Revenue.Add(f.Total)
}

func (r *SalesRow) finish() {
	if r.Orders > 0 {
		r.AverageOrderValue = shared.RoundMoney(r.Revenue.Div(decimal.NewFromInt(r.Orders)))
	}
}

// SalesReport is revenue bucketed over a date range.
type SalesReport struct {
	From    string     `json:"from"`
	To      string     `json:"to"`
	GroupBy GroupBy    `json:"group_by"`
	Rows    []SalesRow `json:"rows"`
	Totals  SalesRow   `json:"totals"`
}

// BuildSalesReport buckets revenue-bearing orders. Every bucket in the range
// appears even when it has no orders.
func BuildSalesReport(r DateRange, g GroupBy, facts []OrderFact) SalesReport {
	loc := r.From.Location()
	periods := g.Periods(r)
	index := make(map[time.Time]int, len(periods))
	rows := make([]SalesRow, len(periods))
	for i, p := range periods {
		index[p] = i
		rows[i].Period = g.Label(p)
	}

	totals := SalesRow{Period: "total"}
	for _, f := range facts {
		if !f.Status.CountsAsRevenue() || !r.Contains(f.PlacedAt) {
			continue
		}
		i, ok := index[g.PeriodStart(f.PlacedAt.In(loc))]
		if !ok {
			continue
		}
		rows[i].add(f)
		totals.add(f)
	}
	for i := range rows {
		rows[i].finish()
	}
	totals.finish()

	return SalesReport{
		From:    r.From.Format(dateLayout),
		To:      r.To.Format(dateLayout),
		GroupBy: g,
		Rows:    rows,
		Totals:  totals,
	}
}

// LineFact is one sold order line.
type LineFact struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Unit        string
	Quantity    decimal.Decimal
	LineTotal   decimal.Decimal
}

// ProductSales ranks a product by revenue.
type ProductSales struct {
	Rank         int             `json:"rank"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	OrderCount   int64           `json:"order_count"`
}

// TopProducts aggregates lines per product and returns the top limit by
// revenue. limit <= 0 returns all.
func TopProducts(lines []LineFact, limit int) []ProductSales {
	byProduct := make(map[uuid.UUID]*ProductSales)
	orders := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, l := range lines {
		ps, ok := byProduct[l.ProductID]
		if !ok {
			ps = &ProductSales{ProductID: l.ProductID, ProductName: l.ProductName, SKU: l.SKU, Unit: l.Unit}
			byProduct[l.ProductID] = ps
			orders[l.ProductID] = make(map[uuid.UUID]struct{})
		}
		ps.QuantitySold = ps.QuantitySold.Add(l.Quantity)
		ps.Revenue = ps.Revenue.Add(l.LineTotal)
		orders[l.ProductID][l.OrderID] = struct{}{}
	}

	out := make([]ProductSales, 0, len(byProduct))
	for id, ps := range byProduct {
		ps.OrderCount = int64(len(orders[id]))
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductName < out[j].ProductName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
