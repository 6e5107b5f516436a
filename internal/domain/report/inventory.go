package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// StockLevel is a product's current stock position.
type StockLevel struct {
	ProductID         uuid.UUID       `json:"product_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Unit              string          `json:"unit"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	Price             decimal.Decimal `json:"price"`
	Value             decimal.Decimal `json:"value"`
	LowStock          bool            `json:"low_stock"`
}

// MovementTotal sums stock movements of one type.
type MovementTotal struct {
	Type     string          `json:"type"`
	Count    int64           `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
}

// InventoryReport values stock and summarises movements in a range.
type InventoryReport struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	ProductCount int             `json:"product_count"`
	StockValue   decimal.Decimal `json:"stock_value"`
	LowStock     []StockLevel    `json:"low_stock"`
	Movements    []MovementTotal `json:"movements"`
	Products     []StockLevel    `json:"products"`
}

// BuildInventoryReport values each level at its regular price.
func BuildInventoryReport(r DateRange, levels []StockLevel, movements []MovementTotal) InventoryReport {
	rep := InventoryReport{
		From:         r.From.Format(dateLayout),
		To:           r.To.Format(dateLayout),
		ProductCount: len(levels),
		StockValue:   decimal.Zero,
		LowStock:     []StockLevel{},
		Products:     make([]StockLevel, 0, len(levels)),
		Movements:    movements,
	}
	for _, l := range levels {
		l.Value = shared.RoundMoney(l.StockQuantity.Mul(l.Price))
		l.LowStock = !l.StockQuantity.GreaterThan(l.LowStockThreshold)
		rep.StockValue = rep.StockValue.Add(l.Value)
		rep.Products = append(rep.Products, l)
		if l.LowStock {
			rep.LowStock = append(rep.LowStock, l)
		}
	}
	sort.Slice(rep.LowStock, func(i, j int) bool {
		return rep.LowStock[i].StockQuantity.LessThan(rep.LowStock[j].StockQuantity)
	})
	if rep.Movements == nil {
		rep.Movements = []MovementTotal{}
	}
	return rep
}
