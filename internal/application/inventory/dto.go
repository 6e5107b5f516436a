package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/inventory"
)

// StockListQuery filters the stock overview.
type StockListQuery struct {
	Search     string `form:"search" binding:"omitempty,max=100"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by"`
	SortDir    string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// AdjustStockRequest records a manual stock change.
type AdjustStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Type      string          `json:"type" binding:"required,oneof=restock return damage waste correction"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reason    string          `json:"reason" binding:"required,max=500"`
}

// MovementQuery filters the movement ledger. From and To are store-local
// days, both inclusive.
type MovementQuery struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=restock sale cancellation return damage waste correction"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// StockItemResponse is a product's stock position.
type StockItemResponse struct {
	ProductID         uuid.UUID       `json:"product_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Unit              string          `json:"unit"`
	Status            string          `json:"status"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	MinQuantity       decimal.Decimal `json:"min_quantity"`
	StockValue        decimal.Decimal `json:"stock_value"`
	LowStock          bool            `json:"low_stock"`
	InStock           bool            `json:"in_stock"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToStockItemResponse converts a product to its stock position.
func ToStockItemResponse(p *catalog.Product) StockItemResponse {
	return StockItemResponse{
		ProductID:         p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Unit:              string(p.Unit),
		Status:            string(p.Status),
		Price:             p.Price,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		MinQuantity:       p.MinQuantity,
		StockValue:        p.StockQuantity.Mul(p.Price).Round(2),
		LowStock:          p.IsLowStock(),
		InStock:           p.InStock(),
		UpdatedAt:         p.UpdatedAt,
	}
}

// MovementResponse is one ledger row.
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Type           string          `json:"type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason"`
	Reference      string          `json:"reference,omitempty"`
	CreatedBy      *uuid.UUID      `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToMovementResponse converts a movement for API output.
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		Reference:      m.Reference,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// AdjustmentResponse is the recorded movement and the resulting stock.
type AdjustmentResponse struct {
	Movement MovementResponse  `json:"movement"`
	Product  StockItemResponse `json:"product"`
}
