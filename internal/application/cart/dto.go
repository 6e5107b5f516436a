package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the caller's cart.
type AddItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateItemRequest sets a line quantity. Zero removes the line.
type UpdateItemRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// Issue codes reported on cart lines.
const (
	IssueProductUnavailable = "PRODUCT_UNAVAILABLE"
	IssueInsufficientStock  = "INSUFFICIENT_STOCK"
)

// CartIssue flags a line that cannot be checked out as it stands.
type CartIssue struct {
	ItemID    uuid.UUID        `json:"item_id"`
	ProductID uuid.UUID        `json:"product_id"`
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Available *decimal.Decimal `json:"available_quantity,omitempty"`
}

// CartItemResponse is one priced line.
type CartItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	SKU           string          `json:"sku"`
	Unit          string          `json:"unit"`
	ImageURL      string          `json:"image_url,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	MinQuantity   decimal.Decimal `json:"min_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Available     bool            `json:"available"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

// CartResponse is the cart re-priced from the catalog.
type CartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Issues    []CartIssue        `json:"issues"`
}

// HasIssues reports whether any line blocks checkout.
func (r *CartResponse) HasIssues() bool {
	return len(r.Issues) > 0
}
