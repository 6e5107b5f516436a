package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

const (
	AggregateTypeCategory = "Category"
	AggregateTypeProduct  = "Product"

	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeProductCreated  = "ProductCreated"
	EventTypeStockLow        = "StockLow"
)

// CategoryCreatedEvent is raised when a category is added.
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Slug       string    `json:"slug"`
}

func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
		Slug:            c.Slug,
	}
}

// ProductCreatedEvent is raised when a product is added to the catalog.
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
	}
}

// StockLowEvent is raised when stock drops to or below the alert threshold.
type StockLowEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID       `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	Threshold     decimal.Decimal `json:"threshold"`
}

func NewStockLowEvent(p *Product) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		StockQuantity:   p.StockQuantity,
		Threshold:       p.LowStockThreshold,
	}
}
