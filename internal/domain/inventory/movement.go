package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// MovementType classifies a stock change.
type MovementType string

const (
	MovementRestock      MovementType = "restock"
	MovementSale         MovementType = "sale"
	MovementCancellation MovementType = "cancellation"
	MovementReturn       MovementType = "return"
	MovementDamage       MovementType = "damage"
	MovementWaste        MovementType = "waste"
	// MovementCorrection sets an absolute stock level after a count.
	MovementCorrection MovementType = "correction"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementRestock, MovementSale, MovementCancellation, MovementReturn,
		MovementDamage, MovementWaste, MovementCorrection:
		return true
	}
	return false
}

// IsIncrease returns true if this type adds stock
func (t MovementType) IsIncrease() bool {
	return t == MovementRestock || t == MovementCancellation || t == MovementReturn
}

// IsDecrease returns true if this type removes stock
func (t MovementType) IsDecrease() bool {
	return t == MovementSale || t == MovementDamage || t == MovementWaste
}

// IsManual reports whether staff may record the type through an adjustment.
// Sales and cancellations are only written by checkout and order cancellation.
func (t MovementType) IsManual() bool {
	return t != MovementSale && t != MovementCancellation && t.IsValid()
}

// StockMovement is the ledger row for one stock change.
type StockMovement struct {
	shared.BaseEntity
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           MovementType    `gorm:"type:varchar(20);not null;index"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason         string          `gorm:"type:varchar(500)"`
	Reference      string          `gorm:"type:varchar(100);index"`
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Adjustment describes a requested stock change.
type Adjustment struct {
	Type MovementType
	// Quantity is the amount moved, or the new level for corrections.
	Quantity  decimal.Decimal
	Reason    string
	Reference string
	Actor     *uuid.UUID
}

// Apply changes the product's stock as the adjustment describes and returns
// the movement to persist. The product is left untouched on error.
func Apply(p *catalog.Product, adj Adjustment) (*StockMovement, error) {
	if !adj.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown stock movement type")
	}
	qty := shared.RoundQuantity(adj.Quantity)
	if qty.IsNegative() || (qty.IsZero() && adj.Type != MovementCorrection) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}

	var delta decimal.Decimal
	switch {
	case adj.Type == MovementCorrection:
		delta = qty.Sub(p.StockQuantity)
	case adj.Type.IsIncrease():
		delta = qty
	default:
		delta = qty.Neg()
	}

	before, after, err := p.ChangeStock(delta)
	if err != nil {
		return nil, err
	}
	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      p.ID,
		Type:           adj.Type,
		QuantityChange: after.Sub(before),
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         strings.TrimSpace(adj.Reason),
		Reference:      adj.Reference,
		CreatedBy:      adj.Actor,
	}, nil
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ProductID *uuid.UUID
	Type      *MovementType
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
