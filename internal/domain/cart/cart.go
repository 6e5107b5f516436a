package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// DefaultMaxLines is the number of distinct products a cart may hold.
const DefaultMaxLines = 50

// Cart is a customer's shopping cart. Each user owns at most one.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItem `gorm:"foreignKey:CartID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line. Prices are not stored; the cart is always
// re-priced from the catalog.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_item_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product,priority:2"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCart creates an empty cart for userID.
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]CartItem, 0),
	}
}

// AddItem adds qty of a product, merging into an existing line.
// It returns the resulting line.
func (c *Cart) AddItem(productID uuid.UUID, qty decimal.Decimal, maxLines int) (*CartItem, error) {
	if !qty.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if item := c.ItemForProduct(productID); item != nil {
		item.Quantity = shared.RoundQuantity(item.Quantity.Add(qty))
		item.Touch()
		c.MarkModified()
		return item, nil
	}
	if maxLines > 0 && len(c.Items) >= maxLines {
		return nil, shared.NewDomainError("CART_FULL", "Cart cannot hold more products")
	}
	c.Items = append(c.Items, CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   shared.RoundQuantity(qty),
	})
	c.MarkModified()
	return &c.Items[len(c.Items)-1], nil
}

// SetQuantity changes a line quantity; zero removes the line.
func (c *Cart) SetQuantity(itemID uuid.UUID, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if qty.IsZero() {
		return c.RemoveItem(itemID)
	}
	item := c.Item(itemID)
	if item == nil {
		return shared.NotFound("Cart item")
	}
	item.Quantity = shared.RoundQuantity(qty)
	item.Touch()
	c.MarkModified()
	return nil
}

// RemoveItem deletes a line.
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.MarkModified()
			return nil
		}
	}
	return shared.NotFound("Cart item")
}

// Clear removes every line.
func (c *Cart) Clear() {
	if len(c.Items) == 0 {
		return
	}
	c.Items = make([]CartItem, 0)
	c.MarkModified()
}

// Item returns the line with itemID, or nil.
func (c *Cart) Item(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemForProduct returns the line holding productID, or nil.
func (c *Cart) ItemForProduct(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs lists the products in the cart in line order.
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}
