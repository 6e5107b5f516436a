package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ShippingAddress is the delivery address copied onto the order at checkout.
type ShippingAddress struct {
	Recipient    string `gorm:"type:varchar(150)" json:"recipient"`
	Phone        string `gorm:"type:varchar(30)" json:"phone"`
	Line1        string `gorm:"type:varchar(200)" json:"line1"`
	Line2        string `gorm:"type:varchar(200)" json:"line2"`
	Suburb       string `gorm:"type:varchar(100)" json:"suburb"`
	State        string `gorm:"type:varchar(10)" json:"state"`
	Postcode     string `gorm:"type:varchar(4);index" json:"postcode"`
	Instructions string `gorm:"type:text" json:"instructions"`
}

// Order is a placed customer order.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName    string          `gorm:"type:varchar(120);not null"`
	CustomerEmail   string          `gorm:"type:varchar(200);not null;index"`
	Status          Status          `gorm:"type:varchar(30);not null;index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null"`
	Items           []Item          `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryFee     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PromotionID     *uuid.UUID      `gorm:"type:uuid;index"`
	PromoCode       string          `gorm:"type:varchar(32)"`
	DeliveryZoneID  *uuid.UUID      `gorm:"type:uuid"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"`
	Notes           string          `gorm:"type:text"`
	DeliveryDate    *time.Time      `gorm:"type:date"`
	AssignedTo      *uuid.UUID      `gorm:"type:uuid;index"`
	PlacedAt        time.Time       `gorm:"not null;index"`
	ConfirmedAt     *time.Time
	PaidAt          *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string          `gorm:"type:varchar(500)"`
	History         []StatusHistory `gorm:"foreignKey:OrderID"`
	pendingHistory  []StatusHistory
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Item is a product line frozen at the price paid.
type Item struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	Unit        string          `gorm:"type:varchar(10);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// StatusHistory is one recorded status change.
type StatusHistory struct {
	shared.BaseEntity
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromStatus Status     `gorm:"type:varchar(30)"`
	ToStatus   Status     `gorm:"type:varchar(30);not null"`
	Note       string     `gorm:"type:varchar(500)"`
	ChangedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StatusHistory) TableName() string {
	return "order_status_histories"
}

// Customer identifies who placed the order.
type Customer struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// NewItem snapshots a product line.
func NewItem(productID uuid.UUID, name, sku, unit string, unitPrice, qty decimal.Decimal) Item {
	return Item{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		ProductName: name,
		SKU:         sku,
		Unit:        unit,
		UnitPrice:   shared.RoundMoney(unitPrice),
		Quantity:    shared.RoundQuantity(qty),
		LineTotal:   LineTotal(unitPrice, qty),
	}
}

// NewOrder creates a pending order from priced lines.
func NewOrder(number string, customer Customer, method PaymentMethod, items []Item, totals Totals, address ShippingAddress) (*Order, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number is required")
	}
	if customer.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("CART_EMPTY", "Order must contain at least one item")
	}

	now := time.Now().UTC()
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       number,
		UserID:            customer.UserID,
		CustomerName:      customer.Name,
		CustomerEmail:     customer.Email,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMethod:     method,
		Subtotal:          totals.Subtotal,
		DiscountAmount:    totals.Discount,
		DeliveryFee:       totals.DeliveryFee,
		TaxAmount:         totals.Tax,
		Total:             totals.Total,
		ShippingAddress:   address,
		PlacedAt:          now,
	}
	o.Items = make([]Item, len(items))
	for i, item := range items {
		item.OrderID = o.ID
		o.Items[i] = item
	}
	o.record("", StatusPending, nil, "Order placed")
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// ApplyPromotion links the promotion used for the discount.
func (o *Order) ApplyPromotion(promotionID uuid.UUID, code string) {
	o.PromotionID = &promotionID
	o.PromoCode = code
}

// SetDelivery records the zone, customer notes and requested delivery date.
func (o *Order) SetDelivery(zoneID uuid.UUID, notes string, date *time.Time) {
	o.DeliveryZoneID = &zoneID
	o.Notes = strings.TrimSpace(notes)
	o.DeliveryDate = date
}

// TransitionTo moves the order to target, recording who did it.
func (o *Order) TransitionTo(target Status, actor *uuid.UUID, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.InvalidState("Cannot change order from " + string(o.Status) + " to " + string(target))
	}
	if target == StatusOutForDelivery && o.AssignedTo == nil {
		return shared.InvalidState("Assign a driver before dispatching the order")
	}

	from := o.Status
	now := time.Now().UTC()
	o.Status = target
	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	o.record(from, target, actor, note)
	o.MarkModified()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// CustomerCancellable reports whether the customer may still cancel.
func (o *Order) CustomerCancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// Cancel moves the order to cancelled with a reason.
func (o *Order) Cancel(actor *uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if err := o.TransitionTo(StatusCancelled, actor, reason); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// AssignDriver sets the delivery staff member responsible for the order.
func (o *Order) AssignDriver(driverID uuid.UUID, actor *uuid.UUID) error {
	switch o.Status {
	case StatusConfirmed, StatusProcessing, StatusReadyForDelivery:
	default:
		return shared.InvalidState("Drivers can only be assigned before dispatch")
	}
	o.AssignedTo = &driverID
	o.record(o.Status, o.Status, actor, "Driver assigned")
	o.MarkModified()
	return nil
}

// IsAssignedTo reports whether driverID is the assigned driver.
func (o *Order) IsAssignedTo(driverID uuid.UUID) bool {
	return o.AssignedTo != nil && *o.AssignedTo == driverID
}

// MarkPaid records a successful payment and confirms a pending order.
// It returns false when the order was already paid.
func (o *Order) MarkPaid(at time.Time) (bool, error) {
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusRefunded {
		return false, nil
	}
	o.PaymentStatus = PaymentStatusPaid
	at = at.UTC()
	o.PaidAt = &at
	o.AddDomainEvent(NewPaymentCompletedEvent(o))
	if o.Status == StatusPending {
		if err := o.TransitionTo(StatusConfirmed, nil, "Payment received"); err != nil {
			return false, err
		}
		return true, nil
	}
	o.MarkModified()
	return true, nil
}

// MarkPaymentFailed records a failed payment attempt on an unpaid order.
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus != PaymentStatusPending {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.MarkModified()
}

// Refundable reports whether money can be returned for the order.
func (o *Order) Refundable() bool {
	if o.PaymentStatus != PaymentStatusPaid {
		return false
	}
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// MarkRefunded records a refund. Delivered orders move to refunded; cancelled
// orders keep their status.
func (o *Order) MarkRefunded(actor *uuid.UUID, note string) error {
	if o.PaymentStatus == PaymentStatusRefunded {
		return nil
	}
	if o.PaymentStatus != PaymentStatusPaid {
		return shared.InvalidState("Only paid orders can be refunded")
	}
	o.PaymentStatus = PaymentStatusRefunded
	if o.Status == StatusDelivered {
		return o.TransitionTo(StatusRefunded, actor, note)
	}
	o.record(o.Status, o.Status, actor, note)
	o.MarkModified()
	return nil
}

// ItemCount returns the number of order lines.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TakePendingHistory returns and clears history rows not yet persisted.
func (o *Order) TakePendingHistory() []StatusHistory {
	pending := o.pendingHistory
	o.pendingHistory = nil
	return pending
}

func (o *Order) record(from, to Status, actor *uuid.UUID, note string) {
	h := StatusHistory{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		ChangedBy:  actor,
	}
	o.History = append(o.History, h)
	o.pendingHistory = append(o.pendingHistory, h)
}
