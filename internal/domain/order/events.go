package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

const (
	AggregateTypeOrder = "Order"

	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypePaymentCompleted   = "PaymentCompleted"
)

// OrderPlacedEvent is raised when checkout creates an order.
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	UserID        uuid.UUID       `json:"user_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		PaymentMethod:   o.PaymentMethod,
		Total:           o.Total,
		ItemCount:       len(o.Items),
	}
}

// OrderStatusChangedEvent is raised on every fulfilment transition.
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
}

func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              o.Status,
	}
}

// PaymentCompletedEvent is raised once when payment for an order succeeds.
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewPaymentCompletedEvent(o *Order) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PaymentMethod:   o.PaymentMethod,
		Amount:          o.Total,
	}
}
