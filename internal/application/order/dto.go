package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/zambezimeats/backend/internal/application/cart"
	appdelivery "github.com/zambezimeats/backend/internal/application/delivery"
	"github.com/zambezimeats/backend/internal/domain/order"
)

// QuoteRequest prices the cart for a saved address or a bare postcode.
type QuoteRequest struct {
	AddressID *uuid.UUID `json:"address_id"`
	Postcode  string     `json:"postcode" binding:"omitempty,postcode"`
	PromoCode string     `json:"promo_code" binding:"omitempty,promo_code"`
}

// CheckoutRequest places an order from the caller's cart.
type CheckoutRequest struct {
	AddressID     uuid.UUID `json:"address_id" binding:"required"`
	PromoCode     string    `json:"promo_code" binding:"omitempty,promo_code"`
	PaymentMethod string    `json:"payment_method" binding:"required,oneof=stripe cod"`
	Notes         string    `json:"notes" binding:"omitempty,max=1000"`
	// DeliveryDate is a store-local day, YYYY-MM-DD.
	DeliveryDate string `json:"delivery_date" binding:"omitempty,datetime=2006-01-02"`
}

// QuoteIssue is a reason the quote cannot be checked out as is.
type QuoteIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ZoneSummary is the delivery zone a quote resolved to.
type ZoneSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	EstimatedDays string    `json:"estimated_days"`
}

// QuoteResponse is the full price breakdown before placing an order.
type QuoteResponse struct {
	Cart                  *appcart.CartResponse `json:"cart"`
	Subtotal              decimal.Decimal       `json:"subtotal"`
	Discount              decimal.Decimal       `json:"discount"`
	DeliveryFee           decimal.Decimal       `json:"delivery_fee"`
	Tax                   decimal.Decimal       `json:"tax"`
	Total                 decimal.Decimal       `json:"total"`
	PromoCode             string                `json:"promo_code,omitempty"`
	Zone                  *ZoneSummary          `json:"zone"`
	Deliverable           bool                  `json:"deliverable"`
	FreeDeliveryRemaining *decimal.Decimal      `json:"free_delivery_remaining"`
	Issues                []QuoteIssue          `json:"issues"`
	CanCheckout           bool                  `json:"can_checkout"`
}

// CheckoutResponse is the placed order plus what the browser needs to pay.
type CheckoutResponse struct {
	Order           OrderResponse `json:"order"`
	ClientSecret    string        `json:"client_secret,omitempty"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
}

// OrderListQuery filters the caller's own orders.
type OrderListQuery struct {
	Status  string `form:"status"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// AdminOrderListQuery filters every order.
type AdminOrderListQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Search        string `form:"search" binding:"omitempty,max=100"`
	AssignedTo    string `form:"assigned_to" binding:"omitempty,uuid"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PerPage       int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy        string `form:"sort_by"`
	SortDir       string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// CancelOrderRequest cancels an order.
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// UpdateStatusRequest moves an order through fulfilment.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// AssignDriverRequest hands an order to delivery staff.
type AssignDriverRequest struct {
	DeliveryUserID uuid.UUID `json:"delivery_user_id" binding:"required"`
}

// RefundOrderRequest returns the customer's money.
type RefundOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// StatusHistoryResponse is one recorded status change.
type StatusHistoryResponse struct {
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Note       string     `json:"note"`
	ChangedBy  *uuid.UUID `json:"changed_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	OrderNumber     string                  `json:"order_number"`
	UserID          uuid.UUID               `json:"user_id"`
	CustomerName    string                  `json:"customer_name"`
	CustomerEmail   string                  `json:"customer_email"`
	Status          string                  `json:"status"`
	PaymentStatus   string                  `json:"payment_status"`
	PaymentMethod   string                  `json:"payment_method"`
	Items           []OrderItemResponse     `json:"items"`
	ItemCount       int                     `json:"item_count"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	DiscountAmount  decimal.Decimal         `json:"discount_amount"`
	DeliveryFee     decimal.Decimal         `json:"delivery_fee"`
	TaxAmount       decimal.Decimal         `json:"tax_amount"`
	Total           decimal.Decimal         `json:"total"`
	PromoCode       string                  `json:"promo_code,omitempty"`
	ShippingAddress order.ShippingAddress   `json:"shipping_address"`
	Notes           string                  `json:"notes"`
	DeliveryDate    *time.Time              `json:"delivery_date"`
	AssignedTo      *uuid.UUID              `json:"assigned_to"`
	CanCancel       bool                    `json:"can_cancel"`
	PlacedAt        time.Time               `json:"placed_at"`
	ConfirmedAt     *time.Time              `json:"confirmed_at"`
	PaidAt          *time.Time              `json:"paid_at"`
	DeliveredAt     *time.Time              `json:"delivered_at"`
	CancelledAt     *time.Time              `json:"cancelled_at"`
	CancelReason    string                  `json:"cancel_reason,omitempty"`
	History         []StatusHistoryResponse `json:"history,omitempty"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}
	var history []StatusHistoryResponse
	for _, h := range o.History {
		history = append(history, StatusHistoryResponse{
			FromStatus: string(h.FromStatus),
			ToStatus:   string(h.ToStatus),
			Note:       h.Note,
			ChangedBy:  h.ChangedBy,
			CreatedAt:  h.CreatedAt,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		Items:           items,
		ItemCount:       o.ItemCount(),
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		DeliveryFee:     o.DeliveryFee,
		TaxAmount:       o.TaxAmount,
		Total:           o.Total,
		PromoCode:       o.PromoCode,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		DeliveryDate:    o.DeliveryDate,
		AssignedTo:      o.AssignedTo,
		CanCancel:       o.CustomerCancellable(),
		PlacedAt:        o.PlacedAt,
		ConfirmedAt:     o.ConfirmedAt,
		PaidAt:          o.PaidAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		History:         history,
	}
}

// PaymentResponse represents a payment attempt in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Method        string          `json:"method"`
	Provider      string          `json:"provider"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProviderRef   string          `json:"provider_ref,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at"`
	RefundedAt    *time.Time      `json:"refunded_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *order.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		Method:        string(p.Method),
		Provider:      p.Provider,
		Status:        string(p.Status),
		Amount:        p.Amount,
		Currency:      p.Currency,
		ProviderRef:   p.ProviderRef,
		FailureReason: p.FailureReason,
		CompletedAt:   p.CompletedAt,
		RefundedAt:    p.RefundedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// AdminOrderResponse is an order with everything staff need to act on it.
type AdminOrderResponse struct {
	OrderResponse
	Payment         *PaymentResponse           `json:"payment"`
	ProofOfDelivery *appdelivery.ProofResponse `json:"proof_of_delivery"`
	NextStatuses    []string                   `json:"next_statuses"`
	Refundable      bool                       `json:"refundable"`
}
