package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/order"
)

// ZoneRequest creates or replaces a delivery zone.
type ZoneRequest struct {
	Name                  string           `json:"name" binding:"required,max=100"`
	Postcodes             []string         `json:"postcodes" binding:"required,min=1,dive,postcode"`
	DeliveryFee           decimal.Decimal  `json:"delivery_fee"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal  `json:"min_order_amount"`
	EstimatedDays         string           `json:"estimated_days" binding:"omitempty,max=30"`
	SortOrder             int              `json:"sort_order"`
	IsActive              *bool            `json:"is_active"`
}

func (r ZoneRequest) terms() delivery.ZoneTerms {
	return delivery.ZoneTerms{
		Name:                  r.Name,
		Postcodes:             r.Postcodes,
		DeliveryFee:           r.DeliveryFee,
		FreeDeliveryThreshold: r.FreeDeliveryThreshold,
		MinOrderAmount:        r.MinOrderAmount,
		EstimatedDays:         r.EstimatedDays,
		SortOrder:             r.SortOrder,
	}
}

// ZoneResponse represents a delivery zone in API responses
type ZoneResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Postcodes             []string         `json:"postcodes"`
	DeliveryFee           decimal.Decimal  `json:"delivery_fee"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal  `json:"min_order_amount"`
	EstimatedDays         string           `json:"estimated_days"`
	SortOrder             int              `json:"sort_order"`
	IsActive              bool             `json:"is_active"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ToZoneResponse converts a domain Zone to ZoneResponse
func ToZoneResponse(z *delivery.Zone) ZoneResponse {
	return ZoneResponse{
		ID:                    z.ID,
		Name:                  z.Name,
		Postcodes:             z.Postcodes,
		DeliveryFee:           z.DeliveryFee,
		FreeDeliveryThreshold: z.FreeDeliveryThreshold,
		MinOrderAmount:        z.MinOrderAmount,
		EstimatedDays:         z.EstimatedDays,
		SortOrder:             z.SortOrder,
		IsActive:              z.IsActive,
		CreatedAt:             z.CreatedAt,
		UpdatedAt:             z.UpdatedAt,
	}
}

// CheckRequest asks whether a postcode is served. Subtotal is the
// discounted cart value used for the fee.
type CheckRequest struct {
	Postcode string           `json:"postcode" binding:"required,postcode"`
	Subtotal *decimal.Decimal `json:"subtotal"`
}

// CheckResponse describes delivery to a postcode.
type CheckResponse struct {
	Postcode              string           `json:"postcode"`
	Deliverable           bool             `json:"deliverable"`
	Zone                  *ZoneResponse    `json:"zone,omitempty"`
	DeliveryFee           *decimal.Decimal `json:"delivery_fee,omitempty"`
	FreeDeliveryRemaining *decimal.Decimal `json:"free_delivery_remaining,omitempty"`
	MeetsMinimum          bool             `json:"meets_minimum"`
}

// AssignmentQuery filters the caller's delivery run.
type AssignmentQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=confirmed processing ready_for_delivery out_for_delivery delivered"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// AssignmentResponse is an order as the driver sees it.
type AssignmentResponse struct {
	ID            uuid.UUID             `json:"id"`
	OrderNumber   string                `json:"order_number"`
	Status        string                `json:"status"`
	CustomerName  string                `json:"customer_name"`
	Address       order.ShippingAddress `json:"address"`
	Notes         string                `json:"notes"`
	DeliveryDate  *time.Time            `json:"delivery_date"`
	ItemCount     int                   `json:"item_count"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	// AmountDue is what the driver collects at the door.
	AmountDue decimal.Decimal `json:"amount_due"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// ToAssignmentResponse converts an order for the delivery run.
func ToAssignmentResponse(o *order.Order) AssignmentResponse {
	due := decimal.Zero
	if o.PaymentMethod == order.PaymentMethodCOD && o.PaymentStatus == order.PaymentStatusPending {
		due = o.Total
	}
	return AssignmentResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		CustomerName:  o.CustomerName,
		Address:       o.ShippingAddress,
		Notes:         o.Notes,
		DeliveryDate:  o.DeliveryDate,
		ItemCount:     o.ItemCount(),
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		AmountDue:     due,
		PlacedAt:      o.PlacedAt,
	}
}

// PODUploadRequest asks for an upload URL for delivery evidence.
type PODUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=signature photo"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// PODUploadResponse is a presigned PUT for one piece of evidence.
type PODUploadResponse struct {
	UploadURL  string            `json:"upload_url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	StorageKey string            `json:"storage_key"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// RecordPODRequest completes a delivery.
type RecordPODRequest struct {
	RecipientName string `json:"recipient_name" binding:"required,max=150"`
	SignatureKey  string `json:"signature_key" binding:"omitempty,max=500"`
	PhotoKey      string `json:"photo_key" binding:"omitempty,max=500"`
	Notes         string `json:"notes" binding:"omitempty,max=1000"`
}

// FailedAttemptRequest returns an order to the dispatch queue.
type FailedAttemptRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ProofResponse is a proof of delivery with short-lived media links.
type ProofResponse struct {
	OrderID       uuid.UUID  `json:"order_id"`
	RecipientName string     `json:"recipient_name"`
	SignatureURL  string     `json:"signature_url,omitempty"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	Notes         string     `json:"notes"`
	DeliveredBy   uuid.UUID  `json:"delivered_by"`
	DeliveredAt   time.Time  `json:"delivered_at"`
	URLsExpireAt  *time.Time `json:"urls_expire_at,omitempty"`
}
