package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ChargeStatus is the state of a single payment record. The order keeps its
// own PaymentStatus summary, where a completed charge shows as paid.
type ChargeStatus string

const (
	ChargeStatusPending   ChargeStatus = "pending"
	ChargeStatusCompleted ChargeStatus = "completed"
	ChargeStatusFailed    ChargeStatus = "failed"
	ChargeStatusRefunded  ChargeStatus = "refunded"
)

// Payment is one attempt to collect money for an order.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method        PaymentMethod   `gorm:"type:varchar(20);not null"`
	Provider      string          `gorm:"type:varchar(20);not null"`
	Status        ChargeStatus    `gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	ProviderRef   string          `gorm:"type:varchar(100);index"`
	FailureReason string          `gorm:"type:varchar(500)"`
	// RawEvent is the last provider event applied, kept for support queries.
	RawEvent    string `gorm:"type:text"`
	RefundedAt  *time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a pending payment for the order total.
func NewPayment(o *Order, providerRef string) *Payment {
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           o.ID,
		Method:            o.PaymentMethod,
		Provider:          ProviderFor(o.PaymentMethod),
		Status:            ChargeStatusPending,
		Amount:            o.Total,
		Currency:          shared.Currency,
		ProviderRef:       providerRef,
	}
}

// ProviderFor names the party that collects payments of method m.
func ProviderFor(m PaymentMethod) string {
	if m == PaymentMethodStripe {
		return "stripe"
	}
	return "manual"
}

// RecordEvent keeps the raw provider payload that last touched the payment.
func (p *Payment) RecordEvent(raw []byte) {
	p.RawEvent = string(raw)
	p.MarkModified()
}

// Complete marks the payment successful. It returns false if it already was.
func (p *Payment) Complete(at time.Time) bool {
	if p.Status == ChargeStatusCompleted || p.Status == ChargeStatusRefunded {
		return false
	}
	at = at.UTC()
	p.Status = ChargeStatusCompleted
	p.CompletedAt = &at
	p.FailureReason = ""
	p.MarkModified()
	return true
}

// Fail records a declined or errored attempt. Completed payments are unaffected.
func (p *Payment) Fail(reason string) bool {
	if p.Status != ChargeStatusPending {
		return false
	}
	p.Status = ChargeStatusFailed
	p.FailureReason = reason
	p.MarkModified()
	return true
}

// Refund marks a completed payment as refunded.
func (p *Payment) Refund(at time.Time) error {
	if p.Status == ChargeStatusRefunded {
		return nil
	}
	if p.Status != ChargeStatusCompleted {
		return shared.InvalidState("Only completed payments can be refunded")
	}
	at = at.UTC()
	p.Status = ChargeStatusRefunded
	p.RefundedAt = &at
	p.MarkModified()
	return nil
}
