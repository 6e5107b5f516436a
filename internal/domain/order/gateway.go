package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ErrInvalidWebhookSignature rejects provider callbacks that fail verification.
var ErrInvalidWebhookSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

// IntentRequest asks the card provider to prepare a payment.
type IntentRequest struct {
	OrderID       uuid.UUID
	OrderNumber   string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
}

// Intent is a prepared card payment the browser confirms with ClientSecret.
type Intent struct {
	ProviderRef  string
	ClientSecret string
}

// RefundRequest returns money for a captured payment.
type RefundRequest struct {
	ProviderRef string
	Amount      decimal.Decimal
	OrderNumber string
}

// GatewayEventType classifies provider callbacks.
type GatewayEventType string

const (
	GatewayPaymentSucceeded GatewayEventType = "payment_succeeded"
	GatewayPaymentFailed    GatewayEventType = "payment_failed"
	GatewayRefunded         GatewayEventType = "refunded"
	GatewayIgnored          GatewayEventType = "ignored"
)

// GatewayEvent is a verified provider callback.
type GatewayEvent struct {
	ID            string
	Type          GatewayEventType
	RawType       string
	ProviderRef   string
	FailureReason string
	OccurredAt    time.Time
	Raw           []byte
}

// PaymentGateway is the port to the card payment provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	Refund(ctx context.Context, req RefundRequest) (refundRef string, err error)
	// ParseWebhook verifies signature and classifies the event.
	ParseWebhook(payload []byte, signature string) (*GatewayEvent, error)
}

// ErrPaymentProvider reports that the card provider could not be reached or
// refused the request.
var ErrPaymentProvider = shared.NewDomainError("PAYMENT_PROVIDER_ERROR", "Payment provider is unavailable, please try again")
