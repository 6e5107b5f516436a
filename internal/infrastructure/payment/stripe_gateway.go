package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultCurrency = "aud"

// StripeGateway implements order.PaymentGateway on top of PaymentIntents.
type StripeGateway struct {
	intents       *paymentintent.Client
	refunds       *refund.Client
	webhookSecret string
	logger        *zap.Logger
}

// Option customizes a StripeGateway.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	backend stripe.Backend
	logger  *zap.Logger
}

// WithBackend routes API calls through b instead of api.stripe.com.
func WithBackend(b stripe.Backend) Option {
	return func(o *gatewayOptions) { o.backend = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *gatewayOptions) { o.logger = l }
}

// NewStripeGateway returns nil, nil when no secret key is configured so that
// callers can treat card payments as unavailable.
func NewStripeGateway(cfg config.StripeConfig, opts ...Option) (*StripeGateway, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe: webhook secret is required")
	}

	o := gatewayOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = stripe.GetBackend(stripe.APIBackend)
	}

	return &StripeGateway{
		intents:       &paymentintent.Client{B: o.backend, Key: cfg.SecretKey},
		refunds:       &refund.Client{B: o.backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		logger:        o.logger,
	}, nil
}

// CreateIntent creates a PaymentIntent keyed by the order id, so a retried
// checkout for the same order never creates a second charge.
func (g *StripeGateway) CreateIntent(ctx context.Context, req order.IntentRequest) (*order.Intent, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("Order " + req.OrderNumber),
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())
	params.AddMetadata("order_number", req.OrderNumber)
	params.SetIdempotencyKey("order-" + req.OrderID.String())

	pi, err := g.intents.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe payment intent",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("Created Stripe payment intent",
		zap.String("order_number", req.OrderNumber),
		zap.String("payment_intent", pi.ID))

	return &order.Intent{ProviderRef: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// Refund refunds req.Amount of the intent, or all of it when Amount is zero.
func (g *StripeGateway) Refund(ctx context.Context, req order.RefundRequest) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.ProviderRef),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if req.Amount.IsPositive() {
		params.Amount = stripe.Int64(toCents(req.Amount))
	}
	params.Context = ctx
	params.AddMetadata("order_number", req.OrderNumber)
	params.SetIdempotencyKey("refund-" + req.ProviderRef)

	r, err := g.refunds.New(params)
	if err != nil {
		g.logger.Error("Failed to refund Stripe payment",
			zap.String("payment_intent", req.ProviderRef),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to refund: %w", err)
	}
	return r.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps the event to
// the gateway vocabulary. Events the store does not act on come back as
// order.GatewayIgnored.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*order.GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Warn("Rejected Stripe webhook", zap.Error(err))
		return nil, order.ErrInvalidWebhookSignature
	}

	out := &order.GatewayEvent{
		ID:         event.ID,
		Type:       order.GatewayIgnored,
		RawType:    string(event.Type),
		OccurredAt: time.Unix(event.Created, 0).UTC(),
		Raw:        payload,
	}
	if event.Data == nil {
		return out, nil
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse payment intent: %w", err)
		}
		out.Type = order.GatewayPaymentSucceeded
		out.ProviderRef = pi.ID

	case stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse payment intent: %w", err)
		}
		out.Type = order.GatewayPaymentFailed
		out.ProviderRef = pi.ID
		if pi.LastPaymentError != nil {
			out.FailureReason = pi.LastPaymentError.Msg
		}

	case stripe.EventTypeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.Type = order.GatewayRefunded
			out.ProviderRef = ch.PaymentIntent.ID
		}

	default:
		g.logger.Debug("Ignoring Stripe event", zap.String("type", out.RawType))
	}

	return out, nil
}

// toCents converts a dollar amount to the smallest currency unit.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

var _ order.PaymentGateway = (*StripeGateway)(nil)
