package order

import (
	"context"
	"errors"
	"time"

	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// processedEventTTL outlives the provider's retry schedule.
const processedEventTTL = 7 * 24 * time.Hour

// WebhookService applies verified payment provider callbacks.
type WebhookService struct {
	gateway     order.PaymentGateway
	payments    order.PaymentRepository
	tx          transaction.Scope
	idempotency shared.IdempotencyStore
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService. gateway may be nil, in
// which case every callback is rejected.
func NewWebhookService(
	gateway order.PaymentGateway,
	payments order.PaymentRepository,
	tx transaction.Scope,
	idempotency shared.IdempotencyStore,
	events shared.EventPublisher,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		gateway:     gateway,
		payments:    payments,
		tx:          tx,
		idempotency: idempotency,
		events:      events,
		logger:      logger,
	}
}

// Handle verifies and applies one callback. Replays and callbacks for
// unknown payments are acknowledged without effect.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "handle_webhook")
	defer func() { telemetry.EndSpan(span, err) }()
	return s.handle(ctx, payload, signature)
}

func (s *WebhookService) handle(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return shared.NewDomainError(CodePaymentUnavailable, "Card payments are not available")
	}
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	log := s.logger.With(zap.String("event_id", evt.ID), zap.String("event_type", evt.RawType))

	done, err := s.idempotency.IsProcessed(ctx, evt.ID)
	if err != nil {
		return err
	}
	if done {
		log.Info("Webhook replay ignored")
		return nil
	}
	if evt.Type == order.GatewayIgnored {
		return s.markProcessed(ctx, evt.ID)
	}

	if _, err := s.payments.FindByProviderRef(ctx, evt.ProviderRef); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Webhook for unknown payment", zap.String("provider_ref", evt.ProviderRef))
			return s.markProcessed(ctx, evt.ID)
		}
		return err
	}

	var touched *order.Order
	err = s.tx.Execute(ctx, func(repos transaction.Repositories) error {
		payment, err := repos.Payments().FindByProviderRef(ctx, evt.ProviderRef)
		if err != nil {
			return err
		}
		o, err := repos.Orders().FindByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		changed, err := apply(evt, payment, o)
		if err != nil || !changed {
			return err
		}
		payment.RecordEvent(evt.Raw)
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		touched = o
		return nil
	})
	if err != nil {
		log.Error("Failed to apply webhook", zap.Error(err))
		return err
	}

	if touched != nil {
		if events := touched.GetDomainEvents(); len(events) > 0 && s.events != nil {
			if err := s.events.Publish(ctx, events...); err != nil {
				log.Warn("Failed to publish payment events", zap.Error(err))
			}
		}
		touched.ClearDomainEvents()
		log.Info("Webhook applied",
			zap.String("order_number", touched.OrderNumber),
			zap.String("payment_status", string(touched.PaymentStatus)))
	}
	return s.markProcessed(ctx, evt.ID)
}

// apply moves payment and order to reflect evt. It reports false when the
// event changes nothing, such as a late failure after success.
func apply(evt *order.GatewayEvent, payment *order.Payment, o *order.Order) (bool, error) {
	switch evt.Type {
	case order.GatewayPaymentSucceeded:
		if !payment.Complete(evt.OccurredAt) {
			return false, nil
		}
		_, err := o.MarkPaid(evt.OccurredAt)
		return true, err
	case order.GatewayPaymentFailed:
		if !payment.Fail(evt.FailureReason) {
			return false, nil
		}
		o.MarkPaymentFailed()
		return true, nil
	case order.GatewayRefunded:
		if payment.Status != order.ChargeStatusCompleted {
			return false, nil
		}
		if err := payment.Refund(evt.OccurredAt); err != nil {
			return false, err
		}
		if o.PaymentStatus == order.PaymentStatusPaid {
			if err := o.MarkRefunded(nil, "Refunded at payment provider"); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}

func (s *WebhookService) markProcessed(ctx context.Context, eventID string) error {
	if _, err := s.idempotency.MarkProcessed(ctx, eventID, processedEventTTL); err != nil {
		s.logger.Warn("Failed to record processed webhook", zap.String("event_id", eventID), zap.Error(err))
	}
	return nil
}
