package event

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MetricsRecorder receives shop activity counters.
type MetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, paymentMethod string, total decimal.Decimal)
	RecordPayment(ctx context.Context, method, status string)
	RecordStatusChange(ctx context.Context, from, to string)
	RecordStockLow(ctx context.Context)
}

// MetricsHandler turns domain events into business metrics.
type MetricsHandler struct {
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics MetricsRecorder, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in.
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypePaymentCompleted,
		catalog.EventTypeStockLow,
	}
}

// Handle records the event. Unknown payloads are logged and skipped so a
// metrics gap never fails the publisher.
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		h.metrics.RecordOrderPlaced(ctx, string(e.PaymentMethod), e.Total)
	case *order.OrderStatusChangedEvent:
		h.metrics.RecordStatusChange(ctx, string(e.From), string(e.To))
	case *order.PaymentCompletedEvent:
		h.metrics.RecordPayment(ctx, string(e.PaymentMethod), string(order.PaymentStatusPaid))
	case *catalog.StockLowEvent:
		h.metrics.RecordStockLow(ctx)
	default:
		h.logger.Debug("No metric for event", zap.String("event_type", event.EventType()))
	}
	return nil
}
