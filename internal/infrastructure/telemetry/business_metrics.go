package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

const defaultCollectInterval = 5 * time.Minute

// LowStockCounter reports how many products are at or below their alert
// threshold.
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetrics records shop activity: orders, revenue, payments, order
// status transitions and stock health.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersPlaced   metric.Int64Counter
	orderRevenue   metric.Float64Counter
	payments       metric.Int64Counter
	statusChanges  metric.Int64Counter
	stockLowEvents metric.Int64Counter
	lowStockGauge  metric.Int64Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewBusinessMetrics registers the instruments on meter.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger, stopCh: make(chan struct{})}
	var err error

	if bm.ordersPlaced, err = meter.Int64Counter("zm_orders_placed_total",
		metric.WithDescription("Orders placed"), metric.WithUnit("{orders}")); err != nil {
		return nil, err
	}
	if bm.orderRevenue, err = meter.Float64Counter("zm_order_revenue_total",
		metric.WithDescription("Order totals in AUD, GST inclusive"), metric.WithUnit("AUD")); err != nil {
		return nil, err
	}
	if bm.payments, err = meter.Int64Counter("zm_payments_total",
		metric.WithDescription("Payment outcomes by method and status"), metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if bm.statusChanges, err = meter.Int64Counter("zm_order_status_changes_total",
		metric.WithDescription("Order status transitions"), metric.WithUnit("{transitions}")); err != nil {
		return nil, err
	}
	if bm.stockLowEvents, err = meter.Int64Counter("zm_stock_low_events_total",
		metric.WithDescription("Times a product dropped to its low stock threshold"), metric.WithUnit("{events}")); err != nil {
		return nil, err
	}
	if bm.lowStockGauge, err = meter.Int64Gauge("zm_low_stock_products",
		metric.WithDescription("Products at or below their low stock threshold"), metric.WithUnit("{products}")); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderPlaced counts an order and adds its total to revenue.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("payment_method", paymentMethod))
	bm.ordersPlaced.Add(ctx, 1, attrs)
	bm.orderRevenue.Add(ctx, total.InexactFloat64(), attrs)
}

// RecordPayment counts a payment reaching status.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, method, status string) {
	bm.payments.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", method),
		attribute.String("status", status),
	))
}

// RecordStatusChange counts an order moving between statuses.
func (bm *BusinessMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	bm.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordStockLow counts a low stock alert.
func (bm *BusinessMetrics) RecordStockLow(ctx context.Context) {
	bm.stockLowEvents.Add(ctx, 1)
}

// StartLowStockCollection samples counter every interval until Stop or ctx
// cancellation.
func (bm *BusinessMetrics) StartLowStockCollection(ctx context.Context, counter LowStockCounter, interval time.Duration) {
	if interval <= 0 {
		interval = defaultCollectInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		bm.collectLowStock(ctx, counter)
		for {
			select {
			case <-ctx.Done():
				return
			case <-bm.stopCh:
				return
			case <-ticker.C:
				bm.collectLowStock(ctx, counter)
			}
		}
	}()
}

func (bm *BusinessMetrics) collectLowStock(ctx context.Context, counter LowStockCounter) {
	n, err := counter.CountLowStock(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.lowStockGauge.Record(ctx, n)
}

// Stop ends periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() { close(bm.stopCh) })
}
