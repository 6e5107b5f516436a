package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newReaderMetrics(t *testing.T) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil, nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_RecordOrderPlaced(t *testing.T) {
	bm, reader := newReaderMetrics(t)
	ctx := context.Background()

	bm.RecordOrderPlaced(ctx, "stripe", decimal.RequireFromString("120.50"))
	bm.RecordOrderPlaced(ctx, "cod", decimal.RequireFromString("79.50"))

	got := collect(t, reader)

	orders := got["zm_orders_placed_total"].Data.(metricdata.Sum[int64])
	var count int64
	for _, dp := range orders.DataPoints {
		count += dp.Value
	}
	assert.Equal(t, int64(2), count)

	revenue := got["zm_order_revenue_total"].Data.(metricdata.Sum[float64])
	var total float64
	for _, dp := range revenue.DataPoints {
		total += dp.Value
	}
	assert.InDelta(t, 200.0, total, 0.001)
}

func TestBusinessMetrics_RecordPaymentAndStatus(t *testing.T) {
	bm, reader := newReaderMetrics(t)
	ctx := context.Background()

	bm.RecordPayment(ctx, "stripe", "paid")
	bm.RecordStatusChange(ctx, "pending", "confirmed")
	bm.RecordStockLow(ctx)

	got := collect(t, reader)
	assert.Contains(t, got, "zm_payments_total")
	assert.Contains(t, got, "zm_order_status_changes_total")
	assert.Contains(t, got, "zm_stock_low_events_total")
}

type stubLowStock struct {
	n     int64
	err   error
	calls atomic.Int32
}

func (s *stubLowStock) CountLowStock(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return s.n, s.err
}

func TestBusinessMetrics_LowStockCollection(t *testing.T) {
	bm, reader := newReaderMetrics(t)
	counter := &stubLowStock{n: 4}

	bm.StartLowStockCollection(context.Background(), counter, 10*time.Millisecond)
	defer bm.Stop()

	require.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	gauge := collect(t, reader)["zm_low_stock_products"].Data.(metricdata.Gauge[int64])
	require.NotEmpty(t, gauge.DataPoints)
	assert.Equal(t, int64(4), gauge.DataPoints[0].Value)
}

func TestBusinessMetrics_LowStockCollectionErrorIsTolerated(t *testing.T) {
	bm, _ := newReaderMetrics(t)
	counter := &stubLowStock{err: errors.New("db down")}

	ctx, cancel := context.WithCancel(context.Background())
	bm.StartLowStockCollection(ctx, counter, 5*time.Millisecond)
	require.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	bm.Stop()
	bm.Stop()
}
