package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordOrderPlaced(ctx context.Context, paymentMethod string, total decimal.Decimal) {
	m.Called(ctx, paymentMethod, total)
}

func (m *MockMetricsRecorder) RecordPayment(ctx context.Context, method, status string) {
	m.Called(ctx, method, status)
}

func (m *MockMetricsRecorder) RecordStatusChange(ctx context.Context, from, to string) {
	m.Called(ctx, from, to)
}

func (m *MockMetricsRecorder) RecordStockLow(ctx context.Context) {
	m.Called(ctx)
}

func testOrder() *order.Order {
	return &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		OrderNumber:       "ZM-20260310-0001",
		PaymentMethod:     order.PaymentMethodStripe,
		Status:            order.StatusConfirmed,
		Total:             decimal.RequireFromString("84.50"),
	}
}

func TestMetricsHandler_EventTypes(t *testing.T) {
	h := NewMetricsHandler(new(MockMetricsRecorder), nil)
	assert.ElementsMatch(t, []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypePaymentCompleted,
		catalog.EventTypeStockLow,
	}, h.EventTypes())
}

func TestMetricsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	o := testOrder()

	tests := []struct {
		name   string
		event  shared.DomainEvent
		expect func(m *MockMetricsRecorder)
	}{
		{
			name:  "order placed",
			event: order.NewOrderPlacedEvent(o),
			expect: func(m *MockMetricsRecorder) {
				m.On("RecordOrderPlaced", ctx, "stripe", o.Total).Once()
			},
		},
		{
			name:  "status changed",
			event: order.NewOrderStatusChangedEvent(o, order.StatusPending),
			expect: func(m *MockMetricsRecorder) {
				m.On("RecordStatusChange", ctx, "pending", "confirmed").Once()
			},
		},
		{
			name:  "payment completed",
			event: order.NewPaymentCompletedEvent(o),
			expect: func(m *MockMetricsRecorder) {
				m.On("RecordPayment", ctx, "stripe", "paid").Once()
			},
		},
		{
			name:  "stock low",
			event: catalog.NewStockLowEvent(&catalog.Product{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}}, SKU: "BW-1"}),
			expect: func(m *MockMetricsRecorder) {
				m.On("RecordStockLow", ctx).Once()
			},
		},
		{
			name:   "unrelated event",
			event:  catalog.NewCategoryCreatedEvent(&catalog.Category{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}}}),
			expect: func(*MockMetricsRecorder) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockMetricsRecorder)
			tt.expect(m)

			err := NewMetricsHandler(m, nil).Handle(ctx, tt.event)

			assert.NoError(t, err)
			m.AssertExpectations(t)
		})
	}
}
