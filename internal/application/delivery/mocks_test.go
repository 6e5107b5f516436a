package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/storage"
)

type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Zone), args.Error(1)
}

func (m *MockZoneRepository) FindAll(ctx context.Context, activeOnly bool) ([]delivery.Zone, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]delivery.Zone), args.Error(1)
}

func (m *MockZoneRepository) FindByPostcode(ctx context.Context, postcode string) (*delivery.Zone, error) {
	args := m.Called(ctx, postcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Zone), args.Error(1)
}

func (m *MockZoneRepository) Save(ctx context.Context, zone *delivery.Zone) error {
	return m.Called(ctx, zone).Error(0)
}

func (m *MockZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *order.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *order.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*order.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByProviderRef(ctx context.Context, ref string) (*order.Payment, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Payment), args.Error(1)
}

type MockProofRepository struct {
	mock.Mock
}

func (m *MockProofRepository) Create(ctx context.Context, pod *delivery.ProofOfDelivery) error {
	return m.Called(ctx, pod).Error(0)
}

func (m *MockProofRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*delivery.ProofOfDelivery, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.ProofOfDelivery), args.Error(1)
}

type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error) {
	args := m.Called(ctx, key, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PresignedUpload), args.Error(1)
}

func (m *MockMediaStorage) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockMediaStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// readyOrder returns an order assigned to driverID and ready for dispatch.
func readyOrder(t *testing.T, method order.PaymentMethod, driverID uuid.UUID) *order.Order {
	t.Helper()
	item := order.NewItem(uuid.New(), "Boerewors", "BW-001", "kg", decimal.NewFromInt(20), decimal.NewFromInt(2))
	totals := order.ComputeTotals(item.LineTotal, decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(10))
	o, err := order.NewOrder("ZM-20260101-ABCDEF",
		order.Customer{UserID: uuid.New(), Name: "Thandi", Email: "thandi@example.com"},
		method, []order.Item{item}, totals,
		order.ShippingAddress{Recipient: "Thandi", Line1: "1 Main St", Suburb: "Parramatta", State: "NSW", Postcode: "2150"})
	require.NoError(t, err)
	for _, next := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusReadyForDelivery} {
		require.NoError(t, o.TransitionTo(next, nil, ""))
	}
	require.NoError(t, o.AssignDriver(driverID, nil))
	o.ClearDomainEvents()
	return o
}
