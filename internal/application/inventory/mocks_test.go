package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// MockProductRepository mocks the product lookups stock management uses.
type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return m.Called(ctx, movement).Error(0)
}

func (m *MockMovementRepository) CreateBatch(ctx context.Context, movements []inventory.StockMovement) error {
	return m.Called(ctx, movements).Error(0)
}

func (m *MockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, reference string) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// MockStockAlertNotifier records alerts.
type MockStockAlertNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
}

func (n *MockStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *MockStockAlertNotifier) GetAlerts() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]StockAlert, len(n.alerts))
	copy(out, n.alerts)
	return out
}

type fixedSettings settings.Values

func (f fixedSettings) Values(context.Context) (settings.Values, error) {
	return settings.Values(f), nil
}
