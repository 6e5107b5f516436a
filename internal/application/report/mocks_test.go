package report

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/report"
	"github.com/zambezimeats/backend/internal/domain/settings"
)

// MockReportRepository is a mock implementation of report.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) OrderFacts(ctx context.Context, start, end time.Time) ([]report.OrderFact, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.OrderFact), args.Error(1)
}

func (m *MockReportRepository) LineFacts(ctx context.Context, start, end time.Time) ([]report.LineFact, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LineFact), args.Error(1)
}

func (m *MockReportRepository) StockLevels(ctx context.Context) ([]report.StockLevel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.StockLevel), args.Error(1)
}

func (m *MockReportRepository) MovementTotals(ctx context.Context, start, end time.Time) ([]report.MovementTotal, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MovementTotal), args.Error(1)
}

func (m *MockReportRepository) CountOrdersByStatus(ctx context.Context, statuses ...order.Status) (int64, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountLowStock(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) RecentOrders(ctx context.Context, limit int) ([]report.RecentOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.RecentOrder), args.Error(1)
}

type fakeExporter struct {
	storeName string
	top       []report.ProductSales
}

func (f *fakeExporter) SalesPDF(_ context.Context, storeName string, _ report.SalesReport, top []report.ProductSales) ([]byte, error) {
	f.storeName, f.top = storeName, top
	return []byte("%PDF-sales"), nil
}

func (f *fakeExporter) InventoryPDF(_ context.Context, storeName string, _ report.InventoryReport) ([]byte, error) {
	f.storeName = storeName
	return []byte("%PDF-inventory"), nil
}

type fixedSettings settings.Values

func (f fixedSettings) Values(context.Context) (settings.Values, error) {
	return settings.Values(f), nil
}
