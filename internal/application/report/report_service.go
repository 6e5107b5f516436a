package report

import (
	"context"
	"time"

	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/report"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	dashboardRecentOrders = 5
	dashboardTopProducts  = 5
	defaultProductLimit   = 10

	defaultStoreName = "Zambezi Meats"
)

// PDFExporter renders report snapshots to PDF.
type PDFExporter interface {
	SalesPDF(ctx context.Context, storeName string, rep report.SalesReport, top []report.ProductSales) ([]byte, error)
	InventoryPDF(ctx context.Context, storeName string, rep report.InventoryReport) ([]byte, error)
}

// SettingsReader exposes the admin-managed settings.
type SettingsReader interface {
	Values(ctx context.Context) (settings.Values, error)
}

// ReportService builds the admin dashboard and reports on demand.
type ReportService struct {
	repo     report.ReportRepository
	exporter PDFExporter
	settings SettingsReader
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewReportService creates a new ReportService. exporter may be nil, in
// which case only CSV exports are available.
func NewReportService(
	repo report.ReportRepository,
	exporter PDFExporter,
	settingsReader SettingsReader,
	location *time.Location,
	logger *zap.Logger,
) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		repo:     repo,
		exporter: exporter,
		settings: settingsReader,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Dashboard summarises today, the month to date and the work queue.
func (s *ReportService) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	now := s.now()
	today := report.LastDays(1, s.location, now)
	month := report.DateRange{
		From: time.Date(today.From.Year(), today.From.Month(), 1, 0, 0, 0, 0, s.location),
		To:   today.To,
	}

	facts, err := s.repo.OrderFacts(ctx, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	d := &report.Dashboard{GeneratedAt: now}
	d.TodayOrders, d.TodayRevenue = report.Revenue(today, facts)
	_, d.MonthRevenue = report.Revenue(month, facts)

	if d.PendingOrders, err = s.repo.CountOrdersByStatus(ctx, order.StatusPending); err != nil {
		return nil, err
	}
	if d.AwaitingDelivery, err = s.repo.CountOrdersByStatus(ctx, order.StatusReadyForDelivery, order.StatusOutForDelivery); err != nil {
		return nil, err
	}
	if d.LowStockProducts, err = s.repo.CountLowStock(ctx); err != nil {
		return nil, err
	}
	if d.TotalCustomers, err = s.repo.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.repo.RecentOrders(ctx, dashboardRecentOrders); err != nil {
		return nil, err
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []report.RecentOrder{}
	}

	last30 := report.LastDays(report.DefaultRangeDays, s.location, now)
	lines, err := s.repo.LineFacts(ctx, last30.Start(), last30.End())
	if err != nil {
		return nil, err
	}
	d.TopProducts = report.TopProducts(lines, dashboardTopProducts)
	return d, nil
}

// Sales buckets revenue over the requested range.
func (s *ReportService) Sales(ctx context.Context, q SalesQuery) (*report.SalesReport, error) {
	_, rep, err := s.sales(ctx, q)
	return rep, err
}

func (s *ReportService) sales(ctx context.Context, q SalesQuery) (report.DateRange, *report.SalesReport, error) {
	r, err := report.ParseDateRange(q.From, q.To, s.location, s.now())
	if err != nil {
		return r, nil, err
	}
	g, err := report.ParseGroupBy(q.GroupBy)
	if err != nil {
		return r, nil, err
	}
	facts, err := s.repo.OrderFacts(ctx, r.Start(), r.End())
	if err != nil {
		return r, nil, err
	}
	rep := report.BuildSalesReport(r, g, facts)
	return r, &rep, nil
}

// Products ranks products by revenue over the requested range.
func (s *ReportService) Products(ctx context.Context, q ProductQuery) (*ProductReport, error) {
	r, err := report.ParseDateRange(q.From, q.To, s.location, s.now())
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultProductLimit
	}
	top, err := s.topProducts(ctx, r, limit)
	if err != nil {
		return nil, err
	}
	return &ProductReport{From: r.From.Format("2006-01-02"), To: r.To.Format("2006-01-02"), Products: top}, nil
}

// Inventory values current stock and totals movements in the range.
func (s *ReportService) Inventory(ctx context.Context, q RangeQuery) (*report.InventoryReport, error) {
	r, err := report.ParseDateRange(q.From, q.To, s.location, s.now())
	if err != nil {
		return nil, err
	}
	return s.inventory(ctx, r)
}

// ExportSales renders the sales report as CSV or PDF.
func (s *ReportService) ExportSales(ctx context.Context, q ExportQuery) (*Export, error) {
	format, err := s.format(q.Format)
	if err != nil {
		return nil, err
	}
	r, rep, err := s.sales(ctx, q.SalesQuery)
	if err != nil {
		return nil, err
	}
	base := "sales-" + rep.From + "-to-" + rep.To

	if format == FormatCSV {
		body, err := salesCSV(*rep)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}

	top, err := s.topProducts(ctx, r, defaultProductLimit)
	if err != nil {
		return nil, err
	}
	body, err := s.exporter.SalesPDF(ctx, s.storeName(ctx), *rep, top)
	if err != nil {
		s.logger.Error("Failed to render sales report", zap.String("range", r.String()), zap.Error(err))
		return nil, err
	}
	return &Export{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

// ExportInventory renders the inventory report as CSV or PDF.
func (s *ReportService) ExportInventory(ctx context.Context, q RangeQuery, requested string) (*Export, error) {
	format, err := s.format(requested)
	if err != nil {
		return nil, err
	}
	r, err := report.ParseDateRange(q.From, q.To, s.location, s.now())
	if err != nil {
		return nil, err
	}
	rep, err := s.inventory(ctx, r)
	if err != nil {
		return nil, err
	}
	base := "inventory-" + rep.From + "-to-" + rep.To

	if format == FormatCSV {
		body, err := inventoryCSV(*rep)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}
	body, err := s.exporter.InventoryPDF(ctx, s.storeName(ctx), *rep)
	if err != nil {
		s.logger.Error("Failed to render inventory report", zap.String("range", r.String()), zap.Error(err))
		return nil, err
	}
	return &Export{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

func (s *ReportService) inventory(ctx context.Context, r report.DateRange) (*report.InventoryReport, error) {
	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.MovementTotals(ctx, r.Start(), r.End())
	if err != nil {
		return nil, err
	}
	rep := report.BuildInventoryReport(r, levels, movements)
	return &rep, nil
}

func (s *ReportService) topProducts(ctx context.Context, r report.DateRange, limit int) ([]report.ProductSales, error) {
	lines, err := s.repo.LineFacts(ctx, r.Start(), r.End())
	if err != nil {
		return nil, err
	}
	return report.TopProducts(lines, limit), nil
}

// format defaults to CSV; PDF needs a configured exporter.
func (s *ReportService) format(requested string) (string, error) {
	switch requested {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		if s.exporter == nil {
			return "", shared.NewDomainError("EXPORT_UNAVAILABLE", "PDF export is not configured")
		}
		return FormatPDF, nil
	}
	return "", shared.NewDomainError("INVALID_FORMAT", "format must be csv or pdf")
}

func (s *ReportService) storeName(ctx context.Context) string {
	if s.settings == nil {
		return defaultStoreName
	}
	values, err := s.settings.Values(ctx)
	if err != nil {
		s.logger.Warn("Failed to load store name", zap.Error(err))
		return defaultStoreName
	}
	return values.String(settings.KeyStoreName, defaultStoreName)
}
