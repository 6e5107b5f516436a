package printing

import (
	"context"
	"time"

	"github.com/zambezimeats/backend/internal/domain/report"
)

// ReportExporter renders report snapshots to PDF.
type ReportExporter struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	now      func() time.Time
}

// NewReportExporter combines the template engine with a PDF renderer.
func NewReportExporter(engine *TemplateEngine, renderer PDFRenderer) *ReportExporter {
	return &ReportExporter{engine: engine, renderer: renderer, now: time.Now}
}

type salesView struct {
	Title       string
	StoreName   string
	GeneratedAt time.Time
	Report      report.SalesReport
	TopProducts []report.ProductSales
}

type inventoryView struct {
	Title       string
	StoreName   string
	GeneratedAt time.Time
	Report      report.InventoryReport
}

// SalesPDF renders the sales report with its top products.
func (x *ReportExporter) SalesPDF(ctx context.Context, storeName string, rep report.SalesReport, top []report.ProductSales) ([]byte, error) {
	view := salesView{
		Title:       "Sales report " + rep.From + " to " + rep.To,
		StoreName:   storeName,
		GeneratedAt: x.now(),
		Report:      rep,
		TopProducts: top,
	}
	return x.render(ctx, TemplateSalesReport, view.Title, storeName, view, true)
}

// InventoryPDF renders stock valuation and movement totals.
func (x *ReportExporter) InventoryPDF(ctx context.Context, storeName string, rep report.InventoryReport) ([]byte, error) {
	view := inventoryView{
		Title:       "Inventory report " + rep.From + " to " + rep.To,
		StoreName:   storeName,
		GeneratedAt: x.now(),
		Report:      rep,
	}
	return x.render(ctx, TemplateInventoryReport, view.Title, storeName, view, false)
}

func (x *ReportExporter) render(ctx context.Context, name, title, storeName string, data any, landscape bool) ([]byte, error) {
	body, err := x.engine.Render(name, data)
	if err != nil {
		return nil, err
	}
	footer, err := x.engine.Render(TemplateFooter, struct{ StoreName string }{storeName})
	if err != nil {
		return nil, err
	}
	return x.renderer.Render(ctx, Document{
		HTML:      body,
		Title:     title,
		Landscape: landscape,
		Footer:    footer,
	})
}
