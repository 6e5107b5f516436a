package report

import (
	"github.com/zambezimeats/backend/internal/domain/report"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// RangeQuery is a store-local date range; both ends are inclusive.
type RangeQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// SalesQuery selects the sales report range and bucket size.
type SalesQuery struct {
	RangeQuery
	GroupBy string `form:"group_by" binding:"omitempty,oneof=day week month"`
}

// ProductQuery selects the top products report.
type ProductQuery struct {
	RangeQuery
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ExportQuery adds the output format to a sales query.
type ExportQuery struct {
	SalesQuery
	Format string `form:"format" binding:"omitempty,oneof=csv pdf"`
}

// ProductReport ranks products by revenue over a range.
type ProductReport struct {
	From     string                `json:"from"`
	To       string                `json:"to"`
	Products []report.ProductSales `json:"products"`
}

// Export is a rendered report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
