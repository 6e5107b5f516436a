package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportapp "github.com/zambezimeats/backend/internal/application/report"
)

// ReportHandler serves the admin dashboard, reports and their exports.
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /admin/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Sales handles GET /admin/reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	var q reportapp.SalesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	report, err := h.reportService.Sales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Products handles GET /admin/reports/products
func (h *ReportHandler) Products(c *gin.Context) {
	var q reportapp.ProductQuery
	if !h.BindQuery(c, &q) {
		return
	}
	report, err := h.reportService.Products(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Inventory handles GET /admin/reports/inventory
func (h *ReportHandler) Inventory(c *gin.Context) {
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	report, err := h.reportService.Inventory(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportSales handles GET /admin/reports/sales/export
func (h *ReportHandler) ExportSales(c *gin.Context) {
	var q reportapp.ExportQuery
	if !h.BindQuery(c, &q) {
		return
	}
	export, err := h.reportService.ExportSales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendExport(c, export)
}

// ExportInventory handles GET /admin/reports/inventory/export
func (h *ReportHandler) ExportInventory(c *gin.Context) {
	var q struct {
		reportapp.RangeQuery
		Format string `form:"format" binding:"omitempty,oneof=csv pdf"`
	}
	if !h.BindQuery(c, &q) {
		return
	}
	export, err := h.reportService.ExportInventory(c.Request.Context(), q.RangeQuery, q.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendExport(c, export)
}

func sendExport(c *gin.Context, export *reportapp.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
