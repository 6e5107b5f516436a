package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/zambezimeats/backend/internal/application/inventory"
)

// InventoryHandler serves stock levels and manual adjustments for staff.
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// List handles GET /admin/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	var q inventoryapp.StockListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.inventoryService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// LowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Adjust handles POST /admin/inventory/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.inventoryService.Adjust(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Movements handles GET /admin/inventory/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	var q inventoryapp.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.inventoryService.Movements(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}
