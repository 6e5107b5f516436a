package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/zambezimeats/backend/internal/application/order"
)

// OrderHandler serves order history for customers and order management
// for staff.
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListMine handles GET /orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q orderapp.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.orderService.ListMine(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// GetMine handles GET /orders/:number
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetMine(c.Request.Context(), userID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CancelMine handles POST /orders/:number/cancel
func (h *OrderHandler) CancelMine(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req orderapp.CancelOrderRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	order, err := h.orderService.CancelMine(c.Request.Context(), userID, c.Param("number"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /admin/orders
func (h *OrderHandler) List(c *gin.Context) {
	var q orderapp.AdminOrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /admin/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus handles PATCH /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AssignDriver handles POST /admin/orders/:id/assign
func (h *OrderHandler) AssignDriver(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.AssignDriverRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.AssignDriver(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Refund handles POST /admin/orders/:id/refund
func (h *OrderHandler) Refund(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.RefundOrderRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	order, err := h.orderService.Refund(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
