package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/zambezimeats/backend/internal/application/order"
)

// CheckoutHandler turns the customer's cart into an order.
type CheckoutHandler struct {
	BaseHandler
	checkoutService *orderapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *orderapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Quote handles POST /checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req orderapp.QuoteRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	quote, err := h.checkoutService.Quote(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Place handles POST /checkout
func (h *CheckoutHandler) Place(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req orderapp.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.checkoutService.Place(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
