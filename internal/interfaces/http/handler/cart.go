package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/zambezimeats/backend/internal/application/cart"
)

// CartHandler serves the signed-in customer's cart.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), userID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
