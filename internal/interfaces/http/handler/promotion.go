package handler

import (
	"github.com/gin-gonic/gin"
	promotionapp "github.com/zambezimeats/backend/internal/application/promotion"
)

// PromotionHandler validates promo codes at checkout and manages them in
// the admin panel.
type PromotionHandler struct {
	BaseHandler
	promotionService *promotionapp.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(promotionService *promotionapp.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// Validate handles POST /checkout/promo
func (h *PromotionHandler) Validate(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req promotionapp.ValidateCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.promotionService.Validate(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /admin/promotions
func (h *PromotionHandler) List(c *gin.Context) {
	var q promotionapp.PromotionListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.promotionService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /admin/promotions/:id
func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	promo, err := h.promotionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promo)
}

// Create handles POST /admin/promotions
func (h *PromotionHandler) Create(c *gin.Context) {
	var req promotionapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promo, err := h.promotionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, promo)
}

// Update handles PUT /admin/promotions/:id
func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req promotionapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promo, err := h.promotionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promo)
}

// Delete handles DELETE /admin/promotions/:id
func (h *PromotionHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.promotionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
