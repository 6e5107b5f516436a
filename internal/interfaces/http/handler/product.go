package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/zambezimeats/backend/internal/application/catalog"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 24
)

// ProductHandler serves the storefront catalogue and the admin product
// editor, including image uploads.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{productService: productService, imageService: imageService}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q catalogapp.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.productService.ListStorefront(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Featured handles GET /products/featured
func (h *ProductHandler) Featured(c *gin.Context) {
	limit := defaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxFeaturedLimit {
			h.Error(c, dto.ErrCodeBadRequest, "limit must be between 1 and "+strconv.Itoa(maxFeaturedLimit))
			return
		}
		limit = n
	}
	products, err := h.productService.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetBySlug handles GET /products/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminList handles GET /admin/products
func (h *ProductHandler) AdminList(c *gin.Context) {
	var q catalogapp.AdminProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.productService.ListAdmin(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get handles GET /admin/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create handles POST /admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update handles PUT /admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateStatus handles PATCH /admin/products/:id/status
func (h *ProductHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SetFeatured handles PATCH /admin/products/:id/featured
func (h *ProductHandler) SetFeatured(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateFeaturedRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.SetFeatured(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /admin/products/:id. Products still referenced by
// orders are archived and reported with 200; others are removed with 204.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.productService.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Archived {
		h.Success(c, resp)
		return
	}
	h.NoContent(c)
}

// RequestImageUpload handles POST /admin/products/:id/images/upload-url
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.imageService.RequestUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// AttachImage handles POST /admin/products/:id/images
func (h *ProductHandler) AttachImage(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AttachImageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.imageService.Attach(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// RemoveImage handles DELETE /admin/products/:id/images/:imageId
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.ParamUUID(c, "imageId")
	if !ok {
		return
	}
	product, err := h.imageService.Remove(c.Request.Context(), id, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
