package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/zambezimeats/backend/internal/application/identity"
)

// AddressHandler manages the caller's saved delivery addresses.
type AddressHandler struct {
	BaseHandler
	addressService *identityapp.AddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addressService *identityapp.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// List handles GET /addresses
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// Get handles GET /addresses/:id
func (h *AddressHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	address, err := h.addressService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, identityapp.ToAddressResponse(address))
}

// Create handles POST /addresses
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req identityapp.AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// Update handles PUT /addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req identityapp.AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// SetDefault handles POST /addresses/:id/default
func (h *AddressHandler) SetDefault(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	address, err := h.addressService.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// Delete handles DELETE /addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.addressService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
