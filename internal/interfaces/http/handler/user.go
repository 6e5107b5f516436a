package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/zambezimeats/backend/internal/application/identity"
)

// UserHandler is the admin account management surface.
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /admin/users
func (h *UserHandler) List(c *gin.Context) {
	var q identityapp.UserListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.userService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// DeliveryStaff handles GET /admin/users/delivery
func (h *UserHandler) DeliveryStaff(c *gin.Context) {
	users, err := h.userService.ListDeliveryStaff(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// Get handles GET /admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create handles POST /admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update handles PUT /admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateStatus handles PATCH /admin/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateUserStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
