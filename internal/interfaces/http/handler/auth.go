package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/zambezimeats/backend/internal/application/identity"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves registration, login, token refresh and the caller's
// own profile.
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}
	pair, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"token": pair})
}

// Logout handles POST /auth/logout. The presented access token stays
// revoked until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile handles PUT /auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword handles PUT /auth/password. Every other session of the
// user is revoked and a fresh token pair is returned.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.authService.ChangePassword(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
