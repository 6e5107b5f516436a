package handler

import (
	"github.com/gin-gonic/gin"
	settingsapp "github.com/zambezimeats/backend/internal/application/settings"
)

// SettingsHandler exposes store settings: the public subset to everyone
// and the full grouped set to admins.
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Public handles GET /settings/public
func (h *SettingsHandler) Public(c *gin.Context) {
	values, err := h.settingsService.Public(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, values)
}

// List handles GET /admin/settings
func (h *SettingsHandler) List(c *gin.Context) {
	grouped, err := h.settingsService.Grouped(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grouped)
}

// Update handles PUT /admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	actor, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req settingsapp.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	grouped, err := h.settingsService.Update(c.Request.Context(), actor.String(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grouped)
}
