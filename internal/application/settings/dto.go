package settings

import (
	"time"

	"github.com/zambezimeats/backend/internal/domain/settings"
)

// UpdateSettingsRequest sets several values at once.
type UpdateSettingsRequest struct {
	Settings map[string]any `json:"settings" binding:"required,min=1"`
}

// SettingResponse represents one setting on the admin screen.
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       any       `json:"value"`
	Type        string    `json:"type"`
	IsPublic    bool      `json:"is_public"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSettingResponse converts a domain Setting to SettingResponse
func ToSettingResponse(s settings.Setting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Typed(),
		Type:        string(s.Type),
		IsPublic:    s.IsPublic,
		Description: s.Description,
		UpdatedAt:   s.UpdatedAt,
	}
}

// GroupedSettings maps a group name to its settings.
type GroupedSettings map[string][]SettingResponse
