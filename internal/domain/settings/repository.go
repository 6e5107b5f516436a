package settings

import "context"

// SettingRepository persists settings.
type SettingRepository interface {
	FindAll(ctx context.Context) ([]Setting, error)
	FindByKeys(ctx context.Context, keys []string) ([]Setting, error)
	// SaveAll updates values of existing keys in one transaction.
	SaveAll(ctx context.Context, settings []Setting) error
}
