package persistence

import (
	"context"
	"time"

	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSettingRepository implements SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) FindAll(ctx context.Context) ([]settings.Setting, error) {
	var list []settings.Setting
	if err := r.db.WithContext(ctx).Order("setting_group ASC, key ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormSettingRepository) FindByKeys(ctx context.Context, keys []string) ([]settings.Setting, error) {
	if len(keys) == 0 {
		return []settings.Setting{}, nil
	}
	var list []settings.Setting
	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// SaveAll writes new values for existing keys. Type, group and visibility
// are owned by migrations.
func (r *GormSettingRepository) SaveAll(ctx context.Context, list []settings.Setting) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range list {
			result := tx.Model(&settings.Setting{}).
				Where("key = ?", s.Key).
				Updates(map[string]any{"value": s.Value, "updated_at": now})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.NotFound("Setting " + s.Key)
			}
		}
		return nil
	})
}

var _ settings.SettingRepository = (*GormSettingRepository)(nil)
