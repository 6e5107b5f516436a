package persistence

import (
	"errors"

	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// saveVersioned inserts a new aggregate row, or updates the existing one
// guarded by the version the aggregate was loaded with. Associations are
// never written here; repositories persist child rows themselves. Columns
// in omit are left untouched on update. Inserts select every column so
// false and zero values are not replaced by column defaults.
func saveVersioned(tx *gorm.DB, model any, root *shared.BaseAggregateRoot, omit ...string) error {
	var current struct{ Version int }
	err := tx.Model(model).Select("version").Where("id = ?", root.ID).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Select("*").Omit(clause.Associations).Create(model).Error; err != nil {
			return translateError(err)
		}
		root.MarkPersisted()
		return nil
	}
	if err != nil {
		return err
	}

	if current.Version != root.PersistedVersion() {
		return shared.ErrConcurrencyConflict
	}
	result := tx.Model(model).
		Where("version = ?", current.Version).
		Select("*").
		Omit(append(omit, clause.Associations)...).
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	root.MarkPersisted()
	return nil
}

// translateError maps driver errors the services care about onto domain errors.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFound(resource)
	}
	return err
}
