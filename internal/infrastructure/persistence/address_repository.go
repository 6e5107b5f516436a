package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

func (r *GormAddressRepository) Create(ctx context.Context, address *identity.Address) error {
	return r.db.WithContext(ctx).Create(models.AddressModelFromDomain(address)).Error
}

func (r *GormAddressRepository) Update(ctx context.Context, address *identity.Address) error {
	result := r.db.WithContext(ctx).Save(models.AddressModelFromDomain(address))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Address")
	}
	return nil
}

func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AddressModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Address")
	}
	return nil
}

func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Address, error) {
	var model models.AddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Address")
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's addresses, default first.
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*identity.Address, error) {
	var rows []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	addresses := make([]*identity.Address, len(rows))
	for i := range rows {
		addresses[i] = rows[i].ToDomain()
	}
	return addresses, nil
}

// SetDefault clears the user's current default and flags id, in one transaction.
func (r *GormAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AddressModel{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.AddressModel{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Address")
		}
		return nil
	})
}

var _ identity.AddressRepository = (*GormAddressRepository)(nil)
