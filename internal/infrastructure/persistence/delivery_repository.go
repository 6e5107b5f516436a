package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormZoneRepository implements ZoneRepository using GORM
type GormZoneRepository struct {
	db *gorm.DB
}

// NewGormZoneRepository creates a new GormZoneRepository
func NewGormZoneRepository(db *gorm.DB) *GormZoneRepository {
	return &GormZoneRepository{db: db}
}

func (r *GormZoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Zone, error) {
	var zone delivery.Zone
	if err := r.db.WithContext(ctx).First(&zone, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Delivery zone")
	}
	return &zone, nil
}

func (r *GormZoneRepository) FindAll(ctx context.Context, activeOnly bool) ([]delivery.Zone, error) {
	var zones []delivery.Zone
	query := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// FindByPostcode matches the postcode inside the JSON postcode list, then
// confirms the match in Go.
func (r *GormZoneRepository) FindByPostcode(ctx context.Context, postcode string) (*delivery.Zone, error) {
	var candidates []delivery.Zone
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND postcodes LIKE ?", true, `%"`+postcode+`"%`).
		Order("sort_order ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].Covers(postcode) {
			return &candidates[i], nil
		}
	}
	return nil, shared.NotFound("Delivery zone")
}

func (r *GormZoneRepository) Save(ctx context.Context, zone *delivery.Zone) error {
	return saveVersioned(r.db.WithContext(ctx), zone, &zone.BaseAggregateRoot)
}

func (r *GormZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&delivery.Zone{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Delivery zone")
	}
	return nil
}

// GormProofRepository implements ProofRepository using GORM
type GormProofRepository struct {
	db *gorm.DB
}

// NewGormProofRepository creates a new GormProofRepository
func NewGormProofRepository(db *gorm.DB) *GormProofRepository {
	return &GormProofRepository{db: db}
}

func (r *GormProofRepository) Create(ctx context.Context, pod *delivery.ProofOfDelivery) error {
	return translateError(r.db.WithContext(ctx).Create(pod).Error)
}

func (r *GormProofRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*delivery.ProofOfDelivery, error) {
	var pod delivery.ProofOfDelivery
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&pod).Error; err != nil {
		return nil, notFound(err, "Proof of delivery")
	}
	return &pod, nil
}

var (
	_ delivery.ZoneRepository  = (*GormZoneRepository)(nil)
	_ delivery.ProofRepository = (*GormProofRepository)(nil)
)
