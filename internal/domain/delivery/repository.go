package delivery

import (
	"context"

	"github.com/google/uuid"
)

// ZoneRepository persists delivery zones.
type ZoneRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Zone, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Zone, error)
	// FindByPostcode returns the active zone serving postcode, or shared.ErrNotFound.
	FindByPostcode(ctx context.Context, postcode string) (*Zone, error)
	Save(ctx context.Context, zone *Zone) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProofRepository persists proofs of delivery.
type ProofRepository interface {
	Create(ctx context.Context, pod *ProofOfDelivery) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*ProofOfDelivery, error)
}
