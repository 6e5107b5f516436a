package promotion

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// PromotionRepository persists promotions and their redemptions.
type PromotionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	// FindAll supports filters: is_active (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Promotion, int64, error)
	Save(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Consume increments usage_count only while it is below usage_limit and
	// records the redemption. It returns a PROMO_USAGE_LIMIT error when the
	// guarded update touches no row.
	Consume(ctx context.Context, usage *Usage) error
	// Release undoes Consume for an order. Missing usage is not an error.
	Release(ctx context.Context, orderID uuid.UUID) error
	CountUsageByUser(ctx context.Context, promotionID, userID uuid.UUID) (int, error)
}
