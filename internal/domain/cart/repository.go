package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepository persists carts together with their lines.
type CartRepository interface {
	// FindByUser returns shared.ErrNotFound when the user has no cart yet.
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Save upserts the cart and replaces its lines.
	Save(ctx context.Context, cart *Cart) error
	// DeleteIdleSince removes carts last touched before cutoff, lines
	// included, and returns how many carts went.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}
