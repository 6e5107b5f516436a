package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// OrderRepository persists orders with their items and status history.
type OrderRepository interface {
	// Create inserts the order, its items and pending history.
	Create(ctx context.Context, o *Order) error
	// Save updates the order guarded by its version and appends pending
	// history. A stale version yields shared.ErrConcurrencyConflict.
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	// FindAll supports filters: user_id, status, payment_status, assigned_to,
	// from (time.Time), to (time.Time). Search matches order number,
	// customer name and email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// PaymentRepository persists payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	Save(ctx context.Context, p *Payment) error
	// FindByOrder returns the most recent payment for the order.
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	FindByProviderRef(ctx context.Context, ref string) (*Payment, error)
}
