package inventory

import (
	"context"

	"github.com/google/uuid"
)

// MovementRepository stores the append-only stock ledger.
type MovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	CreateBatch(ctx context.Context, movements []StockMovement) error
	FindAll(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]StockMovement, error)
}
