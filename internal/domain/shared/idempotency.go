package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed external event ids, such as payment
// webhook deliveries, so replays are acknowledged without side effects.
type IdempotencyStore interface {
	// MarkProcessed returns false when eventID was already marked.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}
