package cart

import "context"

// Store persists one Cart per user.
//
// Save writes c only if the stored version still equals expectedVersion;
// expectedVersion 0 means the cart must not exist yet. A failed condition is
// reported as ErrConflict.
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, userID string) (Cart, bool, error)
	Save(ctx context.Context, c Cart, expectedVersion int64) error
}
