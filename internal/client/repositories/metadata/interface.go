package metadata

import (
	"context"
)

// Repository is a small key/value store for client-side state such as the
// persisted session. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Update runs fn against a transactional view of the store. Writes made
	// through tx are committed together or not at all.
	Update(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
