package session

import (
	"context"
	"time"
)

// Backend persists opaque session records under string keys.
type Backend interface {
	// Load returns the raw record, or sentinel.ErrNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Update applies fn to the current value (nil when absent) atomically.
	// A nil result removes the key; an error aborts without writing.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// UpdateFunc computes the next record from the current one. It may run more
// than once when the backend retries after a concurrent write.
type UpdateFunc func(current []byte) ([]byte, error)
