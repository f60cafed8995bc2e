// Package kv provides a small key-value store abstraction used for the
// denormalized resume records that the browser client reads directly.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal key-value interface. Values are opaque byte slices;
// callers own serialization.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	// List returns all keys matching the given glob pattern, e.g. "resume:*".
	List(ctx context.Context, pattern string) ([]string, error)
	Close() error
}
