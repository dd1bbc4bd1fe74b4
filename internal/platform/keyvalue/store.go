// Package keyvalue provides the keyed JSON blob store used when Firestore is not configured.
package keyvalue

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("keyvalue: key not found")

// ErrConflict is returned when a write lost a race with a concurrent transaction.
var ErrConflict = errors.New("keyvalue: conflicting write")

// UpdateFunc receives the current value (nil when absent) and returns the replacement.
// Returning a nil slice deletes the key.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a load/save keyed store holding one serialized value per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Keys lists keys sharing the prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// RunInTx groups operations. Nested calls join the outer transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close() error
}
