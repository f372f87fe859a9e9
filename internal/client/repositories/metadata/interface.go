// Package metadata is the client's local key/value storage. Values survive
// process restarts because they live in the SQLite database.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set inserts or replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}
