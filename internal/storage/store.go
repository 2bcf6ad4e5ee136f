// Package storage is the durable key-value layer behind every per-user document:
// result cache entries, the accumulated collection, history, templates and lists.
package storage

import "context"

// Store is a durable byte-oriented key-value backend. Writes are atomic per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
