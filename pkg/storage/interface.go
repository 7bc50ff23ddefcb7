package storage

import (
	"context"
	"time"
)

// KVStore is the durable key-value storage the document library persists into.
// Values are opaque bytes; callers own their encoding.
type KVStore interface {
	// Get returns the value for key. found is false when the key does not exist
	Get(key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing any previous value
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(key string) error

	// Close cleanly closes the underlying database
	Close() error
}

// StoreAdmin handles lifecycle and administrative operations
type StoreAdmin interface {
	// Keys lists stored keys (without the internal namespace prefix) in sorted order
	Keys() ([]string, error)

	// RunGC runs periodic garbage collection. Should be run in a goroutine
	RunGC(ctx context.Context, interval time.Duration)
}
