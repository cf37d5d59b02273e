// Package kv abstracts the persistence collaborator: a string key-value store
// in which an absent key is a normal outcome, never an error. Backends are
// interchangeable and selected by configuration.
package kv

import "context"

// Store is implemented by each persistence backend.
type Store interface {
	// Read returns the value stored under key. ok is false when the key is
	// absent; err is reserved for backend failures.
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
