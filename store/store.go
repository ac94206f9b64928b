// Package store provides durable key-value persistence for session state.
//
// The manager writes two keys: the bearer token and its issue timestamp.
// Implementations must tolerate missing keys (return found=false, not an
// error) so callers can run in environments without a storage backend.
package store

import "context"

// Keys written by the session manager.
const (
	KeyToken     = "token"
	KeyLoginTime = "loginTime"
)

// Store defines the interface for key-value persistence operations.
type Store interface {
	// Get retrieves a value by key. Absent keys return ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces a value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
