package store

import (
	"context"
	"errors"
)

var (
	ErrClosed   = errors.New("store: closed")
	ErrEmptyKey = errors.New("store: empty key")
)

// Keys the session manager persists. The names match what earlier clients
// wrote so an existing session survives an upgrade.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "user_email"
)

// SessionKeys lists every key the session manager owns.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUsername}

// Store is a session-scoped string key/value store. It outlives a single
// process run but not the session it is scoped to. Concrete drivers (memory,
// sqlite, redis) implement this.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// SetMany stores every entry atomically. Either all are written or none.
	SetMany(ctx context.Context, entries map[string]string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key in the session scope.
	Clear(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}
