// Package tokenstore persists exchanged tokens between process runs.
//
// The in-process cache inside svcacct lives and dies with its Credentials, so
// short-lived tools would hit the token endpoint on every invocation. The CLI
// parks remote tokens here instead and reuses them until expiry. Two drivers
// are provided: SQLite for a single-user on-disk cache and Redis for caches
// shared between hosts. Self-signed tokens are never stored; minting them is
// cheaper than a disk read.
package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/idx"
)

// ErrNotFound is returned when no live entry exists for a key. Expired
// entries count as absent.
var ErrNotFound = errors.New("tokenstore: entry not found")

// Entry is one cached token.
type Entry struct {
	// Key identifies the token. The CLI derives it from the profile name,
	// grant kind, and audience or scope set.
	Key string

	// ID is assigned by the store when storing an entry without one.
	ID idx.ID

	// Token is the bearer token value.
	Token string

	// Type is the token type, normally "Bearer".
	Type string

	// Expiry is when the token stops being usable. Stores treat entries at
	// or past this instant as absent.
	Expiry time.Time
}

// Store is a persistent token cache. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the live entry for key, or ErrNotFound when the key is
	// missing or its token has expired.
	Get(ctx context.Context, key string) (Entry, error)

	// Put inserts or replaces the entry for e.Key.
	Put(ctx context.Context, e Entry) error

	// Delete removes the entry for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// PurgeExpired removes entries whose expiry has passed and reports how
	// many were removed.
	PurgeExpired(ctx context.Context) (int, error)

	Close() error
}
