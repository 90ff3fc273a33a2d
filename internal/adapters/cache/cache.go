// Package cache defines the durable local mirror of the remote store's
// entities.
//
// The cache is read synchronously by the UI layer: it is the fallback
// source of truth while offline and is refreshed after every
// successful remote fetch. It is always a non-authoritative, possibly
// stale mirror; the remote store wins.
package cache

import "context"

// Kind names one mirrored entity table.
type Kind string

// Mirrored entity kinds.
const (
	KindUsers       Kind = "users"
	KindRaces       Kind = "races"
	KindPredictions Kind = "predictions"
)

// Entry is one mirrored entity. Data holds the entity's JSON encoding.
// Pending marks an optimistic mirror of a write that has not yet been
// confirmed by the remote store; the post-drain refresh clears it.
type Entry struct {
	ID      string
	Data    []byte
	Pending bool
}

// Store provides synchronous, durable access to the mirror. A write to
// the remote store that succeeds must be mirrored here before the
// write call returns, so a read-after-write in the same session is
// consistent even before the next full refresh.
type Store interface {
	// List returns every mirrored entry of a kind.
	List(ctx context.Context, kind Kind) ([]Entry, error)

	// Get returns a single entry. Returns ErrNotFound if absent.
	Get(ctx context.Context, kind Kind, id string) (Entry, error)

	// ReplaceAll atomically swaps the full mirror of a kind for the
	// given entries. Used after a successful remote fetch.
	ReplaceAll(ctx context.Context, kind Kind, entries []Entry) error

	// Upsert mirrors a single entity, overwriting any previous entry.
	Upsert(ctx context.Context, kind Kind, e Entry) error

	// Delete removes a single entry. Deleting an absent id is not an
	// error.
	Delete(ctx context.Context, kind Kind, id string) error

	// Close releases the underlying storage.
	Close() error
}
