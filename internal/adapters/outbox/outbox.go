// Package outbox defines the durable FIFO log of mutations recorded
// while the remote store was unreachable.
//
// Entries are replayed strictly in enqueue order and removed only
// after a confirmed successful replay (or an explicit drop when the
// remote store rejects them permanently). The log is never reordered.
package outbox

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Queue is the pending-mutation log.
type Queue interface {
	// Enqueue appends an action to the tail of the log.
	Enqueue(ctx context.Context, a model.QueuedAction) error

	// PeekAll returns every pending action in enqueue order without
	// removing anything.
	PeekAll(ctx context.Context) ([]model.QueuedAction, error)

	// Remove deletes an action after a confirmed replay or a permanent
	// rejection. Removing an unknown id returns ErrNotFound.
	Remove(ctx context.Context, actionID string) error

	// Len returns the number of pending actions.
	Len(ctx context.Context) (int, error)

	// Close releases the underlying storage.
	Close() error
}
