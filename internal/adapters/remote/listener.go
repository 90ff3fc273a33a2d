package remote

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Channels the remote store raises change notifications on. The store
// side NOTIFYs with the changed entity id as payload.
const (
	ChannelRaces       = "races"
	ChannelPredictions = "predictions"
)

// Notification is one change event from the remote store.
type Notification struct {
	Channel string
	Payload string
}

// PGListener subscribes to the store's LISTEN/NOTIFY channels and
// feeds the sync coordinator.
type PGListener struct {
	ln *pgdriver.Listener
}

// NewPGListener creates a listener on the store's connection pool.
func NewPGListener(db *bun.DB) *PGListener {
	return &PGListener{ln: pgdriver.NewListener(db)}
}

// Start subscribes to the race and prediction channels and returns the
// notification stream. The stream closes when ctx is canceled or the
// listener is closed.
func (l *PGListener) Start(ctx context.Context) (<-chan Notification, error) {
	if err := l.ln.Listen(ctx, ChannelRaces, ChannelPredictions); err != nil {
		return nil, classify("listen", err)
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		for n := range l.ln.Channel() {
			select {
			case out <- Notification{Channel: n.Channel, Payload: n.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close tears down the subscription.
func (l *PGListener) Close() error {
	return l.ln.Close()
}
