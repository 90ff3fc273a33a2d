package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
	_ "modernc.org/sqlite"
)

// The AUTOINCREMENT sequence is the FIFO order; ids are only used to
// address entries for removal.
const schema = `
CREATE TABLE IF NOT EXISTS outbox (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	kind        TEXT NOT NULL,
	payload     BLOB NOT NULL,
	enqueued_at TEXT NOT NULL
);
`

// SQLiteQueue implements Queue on a local sqlite file so pending
// mutations survive process restarts.
type SQLiteQueue struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// Option applies a configuration option to the SQLiteQueue.
type Option func(*SQLiteQueue)

// WithBusyTimeout sets the sqlite busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(q *SQLiteQueue) {
		if d > 0 {
			q.busyTimeout = d
		}
	}
}

// NewSQLiteQueue opens (or creates) the outbox database at path.
func NewSQLiteQueue(path string, opts ...Option) (*SQLiteQueue, error) {
	q := &SQLiteQueue{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(q)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening outbox database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := fmt.Sprintf("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = %d;", q.busyTimeout.Milliseconds())
	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating outbox schema: %w", err)
	}

	q.db = db
	return q, nil
}

// Close closes the database connection.
func (q *SQLiteQueue) Close() error {
	return q.db.Close()
}

// Enqueue appends an action to the tail of the log.
func (q *SQLiteQueue) Enqueue(ctx context.Context, a model.QueuedAction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO outbox (id, kind, payload, enqueued_at)
		VALUES (?, ?, ?, ?)
	`, a.ID, string(a.Kind), a.Payload, a.EnqueuedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// PeekAll returns every pending action in enqueue order.
func (q *SQLiteQueue) PeekAll(ctx context.Context) ([]model.QueuedAction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, kind, payload, enqueued_at FROM outbox ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QueuedAction
	for rows.Next() {
		var a model.QueuedAction
		var kind, enqueued string
		if err := rows.Scan(&a.ID, &kind, &a.Payload, &enqueued); err != nil {
			return nil, err
		}
		a.Kind = model.ActionKind(kind)
		if ts, err := time.Parse(time.RFC3339Nano, enqueued); err == nil {
			a.EnqueuedAt = ts
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Remove deletes an action by id.
func (q *SQLiteQueue) Remove(ctx context.Context, actionID string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, actionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of pending actions.
func (q *SQLiteQueue) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
