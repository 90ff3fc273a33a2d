package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS mirror (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       BLOB NOT NULL,
	pending    INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);
`

// SQLiteStore implements Store on a local sqlite file so the mirror
// survives process restarts.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithBusyTimeout sets the sqlite busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// NewSQLiteStore opens (or creates) the mirror database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := fmt.Sprintf("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = %d;", s.busyTimeout.Milliseconds())
	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns every mirrored entry of a kind, ordered by id.
func (s *SQLiteStore) List(ctx context.Context, kind Kind) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, pending FROM mirror WHERE kind = ? ORDER BY id
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var pending int
		if err := rows.Scan(&e.ID, &e.Data, &pending); err != nil {
			return nil, err
		}
		e.Pending = pending != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns a single entry by id.
func (s *SQLiteStore) Get(ctx context.Context, kind Kind, id string) (Entry, error) {
	var e Entry
	var pending int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, data, pending FROM mirror WHERE kind = ? AND id = ?
	`, string(kind), id).Scan(&e.ID, &e.Data, &pending)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	e.Pending = pending != 0
	return e, nil
}

// ReplaceAll swaps the full mirror of a kind inside one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, kind Kind, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mirror WHERE kind = ?`, string(kind)); err != nil {
		return err
	}
	now := timestamp()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mirror (kind, id, data, pending, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, string(kind), e.ID, e.Data, boolToInt(e.Pending), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Upsert mirrors a single entity.
func (s *SQLiteStore) Upsert(ctx context.Context, kind Kind, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mirror (kind, id, data, pending, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			data = excluded.data,
			pending = excluded.pending,
			updated_at = excluded.updated_at
	`, string(kind), e.ID, e.Data, boolToInt(e.Pending), timestamp())
	return err
}

// Delete removes a single entry.
func (s *SQLiteStore) Delete(ctx context.Context, kind Kind, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mirror WHERE kind = ? AND id = ?`, string(kind), id)
	return err
}

// timestamp formats now as a SQLite-compatible UTC ISO8601 string.
func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
