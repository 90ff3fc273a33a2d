// Package remote is the client for the relational backing store.
//
// The remote store is the single source of truth; this package exposes
// per-entity CRUD with upsert semantics on predictions, partial
// updates on races, a LISTEN/NOTIFY change stream, and classification
// of driver errors into the unavailable/rejected/conflict taxonomy the
// sync coordinator dispatches on.
package remote

import (
	"context"
	"database/sql"

	"github.com/okian/podium/internal/domain/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Store is the remote persistence contract consumed by the sync
// coordinator. Every returned error is classified: errors.Is against
// ErrUnavailable, ErrRejected or ErrConflict decides queueing.
type Store interface {
	// Ping probes connectivity.
	Ping(ctx context.Context) error

	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u model.User) error
	UpdateUser(ctx context.Context, u model.User) error
	// UpdateUserStats partially updates the derived counters only.
	UpdateUserStats(ctx context.Context, userID string, totalAwards, racesParticipated int) error
	DeleteUser(ctx context.Context, userID string) error

	// ListRaces returns races without their predictions; compose with
	// ListPredictions.
	ListRaces(ctx context.Context) ([]model.Race, error)
	CreateRace(ctx context.Context, r model.Race) error
	UpdateRace(ctx context.Context, r model.Race) error
	// SetRaceOutcome partially updates result and award winners only;
	// a nil result clears both (retract).
	SetRaceOutcome(ctx context.Context, raceID string, result *model.RaceResult, winners []string) error
	DeleteRace(ctx context.Context, raceID string) error

	ListPredictions(ctx context.Context) ([]model.UserPrediction, error)
	UpsertPrediction(ctx context.Context, up model.UserPrediction) error
	DeletePrediction(ctx context.Context, raceID, userID string) error
}

// PGStore implements Store against PostgreSQL via bun.
type PGStore struct {
	db *bun.DB
}

// New opens a PostgreSQL connection for the given DSN.
func New(dsn string, debug bool) *PGStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PGStore{db: db}
}

// NewWithDB wraps an existing bun.DB (used by cmd/migrate).
func NewWithDB(db *bun.DB) *PGStore {
	return &PGStore{db: db}
}

// DB exposes the underlying handle for the listener and migrations.
func (s *PGStore) DB() *bun.DB {
	return s.db
}

// Ping probes connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	return s.db.Close()
}
