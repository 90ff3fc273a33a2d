package remote

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// ListUsers returns every user, ordered by username.
func (s *PGStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("username_fold ASC").Scan(ctx); err != nil {
		return nil, classify("list users", err)
	}
	out := make([]model.User, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateUser inserts a new user. A username collision surfaces as
// ErrRejected via the unique constraint on username_fold.
func (s *PGStore) CreateUser(ctx context.Context, u model.User) error {
	row := toUserRow(u)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return classify("create user", err)
	}
	return nil
}

// UpdateUser replaces the full user record.
func (s *PGStore) UpdateUser(ctx context.Context, u model.User) error {
	row := toUserRow(u)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return classify("update user", err)
	}
	return mustAffect("update user", res)
}

// UpdateUserStats patches the derived counters without touching
// identity or credentials.
func (s *PGStore) UpdateUserStats(ctx context.Context, userID string, totalAwards, racesParticipated int) error {
	row := userRow{ID: userID, TotalAwards: totalAwards, RacesParticipated: racesParticipated}
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("total_awards", "races_participated").
		WherePK().
		Exec(ctx)
	if err != nil {
		return classify("update user stats", err)
	}
	return mustAffect("update user stats", res)
}

// DeleteUser removes a user and, via FK cascade, their predictions.
func (s *PGStore) DeleteUser(ctx context.Context, userID string) error {
	row := userRow{ID: userID}
	if _, err := s.db.NewDelete().Model(&row).WherePK().Exec(ctx); err != nil {
		return classify("delete user", err)
	}
	return nil
}
