package remote

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// ListRaces returns every race, ordered by date. Predictions are not
// joined here; the coordinator composes them from ListPredictions.
func (s *PGStore) ListRaces(ctx context.Context) ([]model.Race, error) {
	var rows []raceRow
	if err := s.db.NewSelect().Model(&rows).Order("date ASC", "id ASC").Scan(ctx); err != nil {
		return nil, classify("list races", err)
	}
	out := make([]model.Race, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// CreateRace inserts a new race.
func (s *PGStore) CreateRace(ctx context.Context, r model.Race) error {
	row := toRaceRow(r)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return classify("create race", err)
	}
	return nil
}

// UpdateRace replaces the schedulable fields of a race. The outcome
// columns are deliberately excluded; they change only through
// SetRaceOutcome so an admin edit cannot clobber a published result.
func (s *PGStore) UpdateRace(ctx context.Context, r model.Race) error {
	row := toRaceRow(r)
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("name", "city", "date", "local_start_time", "timezone_id").
		WherePK().
		Exec(ctx)
	if err != nil {
		return classify("update race", err)
	}
	return mustAffect("update race", res)
}

// SetRaceOutcome patches result and award winners together: both set
// on publish, both cleared on retract. The rest of the record is left
// alone.
func (s *PGStore) SetRaceOutcome(ctx context.Context, raceID string, result *model.RaceResult, winners []string) error {
	row := raceRow{ID: raceID, AwardWinners: winners}
	if result != nil {
		row.ResultFirst = &result.First
		row.ResultSecond = &result.Second
		row.ResultThird = &result.Third
	}
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("result_first", "result_second", "result_third", "award_winners").
		WherePK().
		Exec(ctx)
	if err != nil {
		return classify("set race outcome", err)
	}
	return mustAffect("set race outcome", res)
}

// DeleteRace removes a race and, via FK cascade, its predictions.
func (s *PGStore) DeleteRace(ctx context.Context, raceID string) error {
	row := raceRow{ID: raceID}
	if _, err := s.db.NewDelete().Model(&row).WherePK().Exec(ctx); err != nil {
		return classify("delete race", err)
	}
	return nil
}
