package remote

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// ListPredictions returns every prediction across all races.
func (s *PGStore) ListPredictions(ctx context.Context) ([]model.UserPrediction, error) {
	var rows []predictionRow
	if err := s.db.NewSelect().Model(&rows).Order("race_id ASC", "user_id ASC").Scan(ctx); err != nil {
		return nil, classify("list predictions", err)
	}
	out := make([]model.UserPrediction, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// UpsertPrediction writes a prediction keyed (race_id, user_id); a
// second submission by the same user for the same race overwrites the
// first. Replaying the same upsert twice yields the same end state.
func (s *PGStore) UpsertPrediction(ctx context.Context, up model.UserPrediction) error {
	row := toPredictionRow(up)
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (race_id, user_id) DO UPDATE").
		Set("first = EXCLUDED.first").
		Set("second = EXCLUDED.second").
		Set("third = EXCLUDED.third").
		Exec(ctx)
	if err != nil {
		return classify("upsert prediction", err)
	}
	return nil
}

// DeletePrediction physically removes a prediction.
func (s *PGStore) DeletePrediction(ctx context.Context, raceID, userID string) error {
	row := predictionRow{RaceID: raceID, UserID: userID}
	if _, err := s.db.NewDelete().Model(&row).WherePK().Exec(ctx); err != nil {
		return classify("delete prediction", err)
	}
	return nil
}
