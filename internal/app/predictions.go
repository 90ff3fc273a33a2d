package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/racetime"
)

// listPredictions returns every mirrored prediction.
func (s *Service) listPredictions(ctx context.Context) ([]model.UserPrediction, error) {
	entries, err := s.mirror.List(ctx, cache.KindPredictions)
	if err != nil {
		return nil, fmt.Errorf("reading prediction mirror: %w", err)
	}
	preds := make([]model.UserPrediction, 0, len(entries))
	for _, e := range entries {
		var up model.UserPrediction
		if err := json.Unmarshal(e.Data, &up); err != nil {
			return nil, fmt.Errorf("decoding mirrored prediction %s: %w", e.ID, err)
		}
		preds = append(preds, up)
	}
	return preds, nil
}

// dropMirroredPredictions removes mirrored predictions matching the
// filter, used when their owning race or user goes away.
func (s *Service) dropMirroredPredictions(ctx context.Context, match func(model.UserPrediction) bool) error {
	preds, err := s.listPredictions(ctx)
	if err != nil {
		return err
	}
	for _, up := range preds {
		if !match(up) {
			continue
		}
		if err := s.mirror.Delete(ctx, cache.KindPredictions, up.Key()); err != nil {
			return err
		}
	}
	return nil
}

// PredictionFor returns one participant's prediction for a race.
func (s *Service) PredictionFor(ctx context.Context, raceID, userID string) (model.Prediction, error) {
	up := model.UserPrediction{RaceID: raceID, UserID: userID}
	e, err := s.mirror.Get(ctx, cache.KindPredictions, up.Key())
	if err != nil {
		return model.Prediction{}, ErrNoPrediction
	}
	if err := json.Unmarshal(e.Data, &up); err != nil {
		return model.Prediction{}, fmt.Errorf("decoding mirrored prediction: %w", err)
	}
	return up.Prediction, nil
}

// SubmitPrediction records or replaces a participant's top-3 guess for
// a race. Submissions are accepted only while the race is open; a
// resubmission overwrites the previous guess, last write wins.
func (s *Service) SubmitPrediction(ctx context.Context, raceID, userID string, p model.Prediction) (bool, error) {
	if err := model.ValidatePrediction(p, s.roster); err != nil {
		return false, err
	}
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return false, err
	}
	if _, err := s.UserByID(ctx, userID); err != nil {
		return false, err
	}
	if !racetime.OpenForPredictions(&r, s.now()) {
		return false, ErrPredictionsClosed
	}

	up := model.UserPrediction{RaceID: raceID, UserID: userID, Prediction: p}
	return s.applyWrite(ctx, writeOp{
		entity: "prediction",
		kind:   model.ActionUpsertPrediction,
		payload: model.PredictionPayload{
			RaceID:     raceID,
			UserID:     userID,
			Prediction: p,
		},
		remote: func(ctx context.Context) error { return s.remote.UpsertPrediction(ctx, up) },
		mirror: func(ctx context.Context, pending bool) error { return s.mirrorPrediction(ctx, up, pending) },
	})
}

// WithdrawPrediction removes a participant's guess while the race is
// still open.
func (s *Service) WithdrawPrediction(ctx context.Context, raceID, userID string) (bool, error) {
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return false, err
	}
	if !racetime.OpenForPredictions(&r, s.now()) {
		return false, ErrPredictionsClosed
	}
	up := model.UserPrediction{RaceID: raceID, UserID: userID}
	if _, err := s.mirror.Get(ctx, cache.KindPredictions, up.Key()); err != nil {
		return false, ErrNoPrediction
	}

	return s.applyWrite(ctx, writeOp{
		entity:  "prediction",
		kind:    model.ActionDeletePrediction,
		payload: model.PredictionRefPayload{RaceID: raceID, UserID: userID},
		remote:  func(ctx context.Context) error { return s.remote.DeletePrediction(ctx, raceID, userID) },
		mirror: func(ctx context.Context, _ bool) error {
			return s.mirror.Delete(ctx, cache.KindPredictions, up.Key())
		},
	})
}
