package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/domain/lifecycle"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/racetime"
)

// Races returns every race from the mirror with predictions attached,
// sorted by date then id.
func (s *Service) Races(ctx context.Context) ([]model.Race, error) {
	entries, err := s.mirror.List(ctx, cache.KindRaces)
	if err != nil {
		return nil, fmt.Errorf("reading race mirror: %w", err)
	}

	preds, err := s.listPredictions(ctx)
	if err != nil {
		return nil, err
	}
	byRace := make(map[string]map[string]model.Prediction)
	for _, up := range preds {
		if byRace[up.RaceID] == nil {
			byRace[up.RaceID] = make(map[string]model.Prediction)
		}
		byRace[up.RaceID][up.UserID] = up.Prediction
	}

	races := make([]model.Race, 0, len(entries))
	for _, e := range entries {
		var r model.Race
		if err := json.Unmarshal(e.Data, &r); err != nil {
			return nil, fmt.Errorf("decoding mirrored race %s: %w", e.ID, err)
		}
		r.Predictions = byRace[r.ID]
		races = append(races, r)
	}
	sort.Slice(races, func(i, j int) bool {
		if races[i].Date != races[j].Date {
			return races[i].Date < races[j].Date
		}
		return races[i].ID < races[j].ID
	})
	return races, nil
}

// RaceByID returns one race with its predictions attached.
func (s *Service) RaceByID(ctx context.Context, raceID string) (model.Race, error) {
	e, err := s.mirror.Get(ctx, cache.KindRaces, raceID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return model.Race{}, ErrUnknownRace
		}
		return model.Race{}, err
	}
	var r model.Race
	if err := json.Unmarshal(e.Data, &r); err != nil {
		return model.Race{}, fmt.Errorf("decoding mirrored race %s: %w", raceID, err)
	}

	preds, err := s.listPredictions(ctx)
	if err != nil {
		return model.Race{}, err
	}
	for _, up := range preds {
		if up.RaceID != raceID {
			continue
		}
		if r.Predictions == nil {
			r.Predictions = make(map[string]model.Prediction)
		}
		r.Predictions[up.UserID] = up.Prediction
	}
	return r, nil
}

// RaceStatus derives the race's status at the current instant. Status
// is never stored; wall-clock advance alone moves open races to locked.
func (s *Service) RaceStatus(ctx context.Context, raceID string) (model.RaceStatus, error) {
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return "", err
	}
	return lifecycle.StatusAt(&r, s.now()), nil
}

// CreateRace registers a new race round. The start instant is derived
// from the civil date, local time and timezone before anything is
// persisted.
func (s *Service) CreateRace(ctx context.Context, r model.Race) (bool, error) {
	if err := model.ValidateRace(&r); err != nil {
		return false, err
	}
	if err := racetime.Restamp(&r); err != nil {
		return false, err
	}
	r.Result = nil
	r.AwardWinners = nil
	r.Predictions = nil

	return s.applyWrite(ctx, writeOp{
		entity:  "race",
		kind:    model.ActionCreateRace,
		payload: model.RacePayload{Race: r},
		remote:  func(ctx context.Context) error { return s.remote.CreateRace(ctx, r) },
		mirror:  func(ctx context.Context, pending bool) error { return s.mirrorRace(ctx, r, pending) },
	})
}

// UpdateRaceDetails edits a race's descriptive and scheduling fields.
// The outcome is untouched; moving the start instant can reopen a
// locked race while existing predictions stay intact.
func (s *Service) UpdateRaceDetails(ctx context.Context, r model.Race) (bool, error) {
	if err := model.ValidateRace(&r); err != nil {
		return false, err
	}
	existing, err := s.RaceByID(ctx, r.ID)
	if err != nil {
		return false, err
	}
	if err := racetime.Restamp(&r); err != nil {
		return false, err
	}
	// Carry the published outcome through to the mirror; the remote
	// update never writes outcome columns.
	r.Result = existing.Result
	r.AwardWinners = existing.AwardWinners
	r.Predictions = nil

	return s.applyWrite(ctx, writeOp{
		entity:  "race",
		kind:    model.ActionUpdateRace,
		payload: model.RacePayload{Race: r},
		remote:  func(ctx context.Context) error { return s.remote.UpdateRace(ctx, r) },
		mirror:  func(ctx context.Context, pending bool) error { return s.mirrorRace(ctx, r, pending) },
	})
}

// DeleteRace removes a race and, via the remote store's cascade, its
// predictions.
func (s *Service) DeleteRace(ctx context.Context, raceID string) (bool, error) {
	if _, err := s.RaceByID(ctx, raceID); err != nil {
		return false, err
	}

	return s.applyWrite(ctx, writeOp{
		entity:  "race",
		kind:    model.ActionDeleteRace,
		payload: model.RaceRefPayload{RaceID: raceID},
		remote:  func(ctx context.Context) error { return s.remote.DeleteRace(ctx, raceID) },
		mirror: func(ctx context.Context, _ bool) error {
			if err := s.mirror.Delete(ctx, cache.KindRaces, raceID); err != nil {
				return err
			}
			return s.dropMirroredPredictions(ctx, func(up model.UserPrediction) bool {
				return up.RaceID == raceID
			})
		},
	})
}
