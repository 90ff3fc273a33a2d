package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/remote"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Sync drains the offline queue in enqueue order and refreshes the
// mirror from the remote store afterwards.
//
// Drains are single-flight: a drain already in progress absorbs any
// concurrent trigger. An unreachable remote halts the whole drain with
// the queue intact so the next trigger retries from the front; a
// rejected or conflicting action is dropped and the drain continues.
func (s *Service) Sync(ctx context.Context) error {
	if !s.drainMu.TryLock() {
		return nil
	}
	defer s.drainMu.Unlock()

	start := time.Now()

	actions, err := s.pendingQ.PeekAll(ctx)
	if err != nil {
		return fmt.Errorf("reading pending queue: %w", err)
	}

	for _, a := range actions {
		if err := s.replay(ctx, a); err != nil {
			if errors.Is(err, remote.ErrUnavailable) {
				s.setOnline(false)
				metrics.RecordDrain("halted", float64(time.Since(start).Milliseconds()))
				s.logger.Warn(ctx, "drain halted, remote unreachable",
					logger.String("actionID", a.ID),
					logger.String("kind", string(a.Kind)),
				)
				return err
			}
			// Permanently refused: drop so the queue cannot wedge.
			metrics.RecordReplay("dropped")
			s.logger.Warn(ctx, "queued action refused by remote, dropping",
				logger.String("actionID", a.ID),
				logger.String("kind", string(a.Kind)),
				logger.Error(err),
			)
		} else {
			metrics.RecordReplay("applied")
		}
		if rerr := s.pendingQ.Remove(ctx, a.ID); rerr != nil {
			s.logger.Error(ctx, "removing replayed action failed",
				logger.String("actionID", a.ID), logger.Error(rerr))
		}
		s.updateOutboxDepth(ctx)
	}

	s.setOnline(true)
	if err := s.refreshAll(ctx); err != nil {
		s.logger.Warn(ctx, "post-drain refresh failed", logger.Error(err))
	}

	metrics.RecordDrain("clean", float64(time.Since(start).Milliseconds()))
	if len(actions) > 0 {
		s.logger.Info(ctx, "queue drained", logger.Int("replayed", len(actions)))
	}
	return nil
}

// replay applies one queued action against the remote store.
func (s *Service) replay(ctx context.Context, a model.QueuedAction) error {
	switch a.Kind {
	case model.ActionCreateUser:
		var p model.UserPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.CreateUser(ctx, p.User)

	case model.ActionUpdateUser:
		var p model.UserPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.UpdateUser(ctx, p.User)

	case model.ActionDeleteUser:
		var p model.UserRefPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.DeleteUser(ctx, p.UserID)

	case model.ActionCreateRace:
		var p model.RacePayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.CreateRace(ctx, p.Race)

	case model.ActionUpdateRace:
		var p model.RacePayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.UpdateRace(ctx, p.Race)

	case model.ActionDeleteRace:
		var p model.RaceRefPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.DeleteRace(ctx, p.RaceID)

	case model.ActionUpsertPrediction:
		var p model.PredictionPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.UpsertPrediction(ctx, model.UserPrediction{
			RaceID:     p.RaceID,
			UserID:     p.UserID,
			Prediction: p.Prediction,
		})

	case model.ActionDeletePrediction:
		var p model.PredictionRefPayload
		if err := a.DecodePayload(&p); err != nil {
			return err
		}
		return s.remote.DeletePrediction(ctx, p.RaceID, p.UserID)

	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownActionKind, a.Kind)
	}
}

// refreshAll replaces the full mirror from the remote store. The swap
// clears any pending flags left by optimistic writes.
func (s *Service) refreshAll(ctx context.Context) error {
	if err := s.refreshUsers(ctx); err != nil {
		return err
	}
	if err := s.refreshRaces(ctx); err != nil {
		return err
	}
	if err := s.refreshPredictions(ctx); err != nil {
		return err
	}
	metrics.RecordCacheRefresh()
	return nil
}

func (s *Service) refreshUsers(ctx context.Context) error {
	users, err := s.remote.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	entries := make([]cache.Entry, 0, len(users))
	for _, u := range users {
		data, err := json.Marshal(u)
		if err != nil {
			return err
		}
		entries = append(entries, cache.Entry{ID: u.ID, Data: data})
	}
	if err := s.mirror.ReplaceAll(ctx, cache.KindUsers, entries); err != nil {
		return fmt.Errorf("replacing user mirror: %w", err)
	}
	metrics.UpdateCachedEntities(string(cache.KindUsers), len(entries))
	s.notifySubs(cache.KindUsers)
	return nil
}

func (s *Service) refreshRaces(ctx context.Context) error {
	races, err := s.remote.ListRaces(ctx)
	if err != nil {
		return fmt.Errorf("listing races: %w", err)
	}
	entries := make([]cache.Entry, 0, len(races))
	for _, r := range races {
		r.Predictions = nil
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		entries = append(entries, cache.Entry{ID: r.ID, Data: data})
	}
	if err := s.mirror.ReplaceAll(ctx, cache.KindRaces, entries); err != nil {
		return fmt.Errorf("replacing race mirror: %w", err)
	}
	metrics.UpdateCachedEntities(string(cache.KindRaces), len(entries))
	s.notifySubs(cache.KindRaces)
	return nil
}

func (s *Service) refreshPredictions(ctx context.Context) error {
	preds, err := s.remote.ListPredictions(ctx)
	if err != nil {
		return fmt.Errorf("listing predictions: %w", err)
	}
	entries := make([]cache.Entry, 0, len(preds))
	for _, up := range preds {
		data, err := json.Marshal(up)
		if err != nil {
			return err
		}
		entries = append(entries, cache.Entry{ID: up.Key(), Data: data})
	}
	if err := s.mirror.ReplaceAll(ctx, cache.KindPredictions, entries); err != nil {
		return fmt.Errorf("replacing prediction mirror: %w", err)
	}
	metrics.UpdateCachedEntities(string(cache.KindPredictions), len(entries))
	s.notifySubs(cache.KindPredictions)
	return nil
}
