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

// writeOp is one remote mutation together with the queue action that
// stands in for it when the remote store is unreachable and the mirror
// update that keeps reads consistent either way.
type writeOp struct {
	entity  string
	kind    model.ActionKind
	payload any
	remote  func(context.Context) error
	mirror  func(ctx context.Context, pending bool) error
}

// applyWrite runs the write path: remote first, mirror on success;
// on an unreachable store the mutation is queued for replay and
// mirrored optimistically with the pending flag. Rejections and
// conflicts surface to the caller and are never queued.
//
// The returned bool is true when the write was queued for later sync.
func (s *Service) applyWrite(ctx context.Context, op writeOp) (bool, error) {
	start := time.Now()
	err := op.remote(ctx)
	metrics.RecordRemoteLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		s.setOnline(true)
		if merr := op.mirror(ctx, false); merr != nil {
			s.logger.Warn(ctx, "mirror update failed after remote write",
				logger.String("entity", op.entity), logger.Error(merr))
		}
		metrics.RecordWrite(op.entity, "applied")
		return false, nil

	case errors.Is(err, remote.ErrUnavailable):
		action, aerr := model.NewAction(op.kind, op.payload)
		if aerr != nil {
			return false, aerr
		}
		if qerr := s.pendingQ.Enqueue(ctx, action); qerr != nil {
			return false, fmt.Errorf("queueing %s: %w", op.kind, qerr)
		}
		if merr := op.mirror(ctx, true); merr != nil {
			s.logger.Warn(ctx, "optimistic mirror update failed",
				logger.String("entity", op.entity), logger.Error(merr))
		}
		s.setOnline(false)
		s.updateOutboxDepth(ctx)
		metrics.RecordWrite(op.entity, "queued")
		s.logger.Info(ctx, "remote unreachable, mutation queued for sync",
			logger.String("entity", op.entity),
			logger.String("kind", string(op.kind)),
		)
		return true, nil

	case errors.Is(err, remote.ErrConflict):
		metrics.RecordWrite(op.entity, "conflict")
		return false, err

	default:
		metrics.RecordWrite(op.entity, "rejected")
		return false, err
	}
}

// Mirror helpers. Races are mirrored without their predictions; the
// predictions kind is the single source for those.

func (s *Service) mirrorUser(ctx context.Context, u model.User, pending bool) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.mirror.Upsert(ctx, cache.KindUsers, cache.Entry{ID: u.ID, Data: data, Pending: pending})
}

func (s *Service) mirrorRace(ctx context.Context, r model.Race, pending bool) error {
	r.Predictions = nil
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.mirror.Upsert(ctx, cache.KindRaces, cache.Entry{ID: r.ID, Data: data, Pending: pending})
}

func (s *Service) mirrorPrediction(ctx context.Context, up model.UserPrediction, pending bool) error {
	data, err := json.Marshal(up)
	if err != nil {
		return err
	}
	return s.mirror.Upsert(ctx, cache.KindPredictions, cache.Entry{ID: up.Key(), Data: data, Pending: pending})
}
