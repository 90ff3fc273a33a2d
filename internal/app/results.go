package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/podium/internal/adapters/remote"
	"github.com/okian/podium/internal/domain/lifecycle"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// PublishResults records the official top-3 for a race, scores every
// submitted prediction and awards the round. Publishing requires the
// remote store: outcome changes are never queued, so a publish against
// an unreachable store fails with ErrOfflinePublish.
func (s *Service) PublishResults(ctx context.Context, raceID string, res model.RaceResult) ([]string, error) {
	if err := model.ValidateResult(res, s.roster); err != nil {
		return nil, err
	}
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return nil, err
	}

	scores := s.scoreRound(&r, res)
	winners := scoring.AwardWinners(scores)

	if err := lifecycle.Publish(&r, res, winners); err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.remote.SetRaceOutcome(ctx, raceID, &res, winners)
	metrics.RecordRemoteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			s.setOnline(false)
			return nil, ErrOfflinePublish
		}
		return nil, err
	}
	s.setOnline(true)

	if merr := s.mirrorRace(ctx, r, false); merr != nil {
		s.logger.Warn(ctx, "mirroring published race failed", logger.Error(merr))
	}
	metrics.RecordResultsPublished()
	s.logger.Info(ctx, "results published",
		logger.String("raceID", raceID),
		logger.Any("winners", winners),
	)

	if err := s.recomputeUserStats(ctx); err != nil {
		s.logger.Warn(ctx, "recomputing user stats failed", logger.Error(err))
	}
	return winners, nil
}

// RetractResults clears a race's published outcome. Award winners go
// with it; participant stats are recomputed from the remaining
// completed races. The race's status re-derives from its start
// instant, so a past start leaves it locked rather than open.
func (s *Service) RetractResults(ctx context.Context, raceID string) error {
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return err
	}
	if err := lifecycle.Retract(&r); err != nil {
		return err
	}

	start := time.Now()
	err = s.remote.SetRaceOutcome(ctx, raceID, nil, nil)
	metrics.RecordRemoteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			s.setOnline(false)
			return ErrOfflinePublish
		}
		return err
	}
	s.setOnline(true)

	if merr := s.mirrorRace(ctx, r, false); merr != nil {
		s.logger.Warn(ctx, "mirroring retracted race failed", logger.Error(merr))
	}
	metrics.RecordResultsRetracted()
	s.logger.Info(ctx, "results retracted", logger.String("raceID", raceID))

	if err := s.recomputeUserStats(ctx); err != nil {
		s.logger.Warn(ctx, "recomputing user stats failed", logger.Error(err))
	}
	return nil
}

// Scoreboard returns the per-participant scores of a completed race,
// highest first.
func (s *Service) Scoreboard(ctx context.Context, raceID string) ([]types.ScoreRow, error) {
	r, err := s.RaceByID(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if !r.HasResult() {
		return nil, lifecycle.ErrNotCompleted
	}

	scores := s.scoreRound(&r, *r.Result)
	winners := make(map[string]bool, len(r.AwardWinners))
	for _, w := range r.AwardWinners {
		winners[w] = true
	}

	rows := make([]types.ScoreRow, 0, len(scores))
	for userID, score := range scores {
		rows = append(rows, types.ScoreRow{UserID: userID, Score: score, Winner: winners[userID]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}

// scoreRound scores every prediction on a race against a result.
func (s *Service) scoreRound(r *model.Race, res model.RaceResult) map[string]int {
	scores := make(map[string]int, len(r.Predictions))
	for userID, p := range r.Predictions {
		scores[userID] = s.scorer.Score(p, res)
	}
	metrics.RecordScoredRound()
	return scores
}

// recomputeUserStats rebuilds every participant's derived counters from
// the current race set. The counters are never incremented in place;
// recomputation keeps them correct across retracts and re-publishes.
func (s *Service) recomputeUserStats(ctx context.Context) error {
	users, err := s.Users(ctx)
	if err != nil {
		return err
	}
	races, err := s.Races(ctx)
	if err != nil {
		return err
	}

	awards := make(map[string]int)
	participated := make(map[string]int)
	for _, r := range races {
		if !r.HasResult() {
			continue
		}
		for _, w := range r.AwardWinners {
			awards[w]++
		}
		for userID := range r.Predictions {
			participated[userID]++
		}
	}

	for _, u := range users {
		totalAwards := awards[u.ID]
		racesParticipated := participated[u.ID]
		if u.TotalAwards == totalAwards && u.RacesParticipated == racesParticipated {
			continue
		}
		if err := s.remote.UpdateUserStats(ctx, u.ID, totalAwards, racesParticipated); err != nil {
			return fmt.Errorf("updating stats for %s: %w", u.ID, err)
		}
		u.TotalAwards = totalAwards
		u.RacesParticipated = racesParticipated
		if merr := s.mirrorUser(ctx, u, false); merr != nil {
			s.logger.Warn(ctx, "mirroring user stats failed",
				logger.String("userID", u.ID), logger.Error(merr))
		}
	}
	return nil
}
