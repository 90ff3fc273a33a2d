// Package lifecycle derives the externally visible status of a race
// and applies the publish/retract transitions.
//
// Status is never stored; it is recomputed from (Race, Instant) on
// every read so that wall-clock advance moves OPEN races to LOCKED
// without timers.
package lifecycle

import (
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/racetime"
)

// StatusAt derives the race status at the given instant.
//
// OPEN: no result, start unknown or in the future.
// LOCKED: no result, start has passed; submitted predictions stay
// visible but frozen.
// COMPLETED: a result has been published.
func StatusAt(r *model.Race, now time.Time) model.RaceStatus {
	if r.HasResult() {
		return model.StatusCompleted
	}
	if racetime.OpenForPredictions(r, now) {
		return model.StatusOpen
	}
	return model.StatusLocked
}

// Publish records the official result and the award winners on the
// race. The result must carry three pairwise-distinct codes and the
// race must not already be completed; retract first to re-publish.
func Publish(r *model.Race, res model.RaceResult, winners []string) error {
	if r.HasResult() {
		return ErrAlreadyCompleted
	}
	if !res.Distinct() {
		return ErrResultNotDistinct
	}
	r.Result = &res
	r.AwardWinners = winners
	return nil
}

// Retract clears the result and award winners together. The race
// status then re-derives from the start instant: a past start yields
// LOCKED, not OPEN.
func Retract(r *model.Race) error {
	if !r.HasResult() {
		return ErrNotCompleted
	}
	r.Result = nil
	r.AwardWinners = nil
	return nil
}
