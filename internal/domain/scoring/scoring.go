// Package scoring computes points for podium predictions and reduces a
// round's scores to its award winners.
//
// Two rule sets survive from earlier seasons: the position-weighted
// scheme with consolation credit (PodiumScorer, the default) and the
// flat per-hit scheme (LegacyScorer, deprecated). Both stay available
// behind the Scorer interface and the scoring_scheme config key so the
// discrepancy is visible rather than silently resolved.
package scoring

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Position weights for the default scheme. An exact sweep of all three
// positions is worth the plain sum, 60; there is no double counting.
const (
	WeightFirst       = 30
	WeightSecond      = 20
	WeightThird       = 10
	WeightConsolation = 5
)

// Weights for the deprecated flat scheme.
const (
	legacyExactWeight       = 30
	legacyConsolationWeight = 10
)

// Scorer computes the points a prediction earns against an official
// result. Implementations are pure; they consume already-validated
// inputs and cannot fail.
type Scorer interface {
	Score(p model.Prediction, res model.RaceResult) int
}

// PodiumScorer implements the position-weighted scheme.
//
// Positions are processed first, then second, then third. Processing
// position k claims result slot k; an exact match earns that
// position's weight. Otherwise a predicted code found at a later,
// still-unclaimed result slot earns the consolation weight and claims
// that slot. A code whose actual slot was already claimed earns
// nothing. The processing order is load-bearing: it decides which slot
// a partially-correct guess consumes and therefore what later
// positions can still earn.
type PodiumScorer struct{}

// NewPodiumScorer returns the default scorer.
func NewPodiumScorer() PodiumScorer {
	return PodiumScorer{}
}

// Score implements Scorer.
func (PodiumScorer) Score(p model.Prediction, res model.RaceResult) int {
	weights := [3]int{WeightFirst, WeightSecond, WeightThird}
	pred := p.Codes()
	actual := res.Codes()

	var claimed [3]bool
	total := 0
	for k := 0; k < 3; k++ {
		// The exact-match attempt at position k claims slot k whether or
		// not it hits; consolation credit can only reach unclaimed slots.
		claimed[k] = true
		if pred[k] == actual[k] {
			total += weights[k]
			continue
		}
		for j := 0; j < 3; j++ {
			if !claimed[j] && actual[j] == pred[k] {
				total += WeightConsolation
				claimed[j] = true
				break
			}
		}
	}
	return total
}

// LegacyScorer implements the flat scheme: 30 per exact position, 10
// per driver placed in the wrong top-3 position.
//
// Deprecated: kept only because both schemes exist in the original
// application and neither was marked final. New rounds should score
// with PodiumScorer.
type LegacyScorer struct{}

// NewLegacyScorer returns the deprecated flat scorer.
func NewLegacyScorer() LegacyScorer {
	return LegacyScorer{}
}

// Score implements Scorer.
func (LegacyScorer) Score(p model.Prediction, res model.RaceResult) int {
	pred := p.Codes()
	actual := res.Codes()

	total := 0
	for k := 0; k < 3; k++ {
		if pred[k] == actual[k] {
			total += legacyExactWeight
			continue
		}
		for j := 0; j < 3; j++ {
			if actual[j] == pred[k] {
				total += legacyConsolationWeight
				break
			}
		}
	}
	return total
}

// ByScheme returns the scorer for a config scheme name. Unknown names
// fall back to the default scheme.
func ByScheme(scheme string) Scorer {
	if scheme == "legacy" {
		return NewLegacyScorer()
	}
	return NewPodiumScorer()
}

// AwardWinners reduces a round's scores to the set of user ids sharing
// the award. An all-zero round has no winner; otherwise every user at
// the maximum shares, with no further tie-break. The returned slice is
// sorted for deterministic output.
func AwardWinners(scoresByUser map[string]int) []string {
	best := 0
	for _, s := range scoresByUser {
		if s > best {
			best = s
		}
	}
	if best == 0 {
		return nil
	}

	winners := make([]string, 0, 1)
	for id, s := range scoresByUser {
		if s == best {
			winners = append(winners, id)
		}
	}
	sort.Strings(winners)
	return winners
}
