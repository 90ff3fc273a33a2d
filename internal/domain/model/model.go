// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// RaceStatus is the externally visible state of a race.
type RaceStatus string

// Race states. A race never reaches a terminal state; completed races
// can be retracted back to open or locked.
const (
	StatusOpen      RaceStatus = "open"
	StatusLocked    RaceStatus = "locked"
	StatusCompleted RaceStatus = "completed"
)

// User represents a participant account.
// TotalAwards and RacesParticipated are derived from the race set and
// recomputed after every publish/retract; they are never authoritative.
type User struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	CredentialHash    string `json:"credentialHash"` // opaque to the core, only internal/auth reads it
	TotalAwards       int    `json:"totalAwards"`
	RacesParticipated int    `json:"racesParticipated"`
}

// NormalizeUsername folds a username for the case-insensitive
// uniqueness check.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Prediction is a participant's guess at the top-3 finishers.
type Prediction struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

// Codes returns the predicted codes in position order.
func (p Prediction) Codes() [3]string {
	return [3]string{p.First, p.Second, p.Third}
}

// RaceResult is the official top-3 of a completed race.
type RaceResult struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

// Codes returns the result codes in finishing order.
func (r RaceResult) Codes() [3]string {
	return [3]string{r.First, r.Second, r.Third}
}

// Distinct reports whether the three codes are pairwise distinct and
// non-empty.
func (r RaceResult) Distinct() bool {
	return distinct(r.First, r.Second, r.Third)
}

// UserPrediction is a prediction together with the (user, race) pair
// that owns it, used wherever predictions travel outside a race record.
type UserPrediction struct {
	RaceID     string     `json:"raceId"`
	UserID     string     `json:"userId"`
	Prediction Prediction `json:"prediction"`
}

// Key returns the cache/mirror key for the owning pair.
func (up UserPrediction) Key() string {
	return up.RaceID + "/" + up.UserID
}

// Race is one prediction round.
type Race struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`

	// Date is the civil race date, YYYY-MM-DD.
	Date string `json:"date"`
	// LocalStartTime is the local start, HH:MM. Empty for legacy races.
	LocalStartTime string `json:"localStartTime,omitempty"`
	// TimezoneID is the IANA zone the start time is expressed in.
	TimezoneID string `json:"timezoneId,omitempty"`
	// StartInstantUTC is derived from the three fields above; nil until
	// both local time and timezone are known (legacy races resolve to
	// midnight UTC instead).
	StartInstantUTC *time.Time `json:"startInstantUtc,omitempty"`

	Result       *RaceResult `json:"result,omitempty"`
	AwardWinners []string    `json:"awardWinners,omitempty"`

	// Predictions is keyed by user id; upsert semantics, last write wins.
	Predictions map[string]Prediction `json:"predictions,omitempty"`
}

// HasResult reports whether an official result has been published.
func (r *Race) HasResult() bool {
	return r.Result != nil
}

// ValidatePrediction checks a prediction against the fixed driver
// roster. Duplicate codes within one prediction and codes outside the
// roster are rejected here rather than at the UI layer.
func ValidatePrediction(p Prediction, roster []string) error {
	if p.First == "" || p.Second == "" || p.Third == "" {
		return ErrIncompletePrediction
	}
	if !distinct(p.First, p.Second, p.Third) {
		return ErrDuplicateDriver
	}
	for _, code := range p.Codes() {
		if !rosterHas(roster, code) {
			return ErrUnknownDriver
		}
	}
	return nil
}

// ValidateResult checks that a result carries three distinct roster
// codes.
func ValidateResult(res RaceResult, roster []string) error {
	if !res.Distinct() {
		return ErrDuplicateDriver
	}
	for _, code := range res.Codes() {
		if !rosterHas(roster, code) {
			return ErrUnknownDriver
		}
	}
	return nil
}

// ValidateRace checks the fields required to create or update a race.
func ValidateRace(r *Race) error {
	if r.ID == "" || r.Name == "" || r.Date == "" {
		return ErrMissingRaceFields
	}
	return nil
}

// ValidateUser checks the fields required to create or update a user.
func ValidateUser(u *User) error {
	if u.ID == "" || NormalizeUsername(u.Username) == "" {
		return ErrMissingUserFields
	}
	return nil
}

func distinct(a, b, c string) bool {
	return a != b && a != c && b != c && a != "" && b != "" && c != ""
}

func rosterHas(roster []string, code string) bool {
	for _, r := range roster {
		if r == code {
			return true
		}
	}
	return false
}
