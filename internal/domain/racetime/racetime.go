// Package racetime resolves race start instants from civil dates and
// IANA timezones, and answers whether a race is still open for
// predictions. All functions are pure; they are called on every read
// of race status and must stay cheap.
package racetime

import (
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Wire formats for the civil fields on a race.
const (
	DateLayout      = "2006-01-02"
	LocalTimeLayout = "15:04"
)

// ResolveStartInstant converts a civil date, an optional local
// time-of-day and an optional IANA timezone into a UTC instant.
// When either the local time or the timezone is missing the date is
// treated as midnight UTC (legacy races).
func ResolveStartInstant(date, localTime, timezoneID string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, date)
	}

	if localTime == "" || timezoneID == "" {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	loc, err := time.LoadLocation(timezoneID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, timezoneID)
	}

	tod, err := time.Parse(LocalTimeLayout, localTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadLocalTime, localTime)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
	return start.UTC(), nil
}

// Restamp recomputes and assigns StartInstantUTC from the race's civil
// fields. Admin edits of date, time or timezone go through here; the
// race's predictions are untouched.
func Restamp(r *model.Race) error {
	start, err := ResolveStartInstant(r.Date, r.LocalStartTime, r.TimezoneID)
	if err != nil {
		return err
	}
	r.StartInstantUTC = &start
	return nil
}

// OpenForPredictions reports whether new or edited predictions are
// still accepted for the race at the given instant: no result has been
// published and the start instant is unknown or still in the future.
func OpenForPredictions(r *model.Race, now time.Time) bool {
	if r.HasResult() {
		return false
	}
	if r.StartInstantUTC == nil {
		return true
	}
	return now.Before(*r.StartInstantUTC)
}
