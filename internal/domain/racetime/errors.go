package racetime

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadDate         = errors.New("invalid race date")
	ErrBadLocalTime    = errors.New("invalid local start time")
	ErrUnknownTimezone = errors.New("unknown timezone id")
)
