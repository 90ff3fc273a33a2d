package model

import "errors"

// Sentinel validation errors. These allow errors.Is from callers; the
// app layer treats all of them as immediately surfaced, never queued.
var (
	ErrIncompletePrediction = errors.New("prediction must name three drivers")
	ErrDuplicateDriver      = errors.New("duplicate driver code")
	ErrUnknownDriver        = errors.New("driver code not in roster")
	ErrMissingRaceFields    = errors.New("race is missing required fields")
	ErrMissingUserFields    = errors.New("user is missing required fields")
	ErrUnknownActionKind    = errors.New("unknown queued action kind")
)
