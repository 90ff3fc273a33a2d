package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownRace       = errors.New("unknown race")
	ErrUnknownUser       = errors.New("unknown user")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrPredictionsClosed = errors.New("predictions are closed for this race")
	ErrNoPrediction      = errors.New("no prediction for this race")
	ErrOfflinePublish    = errors.New("results cannot be changed while offline")
	ErrTokensUnavailable = errors.New("token service not configured")
)
