package lifecycle

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrAlreadyCompleted  = errors.New("race already has a published result")
	ErrNotCompleted      = errors.New("race has no published result")
	ErrResultNotDistinct = errors.New("result codes must be pairwise distinct")
)
