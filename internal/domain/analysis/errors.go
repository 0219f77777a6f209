package analysis

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNilRegistry   = errors.New("scorer definitions and weighting scheme are required")
	ErrInvalidWindow = errors.New("analysis window start must not be after end")
	ErrNilSource     = errors.New("score source is required")
)
