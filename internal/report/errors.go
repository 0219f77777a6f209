package report

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNilAnalysis = errors.New("analysis must not be nil")
	ErrEmptyKey    = errors.New("partition key must not be empty")
)
