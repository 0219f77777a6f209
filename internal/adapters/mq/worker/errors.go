package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrNoScorers = errors.New("at least one scorer is required")
	ErrSave      = errors.New("saving score records failed")
)
