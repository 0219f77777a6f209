package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed       = errors.New("store closed")
	ErrEmptyPath    = errors.New("store path is required")
	ErrUnknownStore = errors.New("unknown store kind")
)
