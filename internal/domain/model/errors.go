package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBlankIdentifier = errors.New("identifier must not be blank")
	ErrMissingTime     = errors.New("score time must be set")
)
