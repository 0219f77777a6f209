package source

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDecode              = errors.New("decode contribution")
	ErrInvalidContribution = errors.New("invalid contribution")
	ErrEmptyPath           = errors.New("source path must not be empty")
)
