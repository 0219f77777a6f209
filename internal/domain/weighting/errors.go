package weighting

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownOriginator = errors.New("unknown score originator")
	ErrUnknownSkill      = errors.New("unknown skill tag")
	ErrDuplicateSkill    = errors.New("duplicate skill tag")
	ErrEmptyWeighting    = errors.New("weighting must contain at least one originator")
	ErrInvalidWeight     = errors.New("weight must be a finite number")
	ErrWeightSum         = errors.New("weights must sum to 1.0")
)
