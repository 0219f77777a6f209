package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownOriginator   = errors.New("unknown score originator")
	ErrDuplicateOriginator = errors.New("duplicate score originator")
	ErrInvalidNeutralScore = errors.New("neutral score must be a finite number")
	ErrUnknownKind         = errors.New("unknown scorer kind")
	// ErrNoScore reports that a scorer does not apply to a contribution.
	// No record is produced for it.
	ErrNoScore = errors.New("scorer does not apply")
)
