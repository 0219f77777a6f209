// Package repository persists score records between ingest and analysis.
package repository

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/okian/skillview/internal/domain/model"
)

// Store holds score records. A record is identified by its originator and
// contribution; saving the same pair again replaces the earlier record.
type Store interface {
	Save(ctx context.Context, records ...model.DetailedContributionScore) error
	// Scores returns the records with score time in (startExclusive, endInclusive],
	// ordered by score time, then contribution, then originator.
	Scores(ctx context.Context, startExclusive, endInclusive time.Time) ([]model.DetailedContributionScore, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Kind names a Store implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
)

// Open creates a store of the given kind. path is used by file-backed kinds.
func Open(kind Kind, path string, opts ...Option) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemoryStore(), nil
	case KindSQLite:
		return OpenSQLite(path, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownStore)
	}
}

type recordKey struct {
	originator   model.ScoreOriginator
	contribution model.ContributionID
}

func keyOf(r model.DetailedContributionScore) recordKey {
	return recordKey{originator: r.Originator(), contribution: r.ContributionID()}
}

func compareRecords(a, b model.DetailedContributionScore) int {
	if c := a.ScoreTime().Compare(b.ScoreTime()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ContributionID(), b.ContributionID()); c != 0 {
		return c
	}
	return cmp.Compare(a.Originator(), b.Originator())
}

func sortRecords(records []model.DetailedContributionScore) {
	slices.SortFunc(records, compareRecords)
}

var (
	minNanos = time.Unix(0, math.MinInt64)
	maxNanos = time.Unix(0, math.MaxInt64)
)

// toNanos converts t to Unix nanoseconds, clamping times outside the
// representable range.
func toNanos(t time.Time) int64 {
	switch {
	case t.Before(minNanos):
		return math.MinInt64
	case t.After(maxNanos):
		return math.MaxInt64
	default:
		return t.UnixNano()
	}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
