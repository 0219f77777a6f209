package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/pkg/metrics"
)

// MemoryStore keeps records in a map guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]model.DetailedContributionScore
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]model.DetailedContributionScore)}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, records ...model.DetailedContributionScore) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, r := range records {
		s.records[keyOf(r)] = r
	}
	metrics.UpdateStoreRecords(len(s.records))
	return nil
}

// Scores implements Store.
func (s *MemoryStore) Scores(ctx context.Context, startExclusive, endInclusive time.Time) ([]model.DetailedContributionScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.DetailedContributionScore, 0, len(s.records))
	for _, r := range s.records {
		t := r.ScoreTime()
		if t.After(startExclusive) && !t.After(endInclusive) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.records), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
