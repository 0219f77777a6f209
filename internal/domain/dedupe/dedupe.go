// Package dedupe tracks which contributions have already been scored.
package dedupe

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/skillview/internal/domain/model"
)

// Deduper records seen contribution IDs so overlapping sources score each
// contribution once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id model.ContributionID) bool

	// Unrecord forgets id so it can be retried, e.g. after an enqueue failed.
	Unrecord(ctx context.Context, id model.ContributionID)

	Size() int
}

// inMemoryDeduper keeps IDs in a map. In bounded mode an insertion-ordered
// list evicts the oldest ID once maxSize is reached; with maxSize <= 0 the
// set grows without limit.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[model.ContributionID]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[model.ContributionID]*list.Element)
	if d.maxSize > 0 {
		d.order = list.New()
	}

	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id model.ContributionID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.order == nil {
		d.seen[id] = nil
		return false
	}

	if len(d.seen) >= d.maxSize {
		oldest := d.order.Front()
		delete(d.seen, oldest.Value.(model.ContributionID))
		d.order.Remove(oldest)
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id model.ContributionID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	if e != nil {
		d.order.Remove(e)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
