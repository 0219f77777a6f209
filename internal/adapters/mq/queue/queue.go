// Package queue hands contributions from the ingest producer to the scoring
// workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue is a bounded FIFO of contributions.
type Queue interface {
	// Enqueue blocks until c is queued, ctx is done or the queue is closed.
	Enqueue(ctx context.Context, c model.Contribution) error
	// TryEnqueue queues c without blocking and returns ErrFull when there is no room.
	TryEnqueue(c model.Contribution) error
	// Dequeue returns the channel consumers range over. It is closed by Close
	// once drained.
	Dequeue() <-chan model.Contribution
	// Len returns the current number of queued contributions.
	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan model.Contribution
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.items = make(chan model.Contribution, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c model.Contribution) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.items <- c:
		metrics.UpdateQueueSize(len(q.items))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue implements Queue.
func (q *InMemoryQueue) TryEnqueue(c model.Contribution) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.items <- c:
		metrics.UpdateQueueSize(len(q.items))
		return nil
	default:
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan model.Contribution {
	return q.items
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting contributions. Queued ones remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.items)
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
