package worker

import (
	"context"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/pkg/logger"
)

// Option applies a configuration option to a Worker. Options given to
// NewPool apply to every worker of the pool.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithProgressEvery logs progress each time n more contributions have been
// scored across the pool. Zero disables progress logging.
func WithProgressEvery(n int64) Option {
	return func(w *Worker) {
		if n >= 0 {
			w.progressEvery = n
		}
	}
}

// WithOnProcessed registers fn to run after a contribution has been scored
// and its records saved. It is not called for contributions that fail.
func WithOnProcessed(fn func(ctx context.Context, id model.ContributionID)) Option {
	return func(w *Worker) {
		w.onProcessed = fn
	}
}
