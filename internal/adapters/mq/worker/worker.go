// Package worker scores queued contributions with every configured scorer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/pkg/logger"
	"github.com/okian/skillview/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultProgressEvery = 1000

// Sink receives the score records produced for a contribution. The order in
// which workers call Save is unspecified.
type Sink interface {
	Save(ctx context.Context, records ...model.DetailedContributionScore) error
}

// Source is what workers read contributions from.
type Source interface {
	Dequeue() <-chan model.Contribution
}

// Worker turns contributions into score records.
type Worker struct {
	name          string
	scorers       []scoring.Scorer
	sink          Sink
	logger        logger.Logger
	progressEvery int64
	scored        *atomic.Int64
	onProcessed   func(ctx context.Context, id model.ContributionID)
}

// NewWorker creates a worker with configuration options.
func NewWorker(scorers []scoring.Scorer, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		name:          "worker",
		scorers:       scorers,
		sink:          sink,
		logger:        logger.Get(),
		progressEvery: defaultProgressEvery,
		scored:        new(atomic.Int64),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.logger = w.logger.Named(w.name)

	return w
}

// Run processes contributions until src is drained, ctx is done or saving
// fails.
func (w *Worker) Run(ctx context.Context, src Source) error {
	items := src.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-items:
			if !ok {
				return nil
			}
			if err := w.Process(ctx, c); err != nil {
				return err
			}
		}
	}
}

// Process runs every scorer against c and saves the resulting records.
// Scorers that do not apply produce no record; other scorer failures are
// logged and counted but do not stop the worker.
func (w *Worker) Process(ctx context.Context, c model.Contribution) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordScoringLatency(time.Since(start).Seconds())
	}()

	records := make([]model.DetailedContributionScore, 0, len(w.scorers))
	for _, s := range w.scorers {
		def := s.Definition()
		raw, err := s.Score(ctx, c)
		switch {
		case errors.Is(err, scoring.ErrNoScore):
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			metrics.RecordScorerError(def.Originator().String())
			w.logger.Warn(ctx, "scorer failed",
				logger.String("originator", def.Originator().String()),
				logger.String("contribution", c.ID.String()),
				logger.Error(err))
			continue
		}

		record, err := model.NewDetailedContributionScore(
			model.NewContributionScore(def.Skill(), raw),
			c.Time, c.Project, c.ID, c.Contributor, def.Originator())
		if err != nil {
			w.logger.Warn(ctx, "dropping invalid score record",
				logger.String("contribution", c.ID.String()),
				logger.Error(err))
			continue
		}
		records = append(records, record)
		metrics.RecordScoreRecord(def.Originator().String())
		w.logger.Debug(ctx, "scored contribution",
			logger.String("contributor", c.Contributor.String()),
			logger.String("skill", def.Skill().String()),
			logger.Float64("score", raw),
			logger.String("originator", def.Originator().String()))
	}

	if len(records) > 0 {
		if err := w.sink.Save(ctx, records...); err != nil {
			return fmt.Errorf("contribution %s: %w: %w", c.ID, ErrSave, err)
		}
	}

	if w.onProcessed != nil {
		w.onProcessed(ctx, c.ID)
	}
	metrics.RecordContributionScored()
	if n := w.scored.Add(1); w.progressEvery > 0 && n%w.progressEvery == 0 {
		w.logger.Info(ctx, "scored contributions", logger.Int("count", int(n)))
	}
	return nil
}

// Pool runs a fixed number of workers over one source.
type Pool struct {
	workers []*Worker
	src     Source
	logger  logger.Logger
}

// NewPool creates a pool. A non-positive workerCount uses one worker per CPU.
func NewPool(workerCount int, src Source, scorers []scoring.Scorer, sink Sink, opts ...Option) (*Pool, error) {
	if len(scorers) == 0 {
		return nil, ErrNoScorers
	}
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	shared := new(atomic.Int64)
	p := &Pool{
		workers: make([]*Worker, workerCount),
		src:     src,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		w := NewWorker(scorers, sink, append(slices.Clip(opts), WithName("worker-"+strconv.Itoa(i)))...)
		w.scored = shared
		p.workers[i] = w
	}
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Scored returns how many contributions the pool has processed.
func (p *Pool) Scored() int64 { return p.workers[0].scored.Load() }

// Run starts every worker and waits until the source is drained. The first
// worker error cancels the others and is returned.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	var active atomic.Int64
	for _, w := range p.workers {
		g.Go(func() error {
			metrics.UpdateWorkerActiveCount(int(active.Add(1)))
			defer func() { metrics.UpdateWorkerActiveCount(int(active.Add(-1))) }()
			return w.Run(ctx, p.src)
		})
	}
	err := g.Wait()
	p.logger.Info(ctx, "worker pool finished",
		logger.Int("workers", len(p.workers)),
		logger.Int("scored", int(p.Scored())))
	return err
}
