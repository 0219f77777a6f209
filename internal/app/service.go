// Package service wires the ingest pipeline and the analysis together:
// contributions flow from a source through dedupe and a bounded queue to
// the scoring workers, which persist score records for later analysis.
package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	eventqueue "github.com/okian/skillview/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillview/internal/adapters/mq/worker"
	"github.com/okian/skillview/internal/adapters/repository"
	"github.com/okian/skillview/internal/adapters/source"
	"github.com/okian/skillview/internal/config"
	"github.com/okian/skillview/internal/domain/analysis"
	"github.com/okian/skillview/internal/domain/dedupe"
	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/internal/domain/weighting"
	"github.com/okian/skillview/pkg/logger"
	"github.com/okian/skillview/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by operations on a closed Service.
var ErrClosed = errors.New("service closed")

// openEnd stands in for an unbounded window end.
var openEnd = time.Unix(0, math.MaxInt64).UTC()

// IngestResult summarises one Ingest call.
type IngestResult struct {
	Received   int
	Duplicates int
	Scored     int64
	Duration   time.Duration
}

// Service owns the score store and runs ingests and analyses against it.
type Service struct {
	mu sync.Mutex

	// Core components
	source   source.Source
	store    repository.Store
	deduper  dedupe.Deduper
	scorers  []scoring.Scorer
	analyzer *analysis.Service

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	closed bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the contribution queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the dedupe set; 0 keeps every ID.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore replaces the default in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service reading contributions from src.
func New(src source.Source, scorers []scoring.Scorer, defs *scoring.Definitions, scheme *weighting.Scheme, opts ...Option) (*Service, error) {
	if len(scorers) == 0 {
		return nil, workerpool.ErrNoScorers
	}
	s := &Service{
		source:      src,
		scorers:     scorers,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.analyzer = analysis.NewService(s.store, defs, scheme, analysis.WithLogger(s.logger.Named("analysis")))
	return s, nil
}

// NewFromConfig builds the registries, scorers and store described by cfg.
func NewFromConfig(cfg *config.Config, src source.Source, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	scheme, err := cfg.WeightingScheme()
	if err != nil {
		return nil, err
	}
	scorers, err := cfg.ScorerInstances()
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(repository.Kind(cfg.Store), cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	base := []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithStore(store),
	}
	svc, err := New(src, scorers, defs, scheme, append(base, opts...)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

// Ingest scores every contribution in (startExclusive, endInclusive] and
// saves the records. Contributions already ingested by this Service are
// skipped. Zero bounds are open.
func (s *Service) Ingest(ctx context.Context, startExclusive, endInclusive time.Time) (IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return IngestResult{}, ErrClosed
	}
	if s.source == nil {
		return IngestResult{}, errors.New("no contribution source configured")
	}

	start := time.Now()
	inFlight := newPendingSet()
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	pool, err := workerpool.NewPool(s.workerCount, q, s.scorers, s.store,
		workerpool.WithLogger(s.logger),
		workerpool.WithOnProcessed(func(_ context.Context, id model.ContributionID) { inFlight.remove(id) }))
	if err != nil {
		return IngestResult{}, err
	}

	s.logger.Info(ctx, "ingest started",
		logger.Int("workers", pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize))

	var received, duplicates atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Run(gctx)
	})
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		return s.source.Contributions(gctx, startExclusive, endInclusive, func(c model.Contribution) error {
			received.Add(1)
			metrics.RecordContributionReceived()
			if s.deduper.SeenAndRecord(gctx, c.ID) {
				duplicates.Add(1)
				metrics.RecordContributionDuplicate()
				return nil
			}
			inFlight.add(c.ID)
			if err := q.Enqueue(gctx, c); err != nil {
				inFlight.remove(c.ID)
				s.deduper.Unrecord(gctx, c.ID)
				return err
			}
			return nil
		})
	})
	err = g.Wait()
	if err != nil {
		// Contributions whose records were never saved must be retried by
		// the next ingest.
		for _, id := range inFlight.drain() {
			s.deduper.Unrecord(ctx, id)
		}
	}

	res := IngestResult{
		Received:   int(received.Load()),
		Duplicates: int(duplicates.Load()),
		Scored:     pool.Scored(),
		Duration:   time.Since(start),
	}
	if n, cerr := s.store.Count(ctx); cerr == nil {
		metrics.UpdateStoreRecords(n)
	}
	if err != nil {
		return res, fmt.Errorf("ingest: %w", err)
	}

	s.logger.Info(ctx, "ingest finished",
		logger.Int("received", res.Received),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("scored", int(res.Scored)),
		logger.Duration("took", res.Duration))
	return res, nil
}

// Analyze builds an analysis over the stored records in
// (startExclusive, endInclusive]. A zero end is open.
func (s *Service) Analyze(ctx context.Context, startExclusive, endInclusive time.Time) (*analysis.Analysis, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if endInclusive.IsZero() {
		endInclusive = openEnd
	}
	return s.analyzer.Analyze(ctx, startExclusive, endInclusive)
}

// pendingSet tracks the contributions of one ingest that were queued but
// not yet saved.
type pendingSet struct {
	mu  sync.Mutex
	ids map[model.ContributionID]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{ids: make(map[model.ContributionID]struct{})}
}

func (p *pendingSet) add(id model.ContributionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[id] = struct{}{}
}

func (p *pendingSet) remove(id model.ContributionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, id)
}

func (p *pendingSet) drain() []model.ContributionID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := slices.Collect(maps.Keys(p.ids))
	clear(p.ids)
	return out
}

// Store returns the score store.
func (s *Service) Store() repository.Store { return s.store }

// Close releases the store. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info(context.Background(), "service closed")
	return s.store.Close()
}
