package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/internal/domain/weighting"
	"github.com/okian/skillview/pkg/logger"
)

// ScoreSource provides the scored records of a time window.
type ScoreSource interface {
	Scores(ctx context.Context, startExclusive, endInclusive time.Time) ([]model.DetailedContributionScore, error)
}

// Service builds analyses from a ScoreSource.
type Service struct {
	source ScoreSource
	defs   *scoring.Definitions
	scheme *weighting.Scheme
	log    logger.Logger
}

// NewService creates a Service. The registries are checked when an analysis
// is built.
func NewService(source ScoreSource, defs *scoring.Definitions, scheme *weighting.Scheme, opts ...Option) *Service {
	cfg := newSettings(opts...)
	return &Service{source: source, defs: defs, scheme: scheme, log: cfg.log}
}

// Analyze fetches the records in (startExclusive, endInclusive] and builds
// an Analysis over them.
func (s *Service) Analyze(ctx context.Context, startExclusive, endInclusive time.Time) (*Analysis, error) {
	if s.source == nil {
		return nil, ErrNilSource
	}
	if endInclusive.Before(startExclusive) {
		return nil, fmt.Errorf("%s > %s: %w",
			startExclusive.Format(time.RFC3339), endInclusive.Format(time.RFC3339), ErrInvalidWindow)
	}
	scores, err := s.source.Scores(ctx, startExclusive, endInclusive)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	a, err := New(scores, s.defs, s.scheme, WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "analysis built",
		logger.String("analysis", a.ID().String()),
		logger.Int("records", len(scores)),
		logger.Int("contributors", len(a.Contributors())))
	return a, nil
}
