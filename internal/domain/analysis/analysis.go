// Package analysis turns a snapshot of raw contribution scores into
// comparable skill scores.
//
// Normalization runs in three passes. Per originator, every contributor's
// summed raw score is z-scored across the whole contributor universe, with
// the originator's neutral score standing in for contributors it never
// scored. Per skill, the originator z-scores are combined with the weighting
// and z-scored again; this is the canonical per-contributor score. Finally,
// per caller-defined partition, the canonical scores of the partition's
// contributors are averaged and z-scored across partitions.
package analysis

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/internal/domain/weighting"
	"github.com/okian/skillview/pkg/logger"
	"github.com/okian/skillview/pkg/metrics"
)

// Analysis is an immutable view over one snapshot of scored contributions.
// It is safe for concurrent use; derived results are computed on first use
// and shared afterwards.
type Analysis struct {
	id     uuid.UUID
	log    logger.Logger
	scores []model.DetailedContributionScore
	defs   *scoring.Definitions
	scheme *weighting.Scheme

	start, end time.Time

	universe   func() []model.Contributor
	normalized func() map[model.ScoreOriginator]map[model.Contributor]float64
	canonical  func() map[model.SkillTag]map[model.Contributor]float64
}

// New builds an Analysis over scores. Every originator that is weighted by
// scheme and present in scores must have a definition in defs.
func New(
	scores []model.DetailedContributionScore,
	defs *scoring.Definitions,
	scheme *weighting.Scheme,
	opts ...Option,
) (*Analysis, error) {
	if defs == nil || scheme == nil {
		return nil, ErrNilRegistry
	}
	weighted := scheme.Weights()
	for _, s := range scores {
		if _, ok := weighted[s.Originator()]; !ok {
			continue
		}
		if _, err := defs.Definition(s.Originator()); err != nil {
			return nil, fmt.Errorf("weighted originator without definition: %w", err)
		}
	}

	cfg := newSettings(opts...)
	a := &Analysis{
		id:     cfg.id,
		log:    cfg.log,
		scores: slices.Clone(scores),
		defs:   defs,
		scheme: scheme,
	}
	for i, s := range a.scores {
		t := s.ScoreTime()
		if i == 0 || t.Before(a.start) {
			a.start = t
		}
		if i == 0 || t.After(a.end) {
			a.end = t
		}
	}
	a.universe = sync.OnceValue(a.computeUniverse)
	a.normalized = sync.OnceValue(a.computeNormalized)
	a.canonical = sync.OnceValue(a.computeCanonical)
	return a, nil
}

// ID returns the run id used in log lines.
func (a *Analysis) ID() uuid.UUID { return a.id }

// Scores returns the raw records exactly as given.
func (a *Analysis) Scores() []model.DetailedContributionScore {
	return slices.Clone(a.scores)
}

// Contributors returns the contributor universe in sorted order.
func (a *Analysis) Contributors() []model.Contributor {
	return slices.Clone(a.universe())
}

// StartTime returns the earliest score time. It is absent for an empty analysis.
func (a *Analysis) StartTime() (time.Time, bool) {
	return a.start, len(a.scores) > 0
}

// EndTime returns the latest score time. It is absent for an empty analysis.
func (a *Analysis) EndTime() (time.Time, bool) {
	return a.end, len(a.scores) > 0
}

// ContributorScores returns the canonical normalized score of every
// contributor per skill, ordered by skill.
func (a *Analysis) ContributorScores() map[model.Contributor][]model.ContributionScore {
	canonical := a.canonical()
	out := make(map[model.Contributor][]model.ContributionScore)
	for _, skill := range slices.Sorted(maps.Keys(canonical)) {
		for c, v := range canonical[skill] {
			out[c] = append(out[c], model.NewContributionScore(skill, v))
		}
	}
	return out
}

func (a *Analysis) computeUniverse() []model.Contributor {
	seen := make(map[model.Contributor]struct{})
	for _, s := range a.scores {
		seen[s.Contributor()] = struct{}{}
	}
	u := slices.Sorted(maps.Keys(seen))
	metrics.UpdateContributorUniverse(len(u))
	return u
}

// computeNormalized runs the first pass for every weighted originator that
// has at least one record.
func (a *Analysis) computeNormalized() map[model.ScoreOriginator]map[model.Contributor]float64 {
	started := time.Now()
	universe := a.universe()
	weighted := a.scheme.Weights()

	sums := make(map[model.ScoreOriginator]map[model.Contributor]float64)
	for _, s := range a.scores {
		o := s.Originator()
		if _, ok := weighted[o]; !ok {
			continue
		}
		bySum, ok := sums[o]
		if !ok {
			bySum = make(map[model.Contributor]float64)
			sums[o] = bySum
		}
		if v, present := s.Value(); present {
			bySum[s.Contributor()] += v
		}
	}

	out := make(map[model.ScoreOriginator]map[model.Contributor]float64, len(sums))
	for _, o := range slices.Sorted(maps.Keys(sums)) {
		// New guarantees a definition for every weighted originator with records.
		def, _ := a.defs.Definition(o)
		values := make([]float64, len(universe))
		for i, c := range universe {
			v, ok := sums[o][c]
			if !ok {
				v = def.NeutralScore()
			}
			values[i] = v
		}
		pop := NewPopulation(values)
		if pop.Degenerate() {
			metrics.RecordZeroVariance("originator")
		}
		z := make(map[model.Contributor]float64, len(universe))
		for i, c := range universe {
			z[c] = pop.ZScore(values[i])
		}
		out[o] = z
		a.log.Debug(context.Background(), "normalized originator",
			logger.String("analysis", a.id.String()),
			logger.String("originator", o.String()),
			logger.Float64("mean", pop.Mean),
			logger.Float64("stddev", pop.StdDev))
	}
	metrics.RecordAnalysisStage("originator", time.Since(started).Seconds())
	return out
}

// computeCanonical runs the second pass: weight, sum and re-normalize the
// originator z-scores per skill.
func (a *Analysis) computeCanonical() map[model.SkillTag]map[model.Contributor]float64 {
	normalized := a.normalized()
	started := time.Now()
	universe := a.universe()

	out := make(map[model.SkillTag]map[model.Contributor]float64)
	for _, skill := range a.scheme.Skills() {
		w, _ := a.scheme.Weighting(skill)
		combined := make([]float64, len(universe))
		used := 0
		for _, o := range w.Originators() {
			z, ok := normalized[o]
			if !ok {
				continue
			}
			used++
			weight, _ := w.Weight(o)
			for i, c := range universe {
				combined[i] += weight * z[c]
			}
		}
		if used == 0 {
			continue
		}
		pop := NewPopulation(combined)
		if pop.Degenerate() {
			metrics.RecordZeroVariance("skill")
		}
		scores := make(map[model.Contributor]float64, len(universe))
		for i, c := range universe {
			scores[c] = pop.ZScore(combined[i])
		}
		out[skill] = scores
		a.log.Debug(context.Background(), "combined skill",
			logger.String("analysis", a.id.String()),
			logger.String("skill", skill.String()),
			logger.Int("originators", used))
	}
	metrics.RecordAnalysisStage("skill", time.Since(started).Seconds())
	return out
}
