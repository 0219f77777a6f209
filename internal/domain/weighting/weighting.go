// Package weighting holds the per-skill originator weights used to combine
// normalized scores.
package weighting

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/okian/skillview/internal/domain/model"
)

// Tolerance is the maximum allowed deviation of a weighting's sum from 1.0.
const Tolerance = 1e-10

// Weighting assigns a weight to every originator contributing to one skill.
type Weighting struct {
	skill   model.SkillTag
	weights map[model.ScoreOriginator]float64
}

// NewWeighting validates and builds a Weighting. The weights map is copied.
func NewWeighting(skill model.SkillTag, weights map[model.ScoreOriginator]float64) (Weighting, error) {
	if _, err := model.ParseSkillTag(string(skill)); err != nil {
		return Weighting{}, err
	}
	if len(weights) == 0 {
		return Weighting{}, fmt.Errorf("%s: %w", skill, ErrEmptyWeighting)
	}
	sum := 0.0
	for o, w := range weights {
		if _, err := model.ParseScoreOriginator(string(o)); err != nil {
			return Weighting{}, fmt.Errorf("%s: %w", skill, err)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return Weighting{}, fmt.Errorf("%s/%s: %w", skill, o, ErrInvalidWeight)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > Tolerance {
		return Weighting{}, fmt.Errorf("%s: sum is %v: %w", skill, sum, ErrWeightSum)
	}
	return Weighting{skill: skill, weights: maps.Clone(weights)}, nil
}

// Skill returns the skill this weighting applies to.
func (w Weighting) Skill() model.SkillTag { return w.skill }

// Weight returns the weight of originator.
func (w Weighting) Weight(originator model.ScoreOriginator) (float64, error) {
	v, ok := w.weights[originator]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", w.skill, originator, ErrUnknownOriginator)
	}
	return v, nil
}

// Originators returns the weighted originators in sorted order.
func (w Weighting) Originators() []model.ScoreOriginator {
	return slices.Sorted(maps.Keys(w.weights))
}

// Scheme maps each skill to its Weighting.
type Scheme struct {
	bySkill map[model.SkillTag]Weighting
}

// NewScheme builds a Scheme, rejecting duplicate skills and weightings not
// built by NewWeighting.
func NewScheme(weightings ...Weighting) (*Scheme, error) {
	m := make(map[model.SkillTag]Weighting, len(weightings))
	for _, w := range weightings {
		if w.skill == "" || len(w.weights) == 0 {
			return nil, fmt.Errorf("%q: %w", w.skill, ErrEmptyWeighting)
		}
		if _, ok := m[w.skill]; ok {
			return nil, fmt.Errorf("%s: %w", w.skill, ErrDuplicateSkill)
		}
		m[w.skill] = w
	}
	return &Scheme{bySkill: m}, nil
}

// Weighting returns the weighting for skill.
func (s *Scheme) Weighting(skill model.SkillTag) (Weighting, error) {
	w, ok := s.bySkill[skill]
	if !ok {
		return Weighting{}, fmt.Errorf("%s: %w", skill, ErrUnknownSkill)
	}
	return w, nil
}

// Skills returns the configured skills in sorted order.
func (s *Scheme) Skills() []model.SkillTag {
	return slices.Sorted(maps.Keys(s.bySkill))
}

// Weights returns every originator weighted under any skill.
func (s *Scheme) Weights() map[model.ScoreOriginator]struct{} {
	out := make(map[model.ScoreOriginator]struct{})
	for _, w := range s.bySkill {
		for o := range w.weights {
			out[o] = struct{}{}
		}
	}
	return out
}
