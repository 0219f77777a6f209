// Package scoring defines scorer definitions and the contract for computing
// raw scores from contributions.
package scoring

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/okian/skillview/internal/domain/model"
)

// Definition describes a scorer: who produces the score, which skill it
// measures and the score a contributor gets when they have none.
type Definition struct {
	originator model.ScoreOriginator
	skill      model.SkillTag
	neutral    float64
}

// NewDefinition validates and builds a Definition.
func NewDefinition(originator model.ScoreOriginator, skill model.SkillTag, neutral float64) (Definition, error) {
	if _, err := model.ParseScoreOriginator(string(originator)); err != nil {
		return Definition{}, err
	}
	if _, err := model.ParseSkillTag(string(skill)); err != nil {
		return Definition{}, err
	}
	if math.IsNaN(neutral) || math.IsInf(neutral, 0) {
		return Definition{}, fmt.Errorf("%s: %w", originator, ErrInvalidNeutralScore)
	}
	return Definition{originator: originator, skill: skill, neutral: neutral}, nil
}

// Originator returns the scorer this definition describes.
func (d Definition) Originator() model.ScoreOriginator { return d.originator }

// Skill returns the skill the scorer's values count towards.
func (d Definition) Skill() model.SkillTag { return d.skill }

// NeutralScore returns the raw value assumed for contributors the scorer
// produced nothing for.
func (d Definition) NeutralScore() float64 { return d.neutral }

// Equal reports whether both definitions belong to the same originator.
// Skill and neutral score are not compared.
func (d Definition) Equal(other Definition) bool { return d.originator == other.originator }

// String formats the definition for logs.
func (d Definition) String() string {
	return fmt.Sprintf("%s(%s, neutral=%g)", d.originator, d.skill, d.neutral)
}

// Definitions is an immutable registry with exactly one definition per originator.
type Definitions struct {
	byOriginator map[model.ScoreOriginator]Definition
}

// NewDefinitions builds the registry, rejecting duplicate originators.
func NewDefinitions(defs ...Definition) (*Definitions, error) {
	m := make(map[model.ScoreOriginator]Definition, len(defs))
	for _, d := range defs {
		if _, ok := m[d.originator]; ok {
			return nil, fmt.Errorf("%s: %w", d.originator, ErrDuplicateOriginator)
		}
		m[d.originator] = d
	}
	return &Definitions{byOriginator: m}, nil
}

// Definition returns the definition registered for originator.
func (d *Definitions) Definition(originator model.ScoreOriginator) (Definition, error) {
	def, ok := d.byOriginator[originator]
	if !ok {
		return Definition{}, fmt.Errorf("%s: %w", originator, ErrUnknownOriginator)
	}
	return def, nil
}

// Originators returns all registered originators in sorted order.
func (d *Definitions) Originators() []model.ScoreOriginator {
	out := make([]model.ScoreOriginator, 0, len(d.byOriginator))
	for o := range d.byOriginator {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of definitions.
func (d *Definitions) Len() int { return len(d.byOriginator) }

// Scorer computes a raw score for a contribution. Implementations must be
// safe for concurrent use.
type Scorer interface {
	Definition() Definition
	// Score returns ErrNoScore when the scorer does not apply to c.
	Score(ctx context.Context, c model.Contribution) (float64, error)
}

// Kind names a built-in scorer implementation.
type Kind string

const (
	KindLines Kind = "lines"
	KindFiles Kind = "files"
)

// New creates a built-in scorer of the given kind.
func New(kind Kind, def Definition, opts ...Option) (Scorer, error) {
	switch kind {
	case KindLines:
		return NewLineScorer(def, opts...), nil
	case KindFiles:
		return NewFileScorer(def, opts...), nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}
