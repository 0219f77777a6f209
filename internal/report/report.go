// Package report turns partitioned normalized scores into ranked,
// serialisable tables.
package report

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/okian/skillview/internal/domain/analysis"
	"github.com/okian/skillview/internal/domain/model"
)

// Entry is one partition's score for a skill.
type Entry struct {
	Rank  int     `json:"rank"`
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Summary describes the distribution of a skill's partition scores.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Skill groups the ranking of one skill.
type Skill struct {
	Skill   model.SkillTag `json:"skill"`
	Summary Summary        `json:"summary"`
	Entries []Entry        `json:"entries"`
}

// Report is the ranked view of an analysis for one partitioning.
type Report struct {
	AnalysisID   string     `json:"analysis_id"`
	Partition    string     `json:"partition"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	Records      int        `json:"records"`
	Contributors int        `json:"contributors"`
	Partitions   int        `json:"partitions"`
	Skills       []Skill    `json:"skills"`
}

// Option configures Build.
type Option func(*settings)

type settings struct {
	top int
}

// WithTop keeps only the n best entries per skill. n <= 0 keeps all.
func WithTop(n int) Option {
	return func(s *settings) {
		s.top = n
	}
}

// Build ranks the partitions of scores per skill: higher score first, ties
// broken by key. Summaries cover every partition, not only the kept top.
func Build[E comparable](
	a *analysis.Analysis,
	partition string,
	scores map[E][]model.ContributionScore,
	key func(E) string,
	opts ...Option,
) (*Report, error) {
	if a == nil {
		return nil, ErrNilAnalysis
	}
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Report{
		AnalysisID:   a.ID().String(),
		Partition:    partition,
		Records:      len(a.Scores()),
		Contributors: len(a.Contributors()),
		Partitions:   len(scores),
	}
	if t, ok := a.StartTime(); ok {
		r.Start = &t
	}
	if t, ok := a.EndTime(); ok {
		r.End = &t
	}

	bySkill := make(map[model.SkillTag][]Entry)
	for part, values := range scores {
		k := key(part)
		if k == "" {
			return nil, fmt.Errorf("%v: %w", part, ErrEmptyKey)
		}
		for _, s := range values {
			v, ok := s.Value()
			if !ok {
				continue
			}
			bySkill[s.Skill()] = append(bySkill[s.Skill()], Entry{Key: k, Score: v})
		}
	}

	for _, skill := range slices.Sorted(maps.Keys(bySkill)) {
		entries := bySkill[skill]
		slices.SortFunc(entries, func(x, y Entry) int {
			if c := cmp.Compare(y.Score, x.Score); c != 0 {
				return c
			}
			return cmp.Compare(x.Key, y.Key)
		})
		for i := range entries {
			entries[i].Rank = i + 1
		}
		sum, err := summarize(entries)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", skill, err)
		}
		if cfg.top > 0 && len(entries) > cfg.top {
			entries = entries[:cfg.top]
		}
		r.Skills = append(r.Skills, Skill{Skill: skill, Summary: sum, Entries: entries})
	}
	return r, nil
}

func summarize(entries []Entry) (Summary, error) {
	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = e.Score
	}
	var (
		s   = Summary{Count: len(data)}
		err error
	)
	if s.Min, err = stats.Min(data); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return Summary{}, err
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return Summary{}, err
	}
	if s.P90, err = stats.PercentileNearestRank(data, 90); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// StringKey formats identifier partition keys.
func StringKey[E ~string](e E) string { return string(e) }

// DateKey formats time bucket keys as UTC dates.
func DateKey(t time.Time) string { return t.UTC().Format(time.DateOnly) }

// MonthKey formats month bucket keys.
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }
