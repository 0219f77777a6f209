package analysis

import (
	"maps"
	"slices"
	"time"

	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/pkg/metrics"
)

// ScoresBy groups the raw records of a by the key fn returns. Scores are not
// normalized.
func ScoresBy[E comparable](a *Analysis, fn func(model.DetailedContributionScore) E) map[E][]model.DetailedContributionScore {
	out := make(map[E][]model.DetailedContributionScore)
	for _, s := range a.scores {
		k := fn(s)
		out[k] = append(out[k], s)
	}
	return out
}

// NormalisedScores returns, per partition key, one normalized score per
// skill ordered by skill. A partition's value for a skill is the mean of the
// canonical scores of the distinct contributors with records in the
// partition; these means are then z-scored across partitions.
func NormalisedScores[E comparable](a *Analysis, fn func(model.DetailedContributionScore) E) map[E][]model.ContributionScore {
	canonical := a.canonical()
	started := time.Now()
	out := make(map[E][]model.ContributionScore)
	if len(canonical) == 0 {
		return out
	}

	var order []E
	members := make(map[E]map[model.Contributor]struct{})
	for _, s := range a.scores {
		k := fn(s)
		m, ok := members[k]
		if !ok {
			m = make(map[model.Contributor]struct{})
			members[k] = m
			order = append(order, k)
		}
		m[s.Contributor()] = struct{}{}
	}
	contributors := make([][]model.Contributor, len(order))
	for i, k := range order {
		contributors[i] = slices.Sorted(maps.Keys(members[k]))
	}

	for _, skill := range slices.Sorted(maps.Keys(canonical)) {
		byContributor := canonical[skill]
		values := make([]float64, len(order))
		for i := range order {
			sum := 0.0
			for _, c := range contributors[i] {
				sum += byContributor[c]
			}
			values[i] = sum / float64(len(contributors[i]))
		}
		pop := NewPopulation(values)
		if pop.Degenerate() {
			metrics.RecordZeroVariance("partition")
		}
		for i, k := range order {
			out[k] = append(out[k], model.NewContributionScore(skill, pop.ZScore(values[i])))
		}
	}
	metrics.RecordPartitions(len(order))
	metrics.RecordAnalysisStage("partition", time.Since(started).Seconds())
	return out
}

// ByContributor partitions records by contributor.
func ByContributor(s model.DetailedContributionScore) model.Contributor { return s.Contributor() }

// ByProject partitions records by project.
func ByProject(s model.DetailedContributionScore) model.Project { return s.Project() }

// ByOriginator partitions records by the scorer that produced them.
func ByOriginator(s model.DetailedContributionScore) model.ScoreOriginator { return s.Originator() }

// ByTimeBucket partitions records into UTC buckets of the given size,
// keyed by bucket start. A non-positive size keys by the exact score time.
func ByTimeBucket(size time.Duration) func(model.DetailedContributionScore) time.Time {
	return func(s model.DetailedContributionScore) time.Time {
		return s.ScoreTime().UTC().Truncate(size)
	}
}

// ByMonth partitions records by calendar month in UTC.
func ByMonth(s model.DetailedContributionScore) time.Time {
	t := s.ScoreTime().UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
