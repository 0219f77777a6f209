package scoring

import (
	"context"
	"strings"

	"github.com/okian/skillview/internal/domain/model"
)

// LineScorer scores a contribution by the number of lines added to matching
// items. A line counts as added when it occurs more often in the new content
// than in the previous content.
type LineScorer struct {
	def Definition
	cfg settings
}

// NewLineScorer creates a LineScorer.
func NewLineScorer(def Definition, opts ...Option) *LineScorer {
	return &LineScorer{def: def, cfg: newSettings(opts...)}
}

// Definition implements Scorer.
func (s *LineScorer) Definition() Definition { return s.def }

// Score implements Scorer.
func (s *LineScorer) Score(ctx context.Context, c model.Contribution) (float64, error) {
	matched := false
	added := 0
	for _, item := range c.Items {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if !s.cfg.matches(item.Path) {
			continue
		}
		matched = true
		added += s.addedLines(item.PreviousContent, item.Content)
	}
	if !matched {
		return 0, ErrNoScore
	}
	return float64(added), nil
}

func (s *LineScorer) addedLines(previous, current string) int {
	seen := make(map[string]int)
	for _, l := range splitLines(previous) {
		seen[l]++
	}
	added := 0
	for _, l := range splitLines(current) {
		if seen[l] > 0 {
			seen[l]--
			continue
		}
		if !s.cfg.blankLines && strings.TrimSpace(l) == "" {
			continue
		}
		added++
	}
	return added
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
