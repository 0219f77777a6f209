package scoring

import (
	"context"

	"github.com/okian/skillview/internal/domain/model"
)

// FileScorer scores a contribution by the number of matching items it touches.
type FileScorer struct {
	def Definition
	cfg settings
}

// NewFileScorer creates a FileScorer.
func NewFileScorer(def Definition, opts ...Option) *FileScorer {
	return &FileScorer{def: def, cfg: newSettings(opts...)}
}

// Definition implements Scorer.
func (s *FileScorer) Definition() Definition { return s.def }

// Score implements Scorer.
func (s *FileScorer) Score(ctx context.Context, c model.Contribution) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	for _, item := range c.Items {
		if s.cfg.matches(item.Path) {
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoScore
	}
	return float64(n), nil
}
