// Package synthetic generates plausible contribution histories for trying
// the pipeline without a real repository export.
package synthetic

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/pkg/logger"
)

// Defaults for Config fields left zero.
const (
	defaultContributors  = 20
	defaultProjects      = 3
	defaultContributions = 500
	defaultSpan          = 365 * 24 * time.Hour
	maxItemsPerChange    = 3
)

// tier describes how much a contributor typically changes per contribution.
type tier struct {
	name     string
	minLines int
	span     int
}

// Tiers are drawn uniformly, so the common shapes appear more than once.
var tiers = []tier{
	{name: "average", minLines: 10, span: 40},
	{name: "average", minLines: 10, span: 40},
	{name: "high", minLines: 40, span: 60},
	{name: "low", minLines: 1, span: 9},
	{name: "elite", minLines: 100, span: 100},
	{name: "very-low", minLines: 1, span: 2},
	{name: "mid-high", minLines: 30, span: 20},
	{name: "wide", minLines: 1, span: 199},
}

// Config controls the generated history.
type Config struct {
	Contributors  int
	Projects      int
	Contributions int
	// Start is the time of the earliest possible contribution.
	Start time.Time
	// Span is the width of the period contributions are spread over.
	Span time.Duration
	// Extensions are the file types contributors work in; each contributor
	// prefers one of them.
	Extensions []string
	// Seed makes the output reproducible.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.Contributors == 0 {
		c.Contributors = defaultContributors
	}
	if c.Projects == 0 {
		c.Projects = defaultProjects
	}
	if c.Contributions == 0 {
		c.Contributions = defaultContributions
	}
	if c.Start.IsZero() {
		c.Start = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.Span == 0 {
		c.Span = defaultSpan
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{"java", "go", "md"}
	}
	return c
}

// Validate reports whether the config can produce a history.
func (c Config) Validate() error {
	switch {
	case c.Contributors < 0, c.Projects < 0, c.Contributions < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidConfig)
	case c.Span < 0:
		return fmt.Errorf("%w: span must not be negative", ErrInvalidConfig)
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("%w: blank extension", ErrInvalidConfig)
		}
	}
	return nil
}

type persona struct {
	name      model.Contributor
	tier      tier
	extension string
}

// Generator produces contributions in ascending time order.
type Generator struct {
	cfg      Config
	rng      *rand.Rand
	ids      io.Reader
	personas []persona
	logger   logger.Logger
}

// New creates a Generator. Two generators with the same config produce the
// same history.
func New(cfg Config, l logger.Logger) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	g := &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		ids:    rand.NewChaCha8(seed),
		logger: l,
	}
	g.personas = make([]persona, cfg.Contributors)
	for i := range g.personas {
		g.personas[i] = persona{
			name:      model.Contributor("dev-" + strconv.Itoa(i+1)),
			tier:      tiers[g.rng.IntN(len(tiers))],
			extension: cfg.Extensions[g.rng.IntN(len(cfg.Extensions))],
		}
	}
	return g, nil
}

// Generate calls emit for every contribution. It stops at the first error.
func (g *Generator) Generate(ctx context.Context, emit func(model.Contribution) error) error {
	n := g.cfg.Contributions
	if n == 0 {
		return nil
	}
	step := g.cfg.Span / time.Duration(n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := g.contribution(i, step)
		if err != nil {
			return err
		}
		if err := emit(c); err != nil {
			return err
		}
	}
	if g.logger != nil {
		g.logger.Info(ctx, "generated contributions",
			logger.Int("count", n),
			logger.Int("contributors", len(g.personas)))
	}
	return nil
}

func (g *Generator) contribution(i int, step time.Duration) (model.Contribution, error) {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		return model.Contribution{}, fmt.Errorf("contribution id: %w", err)
	}
	p := g.personas[g.rng.IntN(len(g.personas))]
	at := g.cfg.Start.Add(time.Duration(i) * step)
	if step > 1 {
		at = at.Add(time.Duration(g.rng.Int64N(int64(step))))
	}

	items := make([]model.ContributionItem, 1+g.rng.IntN(maxItemsPerChange))
	for j := range items {
		ext := p.extension
		// Now and then everyone touches a file outside their main language.
		if g.rng.IntN(5) == 0 {
			ext = g.cfg.Extensions[g.rng.IntN(len(g.cfg.Extensions))]
		}
		kept := g.rng.IntN(10)
		added := p.tier.minLines + g.rng.IntN(p.tier.span+1)
		items[j] = model.ContributionItem{
			Path:            fmt.Sprintf("src/%s/file%d.%s", p.name, g.rng.IntN(50), ext),
			PreviousContent: lines("kept", kept),
			Content:         lines("kept", kept) + lines(id.String()[:8], added),
		}
	}

	return model.Contribution{
		ID:          model.ContributionID(id.String()),
		Project:     model.Project("project-" + strconv.Itoa(1+g.rng.IntN(g.cfg.Projects))),
		Contributor: p.name,
		Time:        at.UTC(),
		Message:     fmt.Sprintf("%s change %d", p.tier.name, i),
		Items:       items,
	}, nil
}

func lines(prefix string, n int) string {
	var b strings.Builder
	for k := range n {
		b.WriteString(prefix)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(k))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteJSONLines writes the generated history to w, one contribution per
// line, and returns how many were written.
func (g *Generator) WriteJSONLines(ctx context.Context, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	count := 0
	err := g.Generate(ctx, func(c model.Contribution) error {
		if err := enc.Encode(c); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, bw.Flush()
}
