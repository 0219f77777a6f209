// Package config defines skillview configuration and turns it into the
// validated registries the analysis needs.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/skillview/internal/adapters/repository"
	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/internal/domain/weighting"
	"github.com/okian/skillview/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// WorkerCount sets the number of scoring workers; 0 means one per CPU.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory contribution queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the contribution dedupe set; 0 keeps every ID.
	DedupeSize int `koanf:"dedupe_size"`

	// Store selects the score store: memory or sqlite.
	Store string `koanf:"store"`

	// StorePath is the database file used by the sqlite store.
	StorePath string `koanf:"store_path"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// Scorers lists the scorer instances to run against every contribution.
	Scorers []ScorerConfig `koanf:"scorers"`

	// Weightings maps skill -> originator -> weight. Weights per skill sum to 1.
	Weightings map[string]map[string]float64 `koanf:"weightings"`
}

// ScorerConfig describes one scorer.
type ScorerConfig struct {
	Originator   string   `koanf:"originator"`
	Skill        string   `koanf:"skill"`
	NeutralScore float64  `koanf:"neutral_score"`
	Kind         string   `koanf:"kind"`
	Extensions   []string `koanf:"extensions"`
	BlankLines   bool     `koanf:"blank_lines"`
}

// New creates a Config with defaults: line and file scorers for Java and Go,
// weighted 0.75/0.25.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		WorkerCount: 0,
		QueueSize:   1024,
		DedupeSize:  0,
		Store:       string(repository.KindMemory),
		Scorers: []ScorerConfig{
			{Originator: "JAVA_LINES", Skill: "JAVA", Kind: string(scoring.KindLines), Extensions: []string{"java"}},
			{Originator: "JAVA_FILES", Skill: "JAVA", Kind: string(scoring.KindFiles), Extensions: []string{"java"}},
			{Originator: "GO_LINES", Skill: "GO", Kind: string(scoring.KindLines), Extensions: []string{"go"}},
			{Originator: "GO_FILES", Skill: "GO", Kind: string(scoring.KindFiles), Extensions: []string{"go"}},
		},
		Weightings: map[string]map[string]float64{
			"JAVA": {"JAVA_LINES": 0.75, "JAVA_FILES": 0.25},
			"GO":   {"GO_LINES": 0.75, "GO_FILES": 0.25},
		},
	}
}

// Validate checks every field and that the scorers and weightings form
// consistent registries.
func (c *Config) Validate() error {
	var errs []error
	if err := checkLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q", c.LogFormat))
	}
	if c.WorkerCount < 0 {
		errs = append(errs, fmt.Errorf("worker_count %d must not be negative", c.WorkerCount))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue_size %d must be positive", c.QueueSize))
	}
	switch repository.Kind(c.Store) {
	case repository.KindMemory:
	case repository.KindSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			errs = append(errs, errors.New("store_path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("store %q", c.Store))
	}
	if _, err := c.ScorerInstances(); err != nil {
		errs = append(errs, err)
	}
	if err := c.checkWeightings(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func checkLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log_level %q: %w", level, logger.ErrUnknownLevel)
	}
}

// Definitions builds the scorer definition registry.
func (c *Config) Definitions() (*scoring.Definitions, error) {
	defs := make([]scoring.Definition, 0, len(c.Scorers))
	for _, sc := range c.Scorers {
		d, err := scoring.NewDefinition(model.ScoreOriginator(sc.Originator), model.SkillTag(sc.Skill), sc.NeutralScore)
		if err != nil {
			return nil, fmt.Errorf("scorer %q: %w", sc.Originator, err)
		}
		defs = append(defs, d)
	}
	if len(defs) == 0 {
		return nil, errors.New("at least one scorer is required")
	}
	return scoring.NewDefinitions(defs...)
}

// ScorerInstances builds one scorer per configured entry.
func (c *Config) ScorerInstances() ([]scoring.Scorer, error) {
	if _, err := c.Definitions(); err != nil {
		return nil, err
	}
	out := make([]scoring.Scorer, 0, len(c.Scorers))
	for _, sc := range c.Scorers {
		def, err := scoring.NewDefinition(model.ScoreOriginator(sc.Originator), model.SkillTag(sc.Skill), sc.NeutralScore)
		if err != nil {
			return nil, err
		}
		s, err := scoring.New(scoring.Kind(sc.Kind), def,
			scoring.WithExtensions(sc.Extensions...),
			scoring.WithBlankLines(sc.BlankLines))
		if err != nil {
			return nil, fmt.Errorf("scorer %q: %w", sc.Originator, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// WeightingScheme builds the per-skill weighting scheme.
func (c *Config) WeightingScheme() (*weighting.Scheme, error) {
	ws := make([]weighting.Weighting, 0, len(c.Weightings))
	for _, skill := range slices.Sorted(maps.Keys(c.Weightings)) {
		weights := make(map[model.ScoreOriginator]float64, len(c.Weightings[skill]))
		for o, w := range c.Weightings[skill] {
			weights[model.ScoreOriginator(o)] = w
		}
		w, err := weighting.NewWeighting(model.SkillTag(skill), weights)
		if err != nil {
			return nil, fmt.Errorf("weighting %q: %w", skill, err)
		}
		ws = append(ws, w)
	}
	return weighting.NewScheme(ws...)
}

// checkWeightings requires every weighted originator to be a configured
// scorer for the same skill.
func (c *Config) checkWeightings() error {
	scheme, err := c.WeightingScheme()
	if err != nil {
		return err
	}
	defs, err := c.Definitions()
	if err != nil {
		return nil // reported by ScorerInstances
	}
	for _, skill := range scheme.Skills() {
		w, _ := scheme.Weighting(skill)
		for _, o := range w.Originators() {
			d, err := defs.Definition(o)
			if err != nil {
				return fmt.Errorf("weighting %q: %w", skill, err)
			}
			if d.Skill() != skill {
				return fmt.Errorf("weighting %q references %q which scores %q", skill, o, d.Skill())
			}
		}
	}
	return nil
}
