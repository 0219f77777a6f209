// Command skillview ingests contribution exports, scores them and prints a
// ranked JSON report of normalized skill scores.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/skillview/internal/adapters/source"
	service "github.com/okian/skillview/internal/app"
	"github.com/okian/skillview/internal/config"
	"github.com/okian/skillview/internal/domain/analysis"
	"github.com/okian/skillview/internal/domain/model"
	"github.com/okian/skillview/internal/report"
	"github.com/okian/skillview/pkg/logger"
	"github.com/okian/skillview/pkg/metrics"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var errUnknownPartition = errors.New("unknown partition")

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString("skillview: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("skillview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", os.Getenv("SKILLVIEW_CONFIG"), "YAML config file")
		from        = fs.String("from", "", "exclusive window start (RFC3339 or YYYY-MM-DD)")
		to          = fs.String("to", "", "inclusive window end (RFC3339 or YYYY-MM-DD)")
		partition   = fs.String("partition", "contributor", "contributor, project, originator, day, week or month")
		top         = fs.Int("top", 0, "entries per skill; 0 shows all")
		analyzeOnly = fs.Bool("analyze-only", false, "skip ingest and analyze the records already stored")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: skillview [flags] export.jsonl ...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	start, err := parseTime(*from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	end, err := parseTime(*to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	if !end.IsZero() && end.Before(start) {
		return fmt.Errorf("-to %s is before -from %s: %w", *to, *from, analysis.ErrInvalidWindow)
	}
	if !*analyzeOnly && fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no contribution exports given")
	}

	// Logs go to stderr so stdout carries only the report.
	_ = logger.Init(logger.WithWriter(stderr))

	cfg, err := config.LoadFile(ctx, *configPath)
	if err != nil {
		return err
	}
	_ = logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat))
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("skillview")

	sources := make(source.MultiSource, 0, fs.NArg())
	for _, path := range fs.Args() {
		s, err := source.NewFileSource(path)
		if err != nil {
			return err
		}
		sources = append(sources, s)
	}

	svc, err := service.NewFromConfig(cfg, sources, service.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn(ctx, "closing service", logger.Error(err))
		}
	}()

	if !*analyzeOnly {
		if _, err := svc.Ingest(ctx, start, end); err != nil {
			return err
		}
	}

	a, err := svc.Analyze(ctx, start, end)
	if err != nil {
		return err
	}
	r, err := buildReport(a, *partition, report.WithTop(*top))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Info(ctx, "metrics written", logger.String("path", cfg.MetricsFile))
	}
	return nil
}

func buildReport(a *analysis.Analysis, partition string, opts ...report.Option) (*report.Report, error) {
	switch partition {
	case "contributor":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByContributor), report.StringKey[model.Contributor], opts...)
	case "project":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByProject), report.StringKey[model.Project], opts...)
	case "originator":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByOriginator), report.StringKey[model.ScoreOriginator], opts...)
	case "day":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByTimeBucket(day)), report.DateKey, opts...)
	case "week":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByTimeBucket(week)), report.DateKey, opts...)
	case "month":
		return report.Build(a, partition, analysis.NormalisedScores(a, analysis.ByMonth), report.MonthKey, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", partition, errUnknownPartition)
	}
}

func parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, v, time.UTC)
}
