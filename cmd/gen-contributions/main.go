// Command gen-contributions writes a synthetic contribution history as
// JSON lines, ready to be fed to skillview.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/skillview/internal/synthetic"
	"github.com/okian/skillview/pkg/logger"
)

// Default configuration constants.
const (
	defaultContributors  = 20
	defaultProjects      = 3
	defaultContributions = 1000
	defaultSpan          = 365 * 24 * time.Hour
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString("gen-contributions: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gen-contributions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		contributors  = fs.Int("contributors", defaultContributors, "number of distinct contributors")
		projects      = fs.Int("projects", defaultProjects, "number of projects")
		contributions = fs.Int("contributions", defaultContributions, "number of contributions to generate")
		start         = fs.String("start", "2016-01-01", "earliest contribution date (YYYY-MM-DD)")
		span          = fs.Duration("span", defaultSpan, "period the contributions are spread over")
		extensions    = fs.String("ext", "java,go,md", "comma separated file extensions")
		seed          = fs.Uint64("seed", 1, "random seed")
		output        = fs.String("output", "-", "output file, - for stdout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_ = logger.Init(logger.WithWriter(stderr))
	log := logger.Named("gen-contributions")

	from, err := time.ParseInLocation(time.DateOnly, *start, time.UTC)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}

	gen, err := synthetic.New(synthetic.Config{
		Contributors:  *contributors,
		Projects:      *projects,
		Contributions: *contributions,
		Start:         from,
		Span:          *span,
		Extensions:    splitList(*extensions),
		Seed:          *seed,
	}, log)
	if err != nil {
		return err
	}

	w := stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	n, err := gen.WriteJSONLines(ctx, w)
	if err != nil {
		return err
	}
	log.Info(ctx, "wrote contributions", logger.Int("count", n), logger.String("output", *output))
	return nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
