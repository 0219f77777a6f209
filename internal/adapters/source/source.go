// Package source reads contributions from version-control exports.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/skillview/internal/domain/model"
)

// maxLineSize bounds one JSON-lines record; contributions carry file contents.
const maxLineSize = 64 << 20

// Source yields contributions inside (startExclusive, endInclusive].
// A zero bound is open. Iteration stops at the first error returned by emit.
type Source interface {
	Contributions(ctx context.Context, startExclusive, endInclusive time.Time, emit func(model.Contribution) error) error
}

// InWindow reports whether t lies in (startExclusive, endInclusive].
func InWindow(t, startExclusive, endInclusive time.Time) bool {
	if !startExclusive.IsZero() && !t.After(startExclusive) {
		return false
	}
	if !endInclusive.IsZero() && t.After(endInclusive) {
		return false
	}
	return true
}

// FileSource reads a JSON-lines file, one contribution per line.
type FileSource struct {
	path string
}

// NewFileSource returns a source over path. "-" reads standard input.
func NewFileSource(path string) (*FileSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	return &FileSource{path: path}, nil
}

// Path returns the file this source reads.
func (s *FileSource) Path() string { return s.path }

// Contributions implements Source.
func (s *FileSource) Contributions(ctx context.Context, startExclusive, endInclusive time.Time, emit func(model.Contribution) error) error {
	if s.path == "-" {
		return decode(ctx, "stdin", os.Stdin, startExclusive, endInclusive, emit)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()
	return decode(ctx, s.path, f, startExclusive, endInclusive, emit)
}

// ReaderSource decodes contributions from an in-memory reader. It can be
// iterated once.
type ReaderSource struct {
	name string
	r    io.Reader
}

// NewReaderSource wraps r; name appears in error messages.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, r: r}
}

// Contributions implements Source.
func (s *ReaderSource) Contributions(ctx context.Context, startExclusive, endInclusive time.Time, emit func(model.Contribution) error) error {
	return decode(ctx, s.name, s.r, startExclusive, endInclusive, emit)
}

func decode(ctx context.Context, name string, r io.Reader, startExclusive, endInclusive time.Time, emit func(model.Contribution) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var c model.Contribution
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return fmt.Errorf("%s:%d: %w: %w", name, line, ErrDecode, err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s:%d: %w: %w", name, line, ErrInvalidContribution, err)
		}
		if !InWindow(c.Time, startExclusive, endInclusive) {
			continue
		}
		if err := emit(c); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// MultiSource concatenates sources in order.
type MultiSource []Source

// Contributions implements Source.
func (m MultiSource) Contributions(ctx context.Context, startExclusive, endInclusive time.Time, emit func(model.Contribution) error) error {
	for _, s := range m {
		if err := s.Contributions(ctx, startExclusive, endInclusive, emit); err != nil {
			return err
		}
	}
	return nil
}

// Collect drains src into a slice.
func Collect(ctx context.Context, src Source, startExclusive, endInclusive time.Time) ([]model.Contribution, error) {
	var out []model.Contribution
	err := src.Contributions(ctx, startExclusive, endInclusive, func(c model.Contribution) error {
		out = append(out, c)
		return nil
	})
	return out, err
}
