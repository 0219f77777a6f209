package scoring

import "strings"

// Option configures the built-in scorers.
type Option func(*settings)

type settings struct {
	extensions []string
	blankLines bool
}

// WithExtensions restricts a scorer to items whose path ends in one of exts.
// Extensions are matched case-insensitively, with or without a leading dot.
// Without this option every item matches.
func WithExtensions(exts ...string) Option {
	return func(s *settings) {
		s.extensions = s.extensions[:0]
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			s.extensions = append(s.extensions, e)
		}
	}
}

// WithBlankLines makes the line scorer count added blank lines too.
func WithBlankLines(enabled bool) Option {
	return func(s *settings) { s.blankLines = enabled }
}

func newSettings(opts ...Option) settings {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

func (s settings) matches(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	p := strings.ToLower(path)
	for _, e := range s.extensions {
		if strings.HasSuffix(p, e) {
			return true
		}
	}
	return false
}
