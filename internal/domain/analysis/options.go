package analysis

import (
	"io"

	"github.com/google/uuid"
	"github.com/okian/skillview/pkg/logger"
)

// Option configures an Analysis or a Service.
type Option func(*settings)

type settings struct {
	log logger.Logger
	id  uuid.UUID
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithID sets the analysis run id used to correlate log lines. A random id
// is generated otherwise.
func WithID(id uuid.UUID) Option {
	return func(s *settings) {
		if id != uuid.Nil {
			s.id = id
		}
	}
}

func newSettings(opts ...Option) settings {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.log == nil {
		s.log = logger.New(logger.WithWriter(io.Discard))
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	return s
}
