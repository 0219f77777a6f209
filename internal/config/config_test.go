package config_test

import (
	"errors"
	"testing"

	"github.com/okian/skillview/internal/config"
	"github.com/okian/skillview/internal/domain/scoring"
	"github.com/okian/skillview/internal/domain/weighting"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.Store, convey.ShouldEqual, "memory")
			convey.So(len(cfg.Scorers), convey.ShouldEqual, 4)
		})

		convey.Convey("Then it builds registries", func() {
			defs, err := cfg.Definitions()
			convey.So(err, convey.ShouldBeNil)
			convey.So(defs.Len(), convey.ShouldEqual, 4)

			scheme, err := cfg.WeightingScheme()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(scheme.Skills()), convey.ShouldEqual, 2)
			w, err := scheme.Weighting("JAVA")
			convey.So(err, convey.ShouldBeNil)
			lines, _ := w.Weight("JAVA_LINES")
			convey.So(lines, convey.ShouldEqual, 0.75)

			scorers, err := cfg.ScorerInstances()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(scorers), convey.ShouldEqual, 4)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config", t, func() {
		cfg := config.New()

		convey.Convey("When the log level is unknown", func() {
			cfg.LogLevel = "chatty"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sqlite store has no path", func() {
			cfg.Store = "sqlite"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a scorer kind is unknown", func() {
			cfg.Scorers[0].Kind = "tokens"
			err := cfg.Validate()

			convey.Convey("Then validation fails with the scorer error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, scoring.ErrUnknownKind), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When two scorers share an originator", func() {
			cfg.Scorers[1].Originator = cfg.Scorers[0].Originator

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), scoring.ErrDuplicateOriginator), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When weights do not sum to one", func() {
			cfg.Weightings["GO"]["GO_FILES"] = 0.5

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), weighting.ErrWeightSum), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a weighting references an undefined originator", func() {
			cfg.Weightings["GO"] = map[string]float64{"GO_TOKENS": 1}

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), scoring.ErrUnknownOriginator), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a weighting borrows another skill's originator", func() {
			cfg.Weightings["GO"] = map[string]float64{"JAVA_LINES": 1}

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
