package weighting_test

import (
	"errors"
	"math"
	"testing"

	model "github.com/okian/skillview/internal/domain/model"
	weighting "github.com/okian/skillview/internal/domain/weighting"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewWeighting(t *testing.T) {
	Convey("Given originator weights", t, func() {
		Convey("When they sum to exactly one", func() {
			w, err := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"O1": 0.75, "O2": 0.25})

			Convey("Then the weighting is built", func() {
				So(err, ShouldBeNil)
				So(w.Skill(), ShouldEqual, model.SkillTag("JAVA"))
				So(w.Originators(), ShouldResemble, []model.ScoreOriginator{"O1", "O2"})
				v, err := w.Weight("O1")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.75)
			})
		})

		Convey("When they sum to one within tolerance", func() {
			_, err := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{
				"O1": 0.1, "O2": 0.2, "O3": 0.7 + 5e-11,
			})

			Convey("Then the weighting is accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When they sum outside tolerance", func() {
			_, err := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"O1": 0.5, "O2": 0.5 + 1e-9})

			Convey("Then construction fails", func() {
				So(errors.Is(err, weighting.ErrWeightSum), ShouldBeTrue)
			})
		})

		Convey("When the map is empty", func() {
			_, err := weighting.NewWeighting("JAVA", nil)

			Convey("Then construction fails", func() {
				So(errors.Is(err, weighting.ErrEmptyWeighting), ShouldBeTrue)
			})
		})

		Convey("When an originator is blank", func() {
			_, err := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"": 1})

			Convey("Then construction fails", func() {
				So(errors.Is(err, model.ErrBlankIdentifier), ShouldBeTrue)
			})
		})

		Convey("When a weight is NaN", func() {
			_, err := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"O1": math.NaN()})

			Convey("Then construction fails", func() {
				So(errors.Is(err, weighting.ErrInvalidWeight), ShouldBeTrue)
			})
		})

		Convey("When the source map is mutated after construction", func() {
			src := map[model.ScoreOriginator]float64{"O1": 1}
			w, err := weighting.NewWeighting("JAVA", src)
			So(err, ShouldBeNil)
			src["O1"] = 0.1

			Convey("Then the weighting keeps its own copy", func() {
				v, _ := w.Weight("O1")
				So(v, ShouldEqual, 1.0)
			})
		})

		Convey("When looking up an unknown originator", func() {
			w, _ := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"O1": 1})
			_, err := w.Weight("O9")

			Convey("Then the lookup fails", func() {
				So(errors.Is(err, weighting.ErrUnknownOriginator), ShouldBeTrue)
			})
		})
	})
}

func TestScheme(t *testing.T) {
	Convey("Given two weightings", t, func() {
		java, _ := weighting.NewWeighting("JAVA", map[model.ScoreOriginator]float64{"O1": 1})
		golang, _ := weighting.NewWeighting("GO", map[model.ScoreOriginator]float64{"O2": 0.5, "O3": 0.5})

		Convey("When building a scheme", func() {
			s, err := weighting.NewScheme(java, golang)
			So(err, ShouldBeNil)

			Convey("Then skills are sorted and resolvable", func() {
				So(s.Skills(), ShouldResemble, []model.SkillTag{"GO", "JAVA"})
				w, err := s.Weighting("GO")
				So(err, ShouldBeNil)
				So(w.Originators(), ShouldResemble, []model.ScoreOriginator{"O2", "O3"})
				So(len(s.Weights()), ShouldEqual, 3)
			})

			Convey("Then unknown skills fail", func() {
				_, err := s.Weighting("RUST")
				So(errors.Is(err, weighting.ErrUnknownSkill), ShouldBeTrue)
			})
		})

		Convey("When a skill is given twice", func() {
			_, err := weighting.NewScheme(java, java)

			Convey("Then the scheme is rejected", func() {
				So(errors.Is(err, weighting.ErrDuplicateSkill), ShouldBeTrue)
			})
		})

		Convey("When a zero-value weighting is given", func() {
			_, err := weighting.NewScheme(java, weighting.Weighting{})

			Convey("Then the scheme is rejected", func() {
				So(errors.Is(err, weighting.ErrEmptyWeighting), ShouldBeTrue)
			})
		})
	})
}
