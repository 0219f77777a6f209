package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	model "github.com/okian/skillview/internal/domain/model"
	scoring "github.com/okian/skillview/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func mustDefinition(o model.ScoreOriginator, s model.SkillTag, neutral float64) scoring.Definition {
	d, err := scoring.NewDefinition(o, s, neutral)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDefinition(t *testing.T) {
	Convey("Given scorer definitions", t, func() {
		Convey("When the neutral score is not finite", func() {
			_, nanErr := scoring.NewDefinition("O1", "JAVA", math.NaN())
			_, infErr := scoring.NewDefinition("O1", "JAVA", math.Inf(1))

			Convey("Then construction fails", func() {
				So(errors.Is(nanErr, scoring.ErrInvalidNeutralScore), ShouldBeTrue)
				So(errors.Is(infErr, scoring.ErrInvalidNeutralScore), ShouldBeTrue)
			})
		})

		Convey("When the originator is blank", func() {
			_, err := scoring.NewDefinition(" ", "JAVA", 0)

			Convey("Then construction fails", func() {
				So(errors.Is(err, model.ErrBlankIdentifier), ShouldBeTrue)
			})
		})

		Convey("When two definitions share an originator", func() {
			a := mustDefinition("O1", "JAVA", 0)
			b := mustDefinition("O1", "GO", 5)

			Convey("Then they are equal regardless of skill and neutral score", func() {
				So(a.Equal(b), ShouldBeTrue)
				So(a.Equal(mustDefinition("O2", "JAVA", 0)), ShouldBeFalse)
			})

			Convey("And the registry rejects them", func() {
				_, err := scoring.NewDefinitions(a, b)
				So(errors.Is(err, scoring.ErrDuplicateOriginator), ShouldBeTrue)
			})
		})
	})
}

func TestDefinitions(t *testing.T) {
	Convey("Given a registry with two originators", t, func() {
		defs, err := scoring.NewDefinitions(
			mustDefinition("O2", "JAVA", 1),
			mustDefinition("O1", "JAVA", 0),
		)
		So(err, ShouldBeNil)

		Convey("Then known originators resolve", func() {
			d, err := defs.Definition("O2")
			So(err, ShouldBeNil)
			So(d.Skill(), ShouldEqual, model.SkillTag("JAVA"))
			So(d.NeutralScore(), ShouldEqual, 1.0)
		})

		Convey("Then unknown originators fail", func() {
			_, err := defs.Definition("O3")
			So(errors.Is(err, scoring.ErrUnknownOriginator), ShouldBeTrue)
		})

		Convey("Then originators are listed in sorted order", func() {
			So(defs.Originators(), ShouldResemble, []model.ScoreOriginator{"O1", "O2"})
			So(defs.Len(), ShouldEqual, 2)
		})
	})
}

func contribution(items ...model.ContributionItem) model.Contribution {
	return model.Contribution{
		ID:          "c1",
		Project:     "SkillView",
		Contributor: "sjanisch",
		Time:        time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC),
		Items:       items,
	}
}

func TestLineScorer(t *testing.T) {
	Convey("Given a line scorer for java files", t, func() {
		def := mustDefinition("JAVA_LINES", "JAVA", 0)
		s, err := scoring.New(scoring.KindLines, def, scoring.WithExtensions("java"))
		So(err, ShouldBeNil)
		So(s.Definition().Equal(def), ShouldBeTrue)

		Convey("When a new file is added", func() {
			c := contribution(model.ContributionItem{
				Path:    "src/Main.java",
				Content: "class Main {\n\n  void run() {}\n}\n",
			})
			score, err := s.Score(context.Background(), c)

			Convey("Then every non-blank line counts", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 3.0)
			})
		})

		Convey("When a file is modified", func() {
			c := contribution(model.ContributionItem{
				Path:            "src/Main.JAVA",
				PreviousContent: "a\nb\nb\n",
				Content:         "a\nb\nb\nb\nc\n",
			})
			score, err := s.Score(context.Background(), c)

			Convey("Then only lines beyond the previous multiset count", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 2.0)
			})
		})

		Convey("When no item matches", func() {
			c := contribution(model.ContributionItem{Path: "main.go", Content: "package main\n"})
			_, err := s.Score(context.Background(), c)

			Convey("Then the scorer does not apply", func() {
				So(errors.Is(err, scoring.ErrNoScore), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := s.Score(ctx, contribution(model.ContributionItem{Path: "A.java", Content: "x"}))

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a line scorer counting blank lines", t, func() {
		s := scoring.NewLineScorer(mustDefinition("ALL_LINES", "ANY", 0), scoring.WithBlankLines(true))

		Convey("Then blank lines are added too", func() {
			score, err := s.Score(context.Background(), contribution(model.ContributionItem{
				Path:    "README",
				Content: "a\r\n\r\nb\r\n",
			}))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 3.0)
		})
	})
}

func TestFileScorer(t *testing.T) {
	Convey("Given a file scorer for go files", t, func() {
		s, err := scoring.New(scoring.KindFiles, mustDefinition("GO_FILES", "GO", 0), scoring.WithExtensions(".go", ""))
		So(err, ShouldBeNil)

		Convey("Then it counts matching items", func() {
			score, err := s.Score(context.Background(), contribution(
				model.ContributionItem{Path: "a.go"},
				model.ContributionItem{Path: "b.go"},
				model.ContributionItem{Path: "README.md"},
			))
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 2.0)
		})

		Convey("Then a contribution without matching items is not scored", func() {
			_, err := s.Score(context.Background(), contribution())
			So(errors.Is(err, scoring.ErrNoScore), ShouldBeTrue)
		})
	})

	Convey("Given an unknown kind", t, func() {
		_, err := scoring.New("tokens", mustDefinition("X", "Y", 0))

		Convey("Then the factory fails", func() {
			So(errors.Is(err, scoring.ErrUnknownKind), ShouldBeTrue)
		})
	})
}
