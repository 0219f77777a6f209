package repository_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/skillview/internal/adapters/repository"
	"github.com/okian/skillview/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)

func record(id, originator string, value float64, at time.Time) model.DetailedContributionScore {
	r, err := model.NewDetailedContributionScore(
		model.NewContributionScore("JAVA", value), at, "SkillView",
		model.ContributionID(id), "sjanisch", model.ScoreOriginator(originator))
	if err != nil {
		panic(err)
	}
	return r
}

func ids(records []model.DetailedContributionScore) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = string(r.ContributionID()) + "/" + string(r.Originator())
	}
	return out
}

// storeContract runs the behaviour every Store must share.
func storeContract(open func() repository.Store) {
	ctx := context.Background()
	s := open()
	Reset(func() { _ = s.Close() })

	Convey("When saving records out of order", func() {
		So(s.Save(ctx,
			record("c3", "O1", 3, base.Add(2*time.Hour)),
			record("c1", "O2", 1, base),
			record("c1", "O1", 1, base),
			record("c2", "O1", 2, base.Add(time.Hour)),
		), ShouldBeNil)

		Convey("Then Scores should return them in a deterministic order", func() {
			got, err := s.Scores(ctx, base.Add(-time.Second), base.Add(3*time.Hour))
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"c1/O1", "c1/O2", "c2/O1", "c3/O1"})
			So(got[0].ScoreTime().Equal(base), ShouldBeTrue)
			So(got[0].Project(), ShouldEqual, model.Project("SkillView"))
			So(got[0].Contributor(), ShouldEqual, model.Contributor("sjanisch"))
		})

		Convey("Then the window should exclude its start and include its end", func() {
			got, err := s.Scores(ctx, base, base.Add(time.Hour))
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"c2/O1"})
		})

		Convey("Then an unbounded window should return everything", func() {
			got, err := s.Scores(ctx, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 4)
		})

		Convey("Then Count should report all records", func() {
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 4)
		})

		Convey("And saving the same originator and contribution again", func() {
			So(s.Save(ctx, record("c1", "O1", 10, base)), ShouldBeNil)

			Convey("Then the record should be replaced", func() {
				n, _ := s.Count(ctx)
				So(n, ShouldEqual, 4)
				got, _ := s.Scores(ctx, base.Add(-time.Second), base)
				v, ok := got[0].Value()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 10.0)
			})
		})
	})

	Convey("When saving an absent score", func() {
		So(s.Save(ctx, record("c1", "O1", math.NaN(), base)), ShouldBeNil)

		Convey("Then it should stay absent", func() {
			got, err := s.Scores(ctx, base.Add(-time.Second), base)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			_, ok := got[0].Value()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("When saving concurrently", func() {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Save(ctx, record("c"+string(rune('a'+i)), "O1", float64(i), base))
			}()
		}
		wg.Wait()

		Convey("Then every record should be stored", func() {
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 8)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		storeContract(func() repository.Store { return repository.NewMemoryStore() })
	})

	Convey("Given a closed memory store", t, func() {
		s := repository.NewMemoryStore()
		So(s.Close(), ShouldBeNil)

		Convey("Then every operation should fail", func() {
			So(errors.Is(s.Save(context.Background(), record("c1", "O1", 1, base)), repository.ErrClosed), ShouldBeTrue)
			_, err := s.Count(context.Background())
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a sqlite store", t, func() {
		storeContract(func() repository.Store {
			s, err := repository.Open(repository.KindSQLite, filepath.Join(t.TempDir(), "scores.db"))
			So(err, ShouldBeNil)
			return s
		})
	})

	Convey("Given a sqlite file written by an earlier run", t, func() {
		path := filepath.Join(t.TempDir(), "scores.db")
		first, err := repository.OpenSQLite(path)
		So(err, ShouldBeNil)
		So(first.Save(context.Background(), record("c1", "O1", 1, base)), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("Then reopening it should keep the records", func() {
			second, err := repository.OpenSQLite(path, repository.WithBusyTimeout(time.Second))
			So(err, ShouldBeNil)
			defer second.Close()
			n, err := second.Count(context.Background())
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := repository.OpenSQLite(" ")

		Convey("Then opening should fail", func() {
			So(errors.Is(err, repository.ErrEmptyPath), ShouldBeTrue)
		})
	})

	Convey("Given an unknown kind", t, func() {
		_, err := repository.Open("redis", "")

		Convey("Then opening should fail", func() {
			So(errors.Is(err, repository.ErrUnknownStore), ShouldBeTrue)
		})
	})
}
