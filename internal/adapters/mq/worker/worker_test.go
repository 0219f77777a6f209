package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/skillview/internal/adapters/mq/queue"
	worker "github.com/okian/skillview/internal/adapters/mq/worker"
	model "github.com/okian/skillview/internal/domain/model"
	scoring "github.com/okian/skillview/internal/domain/scoring"
	logging "github.com/okian/skillview/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockScorer struct {
	def    scoring.Definition
	scores map[model.ContributionID]float64
	errors map[model.ContributionID]error
}

func newMockScorer(originator string) *mockScorer {
	def, err := scoring.NewDefinition(model.ScoreOriginator(originator), "JAVA", 0)
	if err != nil {
		panic(err)
	}
	return &mockScorer{
		def:    def,
		scores: make(map[model.ContributionID]float64),
		errors: make(map[model.ContributionID]error),
	}
}

func (ms *mockScorer) Definition() scoring.Definition { return ms.def }

func (ms *mockScorer) Score(_ context.Context, c model.Contribution) (float64, error) {
	if err, ok := ms.errors[c.ID]; ok {
		return 0, err
	}
	if score, ok := ms.scores[c.ID]; ok {
		return score, nil
	}
	return float64(len(c.Items)), nil
}

type mockSink struct {
	mu      sync.Mutex
	records []model.DetailedContributionScore
	err     error
}

func (ms *mockSink) Save(_ context.Context, records ...model.DetailedContributionScore) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.err != nil {
		return ms.err
	}
	ms.records = append(ms.records, records...)
	return nil
}

func (ms *mockSink) len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.records)
}

func contribution(id string) model.Contribution {
	return model.Contribution{
		ID:          model.ContributionID(id),
		Project:     "SkillView",
		Contributor: "sjanisch",
		Time:        time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC),
		Items:       []model.ContributionItem{{Path: "A.java"}, {Path: "B.java"}},
	}
}

func TestWorkerProcess(t *testing.T) {
	convey.Convey("Given a worker with two scorers", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		ctx := context.Background()
		lines := newMockScorer("JAVA_LINES")
		files := newMockScorer("JAVA_FILES")
		sink := &mockSink{}
		w := worker.NewWorker([]scoring.Scorer{lines, files}, sink, worker.WithName("test"))

		convey.Convey("When both scorers apply", func() {
			lines.scores["c1"] = 12
			err := w.Process(ctx, contribution("c1"))

			convey.Convey("Then one record per scorer should be saved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.len(), convey.ShouldEqual, 2)
				r := sink.records[0]
				v, ok := r.Value()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 12.0)
				convey.So(r.Originator(), convey.ShouldEqual, model.ScoreOriginator("JAVA_LINES"))
				convey.So(r.ContributionID(), convey.ShouldEqual, model.ContributionID("c1"))
				convey.So(r.Contributor(), convey.ShouldEqual, model.Contributor("sjanisch"))
				convey.So(r.ScoreTime(), convey.ShouldEqual, contribution("c1").Time)
			})
		})

		convey.Convey("When a scorer does not apply", func() {
			files.errors["c1"] = scoring.ErrNoScore
			err := w.Process(ctx, contribution("c1"))

			convey.Convey("Then only the other record should be saved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a scorer fails", func() {
			lines.errors["c1"] = errors.New("parser crashed")
			err := w.Process(ctx, contribution("c1"))

			convey.Convey("Then the failure should be skipped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a scorer is cancelled", func() {
			lines.errors["c1"] = context.Canceled
			err := w.Process(ctx, contribution("c1"))

			convey.Convey("Then the cancellation should be returned", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(sink.len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the sink fails", func() {
			sink.err = errors.New("disk full")
			err := w.Process(ctx, contribution("c1"))

			convey.Convey("Then the error should be returned", func() {
				convey.So(errors.Is(err, worker.ErrSave), convey.ShouldBeTrue)
				convey.So(errors.Is(err, sink.err), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a completion callback is registered", func() {
			var done []model.ContributionID
			notify := worker.WithOnProcessed(func(_ context.Context, id model.ContributionID) {
				done = append(done, id)
			})
			w := worker.NewWorker([]scoring.Scorer{lines, files}, sink, notify)

			convey.Convey("Then it runs once the records are saved", func() {
				convey.So(w.Process(ctx, contribution("c1")), convey.ShouldBeNil)
				convey.So(done, convey.ShouldResemble, []model.ContributionID{"c1"})
			})

			convey.Convey("Then it does not run when saving fails", func() {
				sink.err = errors.New("disk full")
				convey.So(w.Process(ctx, contribution("c1")), convey.ShouldNotBeNil)
				convey.So(len(done), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool reading from a queue", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		sink := &mockSink{}
		pool, err := worker.NewPool(4, q, []scoring.Scorer{newMockScorer("JAVA_LINES")}, sink, worker.WithProgressEvery(10))
		convey.So(err, convey.ShouldBeNil)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When contributions are produced and the queue closed", func() {
			done := make(chan error, 1)
			go func() { done <- pool.Run(ctx) }()
			for i := range 50 {
				convey.So(q.Enqueue(ctx, contribution(fmt.Sprintf("c%d", i))), convey.ShouldBeNil)
			}
			convey.So(q.Close(), convey.ShouldBeNil)
			err := <-done

			convey.Convey("Then every contribution should be scored once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.len(), convey.ShouldEqual, 50)
				convey.So(pool.Scored(), convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the sink fails", func() {
			sink.err = errors.New("disk full")
			convey.So(q.Enqueue(ctx, contribution("c1")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			err := pool.Run(ctx)

			convey.Convey("Then the pool should stop with the error", func() {
				convey.So(errors.Is(err, worker.ErrSave), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := pool.Run(cctx)

			convey.Convey("Then the pool should return the context error", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given no scorers", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		_, err := worker.NewPool(1, queue.NewInMemoryQueue(), nil, &mockSink{})

		convey.Convey("Then the pool should not be created", func() {
			convey.So(errors.Is(err, worker.ErrNoScorers), convey.ShouldBeTrue)
		})
	})
}
