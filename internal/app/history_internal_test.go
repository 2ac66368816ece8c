package service

import (
	"context"
	"testing"

	comparisonqueue "github.com/bodi/pairrank/internal/adapters/mq/queue"
	"github.com/bodi/pairrank/internal/adapters/repository"
	"github.com/bodi/pairrank/internal/domain/dedupe"
	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/internal/domain/ranking"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stalledService wires live components but starts no workers, so queued
// comparisons stay queued until the test applies them itself.
func stalledService() *Service {
	s := New()
	s.logger = logger.Get().Named("service")
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.store = repository.NewMemStore()
	s.deduper = dedupe.NewInMemoryDeduper()
	s.queue = comparisonqueue.NewInMemoryQueue()
	s.engine = rating.New()
	s.projector = ranking.New()
	s.started = true
	return s
}

func (s *Service) historyLen() int {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return len(s.history)
}

func TestHistoryFollowsApply(t *testing.T) {
	Convey("Given a comparison sitting in the queue", t, func() {
		s := stalledService()
		defer s.cancel()
		ctx := context.Background()
		So(s.RegisterItems(ctx, "a", "b"), ShouldBeNil)

		_, err := s.SubmitComparison(ctx, model.Comparison{WinnerID: "a", LoserID: "b"})
		So(err, ShouldBeNil)

		Convey("Then it is not yet part of the recompute history", func() {
			So(s.historyLen(), ShouldEqual, 0)

			res, err := s.RecomputeNow(ctx)
			So(err, ShouldBeNil)
			So(res.Ratings["a"].Wins, ShouldEqual, 0)
			So(res.Ratings["b"].Losses, ShouldEqual, 0)
		})

		Convey("When a recompute lands first and a worker applies it after", func() {
			_, err := s.RecomputeNow(ctx)
			So(err, ShouldBeNil)

			dequeueCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			c := <-s.queue.Dequeue(dequeueCtx)

			adapter := &engineAdapter{service: s}
			updated, err := adapter.ApplyComparison(ctx, c)
			So(err, ShouldBeNil)
			So(s.store.Upsert(ctx, updated...), ShouldBeNil)

			Convey("Then the comparison is counted exactly once", func() {
				r, err := s.engine.Rating("a")
				So(err, ShouldBeNil)
				So(r.Wins, ShouldEqual, 1)
				So(r.TotalComparisons, ShouldEqual, 1)

				So(s.historyLen(), ShouldEqual, 1)

				res, err := s.RecomputeNow(ctx)
				So(err, ShouldBeNil)
				So(res.Ratings["a"].Wins, ShouldEqual, 1)
				So(res.Ratings["a"].TotalComparisons, ShouldEqual, 1)
				So(res.Ratings["b"].Losses, ShouldEqual, 1)
			})
		})
	})
}
