package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	repository "github.com/bodi/pairrank/internal/adapters/repository"
	model "github.com/bodi/pairrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func stored(id string, score float64, comparisons int) model.Rating {
	return model.Rating{ItemID: id, Score: score, TotalComparisons: comparisons, Wins: comparisons}
}

func TestMemStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := repository.NewMemStore(repository.WithShardCount(4))
		ctx := context.Background()

		Convey("When upserting a batch of ratings", func() {
			err := store.Upsert(ctx,
				stored("a", 2.5, 10),
				stored("b", 1.0, 8),
				stored("c", 0.4, 6),
				stored("idle", 1.0, 0),
			)
			So(err, ShouldBeNil)

			Convey("Then Count covers everything including uncompared items", func() {
				So(store.Count(ctx), ShouldEqual, 4)
			})

			Convey("Then Get returns stored ratings", func() {
				r, err := store.Get(ctx, "b")
				So(err, ShouldBeNil)
				So(r.Score, ShouldEqual, 1.0)
			})

			Convey("Then TopN ranks compared items best first", func() {
				top, err := store.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].Rating.ItemID, ShouldEqual, "a")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[2].Rating.ItemID, ShouldEqual, "c")
				So(top[2].Rank, ShouldEqual, 3)
			})

			Convey("Then Rank resolves positions, with rank 0 for uncompared items", func() {
				e, err := store.Rank(ctx, "b")
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 2)

				idle, err := store.Rank(ctx, "idle")
				So(err, ShouldBeNil)
				So(idle.Rank, ShouldEqual, 0)
			})

			Convey("Then Snapshot returns every rating", func() {
				snap := store.Snapshot(ctx)
				So(len(snap), ShouldEqual, 4)
				So(snap["a"].Score, ShouldEqual, 2.5)
			})

			Convey("And re-upserting moves an item in the ranking", func() {
				So(store.Upsert(ctx, stored("c", 9.9, 7)), ShouldBeNil)
				top, err := store.TopN(ctx, 1)
				So(err, ShouldBeNil)
				So(top[0].Rating.ItemID, ShouldEqual, "c")
			})
		})

		Convey("When reading an unknown item", func() {
			_, err := store.Get(ctx, "ghost")

			Convey("Then it should report ErrNotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When asking for a non-positive limit", func() {
			_, err := store.TopN(ctx, 0)

			Convey("Then it should report ErrInvalidLimit", func() {
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When equal scores tie", func() {
			So(store.Upsert(ctx, stored("x", 1.0, 2), stored("y", 1.0, 2)), ShouldBeNil)

			Convey("Then ranking falls back to item id for determinism", func() {
				top, err := store.TopN(ctx, 2)
				So(err, ShouldBeNil)
				So(top[0].Rating.ItemID, ShouldEqual, "x")
				So(top[1].Rating.ItemID, ShouldEqual, "y")
			})
		})
	})
}

func TestMemStoreConcurrency(t *testing.T) {
	Convey("Given writers and readers hammering the store", t, func() {
		store := repository.NewMemStore()
		ctx := context.Background()

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					id := fmt.Sprintf("item-%d-%d", g, i)
					_ = store.Upsert(ctx, stored(id, float64(i), i+1))
					_, _ = store.TopN(ctx, 5)
					_ = store.Count(ctx)
				}
			}(g)
		}
		wg.Wait()

		Convey("Then the final state is complete and consistently ranked", func() {
			So(store.Count(ctx), ShouldEqual, 800)
			top, err := store.TopN(ctx, 800)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 800)
			for i := 1; i < len(top); i++ {
				So(top[i].Rating.Score, ShouldBeLessThanOrEqualTo, top[i-1].Rating.Score)
			}
		})
	})
}
