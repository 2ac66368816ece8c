package simulate

import (
	"context"
	"math/rand"
	"testing"

	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGeneration(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		ctx := context.Background()
		cfg := &Config{Items: 20, Comparisons: 500}
		stats := &Stats{}
		rng := rand.New(rand.NewSource(42))

		p := generatePopulation(ctx, cfg, rng, stats)

		Convey("Then every item gets a positive strength", func() {
			So(len(p.items), ShouldEqual, 20)
			So(len(p.strengths), ShouldEqual, 20)
			for _, s := range p.strengths {
				So(s, ShouldBeGreaterThan, 0)
			}
		})

		Convey("When comparisons are sampled", func() {
			comparisons := generateComparisons(ctx, cfg, p, rng, stats)

			Convey("Then they are well formed", func() {
				So(len(comparisons), ShouldEqual, 500)
				for _, c := range comparisons {
					So(c.Validate(), ShouldBeNil)
					So(c.ID, ShouldNotBeEmpty)
				}
			})

			Convey("And stronger items win more often than they lose", func() {
				wins := make(map[string]int)
				for _, c := range comparisons {
					wins[c.WinnerID]++
				}
				var strongest, weakest string
				for id, s := range p.strengths {
					if strongest == "" || s > p.strengths[strongest] {
						strongest = id
					}
					if weakest == "" || s < p.strengths[weakest] {
						weakest = id
					}
				}
				So(wins[strongest], ShouldBeGreaterThan, wins[weakest])
			})

			Convey("And the same seed reproduces the same pairs", func() {
				rng2 := rand.New(rand.NewSource(42))
				p2 := generatePopulation(ctx, cfg, rng2, &Stats{})
				again := generateComparisons(ctx, cfg, p2, rng2, &Stats{})
				So(again[0].WinnerID, ShouldEqual, comparisons[0].WinnerID)
				So(again[0].LoserID, ShouldEqual, comparisons[0].LoserID)
			})
		})
	})
}

func TestRankAgreement(t *testing.T) {
	Convey("Given a population with known strengths", t, func() {
		p := &population{
			items:     []string{"a", "b", "c"},
			strengths: map[string]float64{"a": 3, "b": 2, "c": 1},
		}

		Convey("When the estimate matches the true ordering", func() {
			res := rating.Result{Ratings: map[string]model.Rating{
				"a": {ItemID: "a", Score: 3, TotalComparisons: 4},
				"b": {ItemID: "b", Score: 2, TotalComparisons: 4},
				"c": {ItemID: "c", Score: 1, TotalComparisons: 4},
			}}
			So(rankAgreement(p, res), ShouldEqual, 1)
		})

		Convey("When the estimate inverts the ordering", func() {
			res := rating.Result{Ratings: map[string]model.Rating{
				"a": {ItemID: "a", Score: 1, TotalComparisons: 4},
				"b": {ItemID: "b", Score: 2, TotalComparisons: 4},
				"c": {ItemID: "c", Score: 3, TotalComparisons: 4},
			}}
			So(rankAgreement(p, res), ShouldEqual, 0)
		})

		Convey("When uncompared items are present", func() {
			res := rating.Result{Ratings: map[string]model.Rating{
				"a": {ItemID: "a", Score: 3, TotalComparisons: 4},
				"b": {ItemID: "b", Score: 2, TotalComparisons: 4},
				"c": {ItemID: "c", Score: 9, TotalComparisons: 0},
			}}

			Convey("Then they are excluded from the pair count", func() {
				So(rankAgreement(p, res), ShouldEqual, 1)
			})
		})
	})
}
