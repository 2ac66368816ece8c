package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/bodi/pairrank/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestComparison(t *testing.T) {
	convey.Convey("Given a Comparison struct", t, func() {
		convey.Convey("When creating a well-formed comparison", func() {
			ts := time.Now()
			cmp := model.Comparison{
				ID:        "cmp-123",
				WinnerID:  "photo-a",
				LoserID:   "photo-b",
				Timestamp: ts,
			}

			convey.Convey("Then it should hold the recorded values", func() {
				convey.So(cmp.WinnerID, convey.ShouldEqual, "photo-a")
				convey.So(cmp.LoserID, convey.ShouldEqual, "photo-b")
				convey.So(cmp.Timestamp, convey.ShouldEqual, ts)
			})

			convey.Convey("Then it should validate cleanly", func() {
				convey.So(cmp.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the winner and loser are the same item", func() {
			cmp := model.Comparison{WinnerID: "photo-a", LoserID: "photo-a"}

			convey.Convey("Then validation should fail with ErrSelfComparison", func() {
				err := cmp.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, model.ErrSelfComparison), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an item id is missing", func() {
			cmp := model.Comparison{WinnerID: "photo-a"}

			convey.Convey("Then validation should fail with ErrMissingItemID", func() {
				err := cmp.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, model.ErrMissingItemID), convey.ShouldBeTrue)
			})
		})
	})
}

func TestRating(t *testing.T) {
	convey.Convey("Given the Rating model", t, func() {
		convey.Convey("When creating a neutral rating", func() {
			r := model.NewRating("photo-a", 1.0)

			convey.Convey("Then it should sit at the anchor with the placeholder percentile", func() {
				convey.So(r.ItemID, convey.ShouldEqual, "photo-a")
				convey.So(r.Score, convey.ShouldEqual, 1.0)
				convey.So(r.Wins, convey.ShouldEqual, 0)
				convey.So(r.Losses, convey.ShouldEqual, 0)
				convey.So(r.Percentile, convey.ShouldEqual, model.DefaultPercentile)
				convey.So(r.Degenerate(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a rating has only wins", func() {
			r := model.Rating{ItemID: "photo-a", Wins: 5, TotalComparisons: 5}

			convey.Convey("Then it should be flagged degenerate", func() {
				convey.So(r.Degenerate(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a rating has both wins and losses", func() {
			r := model.Rating{ItemID: "photo-a", Wins: 3, Losses: 2, TotalComparisons: 5}

			convey.Convey("Then it should not be flagged degenerate", func() {
				convey.So(r.Degenerate(), convey.ShouldBeFalse)
			})
		})
	})
}
