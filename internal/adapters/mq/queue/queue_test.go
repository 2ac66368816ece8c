package queue_test

import (
	"context"
	"testing"
	"time"

	queue "github.com/bodi/pairrank/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a small bounded queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		Convey("When enqueueing within capacity", func() {
			ok1 := q.Enqueue(ctx, queue.Comparison{ID: "c1", WinnerID: "a", LoserID: "b"})
			ok2 := q.Enqueue(ctx, queue.Comparison{ID: "c2", WinnerID: "b", LoserID: "a"})

			Convey("Then both should be accepted", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And a third should be rejected as full", func() {
				So(q.Enqueue(ctx, queue.Comparison{ID: "c3", WinnerID: "a", LoserID: "b"}), ShouldBeFalse)
			})
		})

		Convey("When dequeueing", func() {
			q.Enqueue(ctx, queue.Comparison{ID: "c1", WinnerID: "a", LoserID: "b"})

			ch := q.Dequeue(ctx)
			select {
			case c := <-ch:
				Convey("Then the queued comparison comes out intact", func() {
					So(c.ID, ShouldEqual, "c1")
					So(c.WinnerID, ShouldEqual, "a")
				})
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for dequeue")
			}
		})

		Convey("When the queue is closed", func() {
			q.Enqueue(ctx, queue.Comparison{ID: "c1", WinnerID: "a", LoserID: "b"})
			So(q.Close(), ShouldBeNil)

			Convey("Then it reports closed and rejects new comparisons", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Comparison{ID: "c2", WinnerID: "a", LoserID: "b"}), ShouldBeFalse)
			})

			Convey("Then queued comparisons still drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				c, open := <-ch
				So(open, ShouldBeTrue)
				So(c.ID, ShouldEqual, "c1")

				_, open = <-ch
				So(open, ShouldBeFalse)
			})

			Convey("Then closing twice is harmless", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the dequeue context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(cancelled)
			cancel()

			Convey("Then the channel closes even though the queue stays open", func() {
				select {
				case _, open := <-ch:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for channel close")
				}
				So(q.IsClosed(), ShouldBeFalse)
			})
		})
	})
}
