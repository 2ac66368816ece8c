package metrics_test

import (
	"net/http/httptest"
	"testing"

	"github.com/bodi/pairrank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(registry), metrics.WithNamespace("test"))

		Convey("Then construction registers every instrument without panicking", func() {
			So(m, ShouldNotBeNil)
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// Counters report nothing until first increment; gauges and
			// histograms register immediately.
			So(len(families), ShouldBeGreaterThan, 0)
		})

		Convey("When registering the same namespace twice on one registry", func() {
			Convey("Then it should panic on duplicate registration", func() {
				So(func() {
					metrics.NewManager(metrics.WithRegistry(registry), metrics.WithNamespace("test"))
				}, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the package-level recorder functions", t, func() {
		Convey("When recording a mix of events", func() {
			metrics.RecordComparisonAccepted()
			metrics.RecordComparisonDuplicate()
			metrics.RecordComparisonRejected()
			metrics.RecordQueueEnqueue()
			metrics.RecordQueueDequeue()
			metrics.UpdateQueueSize(7)
			metrics.UpdateQueueCapacity(100)
			metrics.UpdateQueueUtilization(0.07)
			metrics.UpdateWorkerCount(4)
			metrics.RecordWorkerLatency(1.5)
			metrics.RecordRecompute(0.25, 42, false)
			metrics.RecordIncrementalUpdate()
			metrics.UpdateUpdatesSinceRecompute(3)
			metrics.UpdateDegenerateItems(2)
			metrics.UpdateItemsTracked(120)
			metrics.RecordSnapshotRebuild(0.8)

			Convey("Then the shared registry gathers them all", func() {
				families, err := metrics.GetRegistry().Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["pairrank_rating_comparisons_accepted_total"], ShouldBeTrue)
				So(names["pairrank_rating_recompute_nonconverged_total"], ShouldBeTrue)
				So(names["pairrank_rating_items_tracked"], ShouldBeTrue)
			})

			Convey("Then the scrape handler serves them", func() {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest("GET", "/metrics", nil)
				metrics.Handler().ServeHTTP(rec, req)
				So(rec.Code, ShouldEqual, 200)
				So(rec.Body.String(), ShouldContainSubstring, "pairrank_rating_worker_count")
			})
		})
	})
}
