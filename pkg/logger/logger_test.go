package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bodi/pairrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello",
					logger.String("item", "photo-1"),
					logger.Int("count", 3),
					logger.Float64("score", 1.25),
					logger.Bool("converged", true),
				)
			}, ShouldNotPanic)
		})

		Convey("Then named loggers derive without affecting the parent", func() {
			named := logger.Named("engine")
			So(named, ShouldNotBeNil)
			So(func() { named.Debug(context.Background(), "sweep done") }, ShouldNotPanic)
		})

		Convey("Then level strings parse case-insensitively", func() {
			So(logger.SetLevelString("DEBUG"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("nope"), ShouldNotBeNil)

			logger.SetLevel(slog.LevelInfo)
		})
	})
}
