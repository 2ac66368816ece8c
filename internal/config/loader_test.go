package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	config "github.com/bodi/pairrank/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the documented defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.ConvergenceTolerance, ShouldEqual, 1e-6)
			So(cfg.MaxIterations, ShouldEqual, 200)
			So(cfg.ScoreFloor, ShouldEqual, 1e-4)
			So(cfg.NormalizationAnchor, ShouldEqual, 1.0)
			So(cfg.IncrementalRecomputeThreshold, ShouldEqual, 50)
			So(cfg.RecomputeSchedule, ShouldEqual, "@every 5m")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(len(cfg.Tiers), ShouldEqual, 5)
		})
	})
}

func TestEnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("PAIRRANK_MAX_ITERATIONS", "500")
		t.Setenv("PAIRRANK_LOG_LEVEL", "debug")
		t.Setenv("PAIRRANK_INCREMENTAL_RECOMPUTE_THRESHOLD", "10")

		cfg, err := config.Load(context.Background())

		Convey("Then they take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.MaxIterations, ShouldEqual, 500)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.IncrementalRecomputeThreshold, ShouldEqual, 10)
			// Untouched fields keep their defaults.
			So(cfg.ScoreFloor, ShouldEqual, 1e-4)
		})
	})
}

func TestFileLayer(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "pairrank.yaml")
		yaml := []byte("max_iterations: 321\nrecompute_schedule: \"@every 1m\"\ntiers:\n  - lower: 0\n    label: wood\n  - lower: 1\n    label: stone\n")
		So(os.WriteFile(path, yaml, 0o600), ShouldBeNil)
		t.Setenv("PAIRRANK_CONFIG", path)

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values override defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.MaxIterations, ShouldEqual, 321)
				So(cfg.RecomputeSchedule, ShouldEqual, "@every 1m")
				So(len(cfg.Tiers), ShouldEqual, 2)
				So(cfg.Tiers[1].Label, ShouldEqual, "stone")
			})

			Convey("And env still beats the file", func() {
				t.Setenv("PAIRRANK_MAX_ITERATIONS", "77")
				cfg, err := config.Load(context.Background())
				So(err, ShouldBeNil)
				So(cfg.MaxIterations, ShouldEqual, 77)
			})
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given invalid overrides", t, func() {
		Convey("When the tolerance is non-positive", func() {
			t.Setenv("PAIRRANK_CONVERGENCE_TOLERANCE", "0")
			_, err := config.Load(context.Background())

			Convey("Then loading fails with ErrInvalidConfig", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the score floor is negative", func() {
			t.Setenv("PAIRRANK_SCORE_FLOOR", "-1")
			_, err := config.Load(context.Background())

			Convey("Then loading fails with ErrInvalidConfig", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
