// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// TierBoundary names a score band. Lower is the inclusive lower bound.
type TierBoundary struct {
	Lower float64 `koanf:"lower"`
	Label string  `koanf:"label"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus scrape listener, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// QueueSize bounds the in-memory comparison queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of comparison workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the comparison id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the rating store.
	ShardCount int `koanf:"shard_count"`

	// MaxLeaderboardLimit caps leaderboard reads.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ConvergenceTolerance stops MM iteration once the largest relative
	// score change per sweep falls below it.
	ConvergenceTolerance float64 `koanf:"convergence_tolerance"`

	// MaxIterations bounds MM sweeps per full recompute.
	MaxIterations int `koanf:"max_iterations"`

	// ScoreFloor is the minimum positive Bradley-Terry score.
	ScoreFloor float64 `koanf:"score_floor"`

	// NormalizationAnchor fixes the geometric mean of the score vector.
	NormalizationAnchor float64 `koanf:"normalization_anchor"`

	// IncrementalRecomputeThreshold forces a full recompute after this
	// many incremental updates.
	IncrementalRecomputeThreshold int `koanf:"incremental_recompute_threshold"`

	// ConfidenceScale is the comparison count at which confidence
	// reaches one half.
	ConfidenceScale float64 `koanf:"confidence_scale"`

	// RecomputeSchedule is a cron expression for periodic full
	// recomputations independent of the update threshold.
	RecomputeSchedule string `koanf:"recompute_schedule"`

	// Tiers maps score bands onto product-facing labels.
	Tiers []TierBoundary `koanf:"tiers"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                      "info",
		MetricsAddr:                   ":9090",
		QueueSize:                     100_000,
		WorkerCount:                   runtime.NumCPU() * 2,
		DedupeSize:                    500_000,
		ShardCount:                    8,
		MaxLeaderboardLimit:           100,
		ConvergenceTolerance:          1e-6,
		MaxIterations:                 200,
		ScoreFloor:                    1e-4,
		NormalizationAnchor:           1.0,
		IncrementalRecomputeThreshold: 50,
		ConfidenceScale:               10,
		RecomputeSchedule:             "@every 5m",
		Tiers: []TierBoundary{
			{Lower: 0.0, Label: "bronze"},
			{Lower: 0.5, Label: "silver"},
			{Lower: 1.0, Label: "gold"},
			{Lower: 2.0, Label: "platinum"},
			{Lower: 4.0, Label: "diamond"},
		},
	}
}
