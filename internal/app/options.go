package service

import (
	"github.com/bodi/pairrank/internal/config"
	"github.com/bodi/pairrank/internal/domain/ranking"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the comparison queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the comparison id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the rating store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxLeaderboardLimit caps leaderboard reads.
func WithMaxLeaderboardLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithRecomputeThreshold sets how many incremental updates trigger a full
// recompute. Zero disables the threshold trigger.
func WithRecomputeThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.recomputeThreshold = threshold
		}
	}
}

// WithRecomputeSchedule sets the cron expression for periodic full
// recomputations. Empty disables the scheduler.
func WithRecomputeSchedule(schedule string) Option {
	return func(s *Service) {
		s.recomputeSchedule = schedule
	}
}

// WithEngineOptions forwards options to the rating engine built at Start.
func WithEngineOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithProjectorOptions forwards options to the ranking projector built at
// Start.
func WithProjectorOptions(opts ...ranking.Option) Option {
	return func(s *Service) {
		s.projectorOpts = append(s.projectorOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// OptionsFromConfig translates loaded configuration into service options.
func OptionsFromConfig(cfg *config.Config) []Option {
	tiers := make([]ranking.Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, ranking.Tier{Lower: t.Lower, Label: t.Label})
	}

	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithShardCount(cfg.ShardCount),
		WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		WithRecomputeThreshold(cfg.IncrementalRecomputeThreshold),
		WithRecomputeSchedule(cfg.RecomputeSchedule),
		WithEngineOptions(
			rating.WithTolerance(cfg.ConvergenceTolerance),
			rating.WithMaxIterations(cfg.MaxIterations),
			rating.WithScoreFloor(cfg.ScoreFloor),
			rating.WithAnchor(cfg.NormalizationAnchor),
			rating.WithConfidenceScale(cfg.ConfidenceScale),
		),
		WithProjectorOptions(
			ranking.WithTiers(tiers),
		),
	}
}
