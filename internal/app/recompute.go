package service

import (
	"context"
	"time"

	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
	"github.com/bodi/pairrank/pkg/metrics"
)

// RecomputeNow rebuilds every score from the full comparison history and
// refreshes the store, percentiles included. Recomputes are serialized;
// a call made while one is in flight waits its turn.
//
// Incremental updates keep flowing while the estimation runs: the engine
// works on private state and swaps the result in atomically, and the next
// threshold or scheduled run folds in whatever landed in between.
func (s *Service) RecomputeNow(ctx context.Context) (rating.Result, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return rating.Result{}, ErrNotStarted
	}
	engine, projector, store := s.engine, s.projector, s.store
	s.mu.RUnlock()

	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	s.histMu.Lock()
	items := make([]string, len(s.items))
	copy(items, s.items)
	history := make([]model.Comparison, len(s.history))
	copy(history, s.history)
	s.histMu.Unlock()

	start := time.Now()
	res, err := engine.RecomputeAll(ctx, items, history)
	if err != nil {
		return rating.Result{}, err
	}

	percentiles := projector.Percentiles(res.Ratings)
	updated := make([]model.Rating, 0, len(res.Ratings))
	for id, r := range res.Ratings {
		if pct, ok := percentiles[id]; ok {
			r.Percentile = pct
		}
		updated = append(updated, r)
	}
	if err := store.Upsert(ctx, updated...); err != nil {
		return res, err
	}

	s.pending.Store(0)
	metrics.UpdateUpdatesSinceRecompute(0)
	metrics.RecordRecompute(time.Since(start).Seconds(), res.Iterations, res.Converged)
	metrics.UpdateDegenerateItems(len(res.Degenerate))

	if !res.Converged {
		s.logger.Warn(ctx, "recompute stopped before convergence",
			logger.Int("iterations", res.Iterations),
			logger.Int("degenerateItems", len(res.Degenerate)),
		)
	} else {
		s.logger.Info(ctx, "recompute finished",
			logger.Int("iterations", res.Iterations),
			logger.Int("items", len(res.Ratings)),
			logger.Float64("durationSeconds", time.Since(start).Seconds()),
		)
	}
	return res, nil
}

// noteIncrementalUpdate advances the drift counter and kicks off a full
// recompute once the threshold is crossed. Only the crossing update
// launches the run, so a burst cannot pile up goroutines.
func (s *Service) noteIncrementalUpdate() {
	n := s.pending.Add(1)
	metrics.UpdateUpdatesSinceRecompute(int(n))

	if s.recomputeThreshold > 0 && int(n) == s.recomputeThreshold {
		go func() {
			if _, err := s.RecomputeNow(s.runCtx); err != nil {
				s.logger.Error(s.runCtx, "threshold recompute failed", logger.Error(err))
			}
		}()
	}
}

// scheduledRecompute is the cron entry point.
func (s *Service) scheduledRecompute() {
	if _, err := s.RecomputeNow(s.runCtx); err != nil {
		s.logger.Error(s.runCtx, "scheduled recompute failed", logger.Error(err))
	}
}
