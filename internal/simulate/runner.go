package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	service "github.com/bodi/pairrank/internal/app"
	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/pkg/logger"
)

// File permission constants.
const (
	outputFilePermission = 0600
)

const drainPollInterval = 10 * time.Millisecond

// Run executes the complete simulation: generate a population, push the
// sampled comparisons through the live pipeline, recompute, and verify
// that the hidden ordering was recovered.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not crypto

	logger.Get().Info(ctx, "starting rating simulation",
		logger.Int("items", cfg.Items),
		logger.Int("comparisons", cfg.Comparisons),
		logger.Int("topN", cfg.TopN),
		logger.Int64("seed", seed),
	)

	p := generatePopulation(ctx, cfg, rng, stats)
	comparisons := generateComparisons(ctx, cfg, p, rng, stats)

	// Threshold and schedule are disabled: the run controls exactly when
	// the full recompute happens.
	svc := service.New(
		service.WithQueueSize(cfg.Comparisons+1),
		service.WithRecomputeThreshold(0),
		service.WithRecomputeSchedule(""),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	if err := svc.RegisterItems(ctx, p.items...); err != nil {
		return fmt.Errorf("register items: %w", err)
	}

	if err := submitComparisons(ctx, svc, comparisons, stats); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	if err := waitForDrain(ctx, svc, cfg.Timeout, stats.ComparisonsAccepted); err != nil {
		return err
	}

	res, err := svc.RecomputeNow(ctx)
	if err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}
	stats.RecomputeIterations = res.Iterations
	stats.Converged = res.Converged

	board, err := svc.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	displayLeaderboard(ctx, board, cfg.Verbose)

	if err := verifyResults(ctx, p, res, board, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if err := saveComparisons(ctx, cfg, comparisons); err != nil {
		logger.Get().Warn(ctx, "failed to save comparisons", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return nil
}

// submitComparisons feeds every sampled comparison into the service.
func submitComparisons(ctx context.Context, svc *service.Service, comparisons []model.Comparison, stats *Stats) error {
	for _, c := range comparisons {
		_, err := svc.SubmitComparison(ctx, c)
		switch {
		case err == nil:
			stats.ComparisonsAccepted++
		case errors.Is(err, service.ErrDuplicateComparison):
			stats.ComparisonsDuplicate++
		default:
			stats.ComparisonsFailed++
			logger.Get().Warn(ctx, "comparison rejected",
				logger.String("comparisonID", c.ID),
				logger.Error(err),
			)
		}
	}

	if stats.ComparisonsAccepted == 0 {
		return fmt.Errorf("no comparisons accepted")
	}
	logger.Get().Info(ctx, "comparisons submitted",
		logger.Int("accepted", stats.ComparisonsAccepted),
		logger.Int("duplicate", stats.ComparisonsDuplicate),
		logger.Int("failed", stats.ComparisonsFailed),
	)
	return nil
}

// waitForDrain blocks until every accepted comparison has been applied,
// not just dequeued; a worker can still hold the last one in flight when
// the queue reads empty.
func waitForDrain(ctx context.Context, svc *service.Service, timeout time.Duration, accepted int) error {
	if timeout <= 0 {
		timeout = time.Minute
	}
	deadline := time.Now().Add(timeout)
	for {
		stats := svc.Stats(ctx)
		queued, _ := stats["queueLength"].(int)
		applied, _ := stats["comparisonsRecorded"].(int)
		if queued == 0 && applied == accepted {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%d of %d comparisons applied, %d queued after %s",
				applied, accepted, queued, timeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("drain interrupted: %w", ctx.Err())
		case <-time.After(drainPollInterval):
		}
	}
}

// displayLeaderboard logs the top entries.
func displayLeaderboard(ctx context.Context, board []service.BoardRow, verbose bool) {
	shown := len(board)
	if !verbose && shown > 10 {
		shown = 10
	}
	for _, row := range board[:shown] {
		logger.Get().Info(ctx, "leaderboard entry",
			logger.Int("rank", row.Rank),
			logger.String("itemID", row.ItemID),
			logger.Float64("score", row.Score),
			logger.Float64("percentile", row.Percentile),
			logger.String("tier", row.Tier),
			logger.Float64("trophies", row.Trophies),
		)
	}
}

// saveComparisons writes the sampled comparisons to a JSON file for
// replaying a run.
func saveComparisons(ctx context.Context, cfg *Config, comparisons []model.Comparison) error {
	path := cfg.OutputFile
	if path == "" {
		path = "comparisons_" + time.Now().Format("20060102_150405") + ".json"
	}

	outcomes := make([]Outcome, len(comparisons))
	for i, c := range comparisons {
		outcomes[i] = Outcome{
			ID:       c.ID,
			WinnerID: c.WinnerID,
			LoserID:  c.LoserID,
			TS:       c.Timestamp.Format(time.RFC3339Nano),
		}
	}

	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comparisons: %w", err)
	}
	if err := os.WriteFile(path, data, outputFilePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Get().Info(ctx, "saved comparisons", logger.String("file", path))
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "simulation completed",
		logger.Int("items", stats.ItemsGenerated),
		logger.Int("comparisons", stats.ComparisonsGenerated),
		logger.Int("accepted", stats.ComparisonsAccepted),
		logger.Int("iterations", stats.RecomputeIterations),
		logger.Bool("converged", stats.Converged),
		logger.Float64("rankAgreement", stats.RankAgreement),
		logger.String("duration", stats.Duration.String()),
	)
}
