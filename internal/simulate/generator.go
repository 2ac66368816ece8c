package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/pkg/logger"
)

// Default population shape constants.
const (
	defaultSpread = 1.0 // log-normal sigma; spans roughly two orders of magnitude
)

// population is the simulated ground truth: item ids and the hidden
// strengths the estimator is expected to recover.
type population struct {
	items     []string
	strengths map[string]float64
}

// generatePopulation draws item strengths from a log-normal distribution
// so the simulated field has a few standouts and a long tail, like real
// head-to-head data.
func generatePopulation(ctx context.Context, cfg *Config, rng *rand.Rand, stats *Stats) *population {
	spread := cfg.Spread
	if spread <= 0 {
		spread = defaultSpread
	}

	p := &population{
		items:     make([]string, cfg.Items),
		strengths: make(map[string]float64, cfg.Items),
	}
	for i := 0; i < cfg.Items; i++ {
		id := fmt.Sprintf("item-%04d", i)
		p.items[i] = id
		p.strengths[id] = math.Exp(rng.NormFloat64() * spread)
	}
	stats.ItemsGenerated = cfg.Items

	logger.Get().Info(ctx, "generated population",
		logger.Int("items", cfg.Items),
		logger.Float64("spread", spread),
	)
	return p
}

// generateComparisons samples random pairs and decides each winner with
// probability s_w/(s_w+s_l), the same model the estimator assumes.
func generateComparisons(ctx context.Context, cfg *Config, p *population, rng *rand.Rand, stats *Stats) []model.Comparison {
	comparisons := make([]model.Comparison, 0, cfg.Comparisons)
	now := time.Now().UTC()

	for i := 0; i < cfg.Comparisons; i++ {
		a := p.items[rng.Intn(len(p.items))]
		b := p.items[rng.Intn(len(p.items))]
		for b == a {
			b = p.items[rng.Intn(len(p.items))]
		}

		sa, sb := p.strengths[a], p.strengths[b]
		winner, loser := a, b
		if rng.Float64() >= sa/(sa+sb) {
			winner, loser = b, a
		}

		comparisons = append(comparisons, model.Comparison{
			ID:        uuid.NewString(),
			WinnerID:  winner,
			LoserID:   loser,
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		})
	}
	stats.ComparisonsGenerated = len(comparisons)

	logger.Get().Info(ctx, "sampled comparisons",
		logger.Int("comparisons", len(comparisons)),
	)
	return comparisons
}
