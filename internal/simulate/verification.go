package simulate

import (
	"context"
	"fmt"

	service "github.com/bodi/pairrank/internal/app"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
)

// agreementFloor is the minimum pairwise agreement treated as a recovered
// ranking. Sampling noise keeps perfect agreement out of reach; anything
// near coin-flip level means the estimator failed.
const agreementFloor = 0.6

// verifyResults checks the recovered ranking against the hidden strengths
// and the leaderboard read path against the recompute result.
func verifyResults(ctx context.Context, p *population, res rating.Result, board []service.BoardRow, stats *Stats) error {
	if len(res.Ratings) == 0 {
		return fmt.Errorf("recompute produced no ratings")
	}

	stats.RankAgreement = rankAgreement(p, res)
	logger.Get().Info(ctx, "rank agreement with hidden strengths",
		logger.Float64("agreement", stats.RankAgreement),
	)
	if stats.RankAgreement < agreementFloor {
		return fmt.Errorf("rank agreement %.3f below %.2f", stats.RankAgreement, agreementFloor)
	}

	if err := verifyLeaderboard(res, board); err != nil {
		return err
	}

	logger.Get().Info(ctx, "verification passed")
	return nil
}

// rankAgreement is the fraction of compared item pairs whose estimated
// scores are ordered like their true strengths (ties count as misses).
func rankAgreement(p *population, res rating.Result) float64 {
	compared := make([]string, 0, len(res.Ratings))
	for id, r := range res.Ratings {
		if r.TotalComparisons > 0 {
			compared = append(compared, id)
		}
	}
	if len(compared) < 2 {
		return 0
	}

	agreed, pairs := 0, 0
	for i := 0; i < len(compared); i++ {
		for j := i + 1; j < len(compared); j++ {
			a, b := compared[i], compared[j]
			trueOrder := p.strengths[a] > p.strengths[b]
			estOrder := res.Ratings[a].Score > res.Ratings[b].Score
			if trueOrder == estOrder {
				agreed++
			}
			pairs++
		}
	}
	return float64(agreed) / float64(pairs)
}

// verifyLeaderboard checks that the board is ordered and consistent with
// the recompute snapshot.
func verifyLeaderboard(res rating.Result, board []service.BoardRow) error {
	for i, row := range board {
		if row.Rank != i+1 {
			return fmt.Errorf("leaderboard rank gap at position %d: got rank %d", i, row.Rank)
		}
		if i > 0 && board[i-1].Score < row.Score {
			return fmt.Errorf("leaderboard out of order at position %d: %.6f < %.6f",
				i, board[i-1].Score, row.Score)
		}
		r, ok := res.Ratings[row.ItemID]
		if !ok {
			return fmt.Errorf("leaderboard item %q missing from recompute result", row.ItemID)
		}
		if r.Score != row.Score {
			return fmt.Errorf("leaderboard score for %q diverges from recompute: %.6f != %.6f",
				row.ItemID, row.Score, r.Score)
		}
	}
	return nil
}
