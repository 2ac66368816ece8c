// Package rating implements the Bradley-Terry strength estimator.
//
// The model assumes that for items i and j the probability of i winning a
// comparison is score_i / (score_i + score_j). Scores are recovered from a
// comparison history by the minorization-maximization fixed point
//
//	score_i = wins_i / Σ_j n_ij / (score_i + score_j)
//
// where n_ij counts the comparisons i and j played against each other.
// Scores are only defined up to a multiplicative constant, so every sweep
// renormalizes the vector to a configured anchor.
package rating

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bodi/pairrank/internal/domain/model"
)

// Default estimation constants. All of them are overridable via options.
const (
	defaultTolerance       = 1e-6
	defaultMaxIterations   = 200
	defaultScoreFloor      = 1e-4
	defaultAnchor          = 1.0
	defaultConfidenceScale = 10.0

	// incrementalSweeps bounds the local refinement done per live update.
	// Two sweeps keep a single update cheap; accumulated drift is corrected
	// by the periodic full recompute.
	incrementalSweeps = 2
)

// Result carries the outcome of a full recomputation. Non-convergence and
// one-sided records are reported here as flags, never as errors: a usable
// approximate ranking beats no ranking.
type Result struct {
	Ratings    map[string]model.Rating
	Converged  bool
	Iterations int
	// Degenerate lists items that have only ever won or only ever lost.
	// Their scores are pinned by the floor/normalization and their
	// confidence is discounted.
	Degenerate []string
}

// Engine estimates Bradley-Terry scores and keeps the working snapshot
// that incremental updates refine between full recomputations.
type Engine struct {
	tolerance       float64
	maxIterations   int
	scoreFloor      float64
	scoreCeiling    float64
	anchor          float64
	confidenceScale float64

	// mu is the single-writer gate in front of the score snapshot:
	// incremental updates take the write lock, so at most one update is
	// in flight for any item; reads and full recomputes share the read
	// side (RecomputeAll works on private state and only locks to swap
	// the finished snapshot in).
	mu    sync.RWMutex
	items map[string]*itemState
}

// itemState is the engine's mutable per-item record.
type itemState struct {
	score     float64
	wins      int
	losses    int
	opponents map[string]int // head-to-head comparison counts, both directions
}

func (s *itemState) total() int { return s.wins + s.losses }

// New constructs an Engine with default estimation parameters.
func New(opts ...Option) *Engine {
	e := &Engine{
		tolerance:       defaultTolerance,
		maxIterations:   defaultMaxIterations,
		scoreFloor:      defaultScoreFloor,
		anchor:          defaultAnchor,
		confidenceScale: defaultConfidenceScale,
		items:           make(map[string]*itemState),
	}
	for _, opt := range opts {
		opt(e)
	}
	// The ceiling mirrors the floor around the anchor so one-sided items
	// stay bounded on both ends of the scale.
	e.scoreCeiling = e.anchor * e.anchor / e.scoreFloor
	return e
}

// clamp bounds a score to the [floor, ceiling] band.
func (e *Engine) clamp(score float64) float64 {
	if score < e.scoreFloor {
		return e.scoreFloor
	}
	if score > e.scoreCeiling {
		return e.scoreCeiling
	}
	return score
}

// RecomputeAll estimates scores for every registered item from the full
// comparison history. The computation runs on private state and installs
// the finished snapshot atomically, so concurrent calls never observe each
// other's intermediates. Cancelling ctx returns the best estimate so far
// with Converged=false.
//
// Items with no comparisons keep the anchor score and the placeholder
// percentile; they are listed in the result but never iterated.
func (e *Engine) RecomputeAll(ctx context.Context, itemIDs []string, comparisons []model.Comparison) (Result, error) {
	known := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if id == "" {
			return Result{}, fmt.Errorf("%w: empty item id", ErrUnknownItem)
		}
		known[id] = true
	}

	// Validate the whole batch before touching any state. A malformed
	// record rejects the batch; nothing is partially processed.
	for i, c := range comparisons {
		if err := c.Validate(); err != nil {
			return Result{}, fmt.Errorf("comparison %d: %w", i, err)
		}
		if !known[c.WinnerID] {
			return Result{}, fmt.Errorf("comparison %d references %w: %q", i, ErrUnknownItem, c.WinnerID)
		}
		if !known[c.LoserID] {
			return Result{}, fmt.Errorf("comparison %d references %w: %q", i, ErrUnknownItem, c.LoserID)
		}
	}

	state := buildState(itemIDs, comparisons, e.anchor)

	played := make([]string, 0, len(state))
	for id, st := range state {
		if st.total() > 0 {
			played = append(played, id)
		}
	}
	// Deterministic sweep order keeps runs reproducible.
	sort.Strings(played)

	converged := false
	iterations := 0
	prev := make(map[string]float64, len(played))

	for iterations < e.maxIterations {
		select {
		case <-ctx.Done():
			// Best effort: hand back whatever the last sweep produced.
			return e.install(state, converged, iterations), nil
		default:
		}

		for _, id := range played {
			prev[id] = state[id].score
		}

		for _, id := range played {
			st := state[id]
			denom := 0.0
			for opp, n := range st.opponents {
				denom += float64(n) / (st.score + state[opp].score)
			}
			if denom > 0 {
				st.score = float64(st.wins) / denom
			}
			st.score = e.clamp(st.score)
		}

		e.normalize(state, played)
		iterations++

		maxDelta := 0.0
		for _, id := range played {
			delta := math.Abs(state[id].score-prev[id]) / prev[id]
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		if maxDelta < e.tolerance {
			converged = true
			break
		}
	}

	return e.install(state, converged, iterations), nil
}

// ApplyComparison folds one new outcome into the working snapshot,
// refining only the two items involved. Unknown items are rejected; the
// caller registers the population via RecomputeAll (or Register) first.
//
// Updates are serialized through the snapshot's write lock, so lost
// updates on overlapping pairs cannot occur.
func (e *Engine) ApplyComparison(ctx context.Context, winnerID, loserID string) ([]model.Rating, error) {
	if err := (model.Comparison{WinnerID: winnerID, LoserID: loserID}).Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("apply comparison: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	winner, ok := e.items[winnerID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, winnerID)
	}
	loser, ok := e.items[loserID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, loserID)
	}

	winner.wins++
	winner.opponents[loserID]++
	loser.losses++
	loser.opponents[winnerID]++

	for i := 0; i < incrementalSweeps; i++ {
		e.localStep(winner)
		e.localStep(loser)
	}

	return []model.Rating{e.ratingFor(winnerID, winner), e.ratingFor(loserID, loser)}, nil
}

// Register adds items to the working snapshot with neutral state. Already
// known items are left untouched.
func (e *Engine) Register(itemIDs ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range itemIDs {
		if _, ok := e.items[id]; !ok {
			e.items[id] = &itemState{score: e.anchor, opponents: make(map[string]int)}
		}
	}
}

// Rating returns the current estimate for a single item.
func (e *Engine) Rating(itemID string) (model.Rating, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.items[itemID]
	if !ok {
		return model.Rating{}, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	return e.ratingFor(itemID, st), nil
}

// Snapshot returns the current estimate for every known item.
func (e *Engine) Snapshot() map[string]model.Rating {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]model.Rating, len(e.items))
	for id, st := range e.items {
		out[id] = e.ratingFor(id, st)
	}
	return out
}

// Size returns the number of items the engine currently tracks.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items)
}

// localStep runs one MM update for a single item against the current
// scores of its recorded opponents. Caller holds the write lock.
func (e *Engine) localStep(st *itemState) {
	denom := 0.0
	for opp, n := range st.opponents {
		if other, ok := e.items[opp]; ok {
			denom += float64(n) / (st.score + other.score)
		}
	}
	if denom > 0 {
		st.score = float64(st.wins) / denom
	}
	st.score = e.clamp(st.score)
}

// confidence grows asymptotically toward 1 with the comparison count and
// is halved for one-sided records, which the floor keeps bounded but whose
// position in the distribution is poorly identified.
func (e *Engine) confidence(wins, losses int) float64 {
	n := float64(wins + losses)
	if n == 0 {
		return 0
	}
	c := n / (n + e.confidenceScale)
	if wins == 0 || losses == 0 {
		c /= 2
	}
	return c
}

func (e *Engine) ratingFor(id string, st *itemState) model.Rating {
	return model.Rating{
		ItemID:           id,
		Score:            st.score,
		Wins:             st.wins,
		Losses:           st.losses,
		TotalComparisons: st.total(),
		Confidence:       e.confidence(st.wins, st.losses),
		Percentile:       model.DefaultPercentile,
	}
}

// install swaps the freshly computed state in as the working snapshot and
// assembles the result for the caller.
func (e *Engine) install(state map[string]*itemState, converged bool, iterations int) Result {
	res := Result{
		Ratings:    make(map[string]model.Rating, len(state)),
		Converged:  converged,
		Iterations: iterations,
	}
	for id, st := range state {
		r := e.ratingFor(id, st)
		res.Ratings[id] = r
		if r.Degenerate() {
			res.Degenerate = append(res.Degenerate, id)
		}
	}
	sort.Strings(res.Degenerate)

	e.mu.Lock()
	e.items = state
	e.mu.Unlock()
	return res
}

// buildState tallies wins, losses, and head-to-head counts from history.
func buildState(itemIDs []string, comparisons []model.Comparison, anchor float64) map[string]*itemState {
	state := make(map[string]*itemState, len(itemIDs))
	for _, id := range itemIDs {
		state[id] = &itemState{score: anchor, opponents: make(map[string]int)}
	}
	for _, c := range comparisons {
		w, l := state[c.WinnerID], state[c.LoserID]
		w.wins++
		w.opponents[c.LoserID]++
		l.losses++
		l.opponents[c.WinnerID]++
	}
	return state
}

// normalize rescales the played items so their geometric mean sits at the
// anchor. Unplayed items stay at the anchor by construction.
func (e *Engine) normalize(state map[string]*itemState, played []string) {
	if len(played) == 0 {
		return
	}
	logSum := 0.0
	for _, id := range played {
		logSum += math.Log(state[id].score)
	}
	factor := e.anchor / math.Exp(logSum/float64(len(played)))
	for _, id := range played {
		st := state[id]
		st.score = e.clamp(st.score * factor)
	}
}
