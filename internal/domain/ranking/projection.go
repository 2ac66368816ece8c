// Package ranking projects raw Bradley-Terry scores onto user-facing
// scales: percentiles, named tiers, and the trophy progression shown in
// the product.
package ranking

import (
	"math"
	"sort"

	"github.com/bodi/pairrank/internal/domain/model"
)

// Trophy progression constants. The display scale approximates a normal
// distribution over the ranked population.
const (
	defaultTrophyMean = 1500.0
	defaultTrophyStd  = 430.0
	defaultWinGain    = 35.0
	defaultLossBite   = 25.0
	defaultFadeWidth  = 300.0

	percentileMax = 100.0

	// percentileEpsilon keeps the inverse normal CDF away from its poles
	// for the extreme ranks.
	percentileEpsilon = 1e-9
)

// Projector converts engine output into presentation values.
type Projector struct {
	tiers      []Tier
	trophyMean float64
	trophyStd  float64
	winGain    float64
	lossBite   float64
	fadeWidth  float64
}

// Tier is a named score band. Lower is the inclusive lower bound; the band
// extends to the next tier's bound, the last one to infinity.
type Tier struct {
	Lower float64
	Label string
}

// New constructs a Projector with the default trophy scale and no tiers.
func New(opts ...Option) *Projector {
	p := &Projector{
		trophyMean: defaultTrophyMean,
		trophyStd:  defaultTrophyStd,
		winGain:    defaultWinGain,
		lossBite:   defaultLossBite,
		fadeWidth:  defaultFadeWidth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Percentiles computes the rank position of every compared item on a
// 0-100 scale. Items at sorted position k of N (ascending by score) get
// k/N*100; ties share the midpoint of their tied rank range so arbitrary
// iteration order cannot bias equal scores apart.
//
// Items with no comparisons have no meaningful relative position and are
// left out entirely.
func (p *Projector) Percentiles(ratings map[string]model.Rating) map[string]float64 {
	ranked := make([]model.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.TotalComparisons > 0 {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return map[string]float64{}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	n := float64(len(ranked))
	out := make(map[string]float64, len(ranked))
	for lo := 0; lo < len(ranked); {
		hi := lo
		for hi+1 < len(ranked) && ranked[hi+1].Score == ranked[lo].Score {
			hi++
		}
		// Fractional ranking: midpoint of the 1-indexed tied range.
		mid := float64(lo+hi)/2 + 1
		pct := mid / n * percentileMax
		for i := lo; i <= hi; i++ {
			out[ranked[i].ItemID] = pct
		}
		lo = hi + 1
	}
	return out
}

// AssignTier returns the label of the tier whose band contains score.
// ErrNoTiers is returned when no boundaries are configured, ErrBelowTiers
// when the score falls under the lowest band.
func (p *Projector) AssignTier(score float64) (string, error) {
	if len(p.tiers) == 0 {
		return "", ErrNoTiers
	}
	if score < p.tiers[0].Lower {
		return "", ErrBelowTiers
	}
	label := p.tiers[0].Label
	for _, t := range p.tiers[1:] {
		if score < t.Lower {
			break
		}
		label = t.Label
	}
	return label, nil
}

// TrophyTarget maps a percentile onto the displayed trophy scale by
// inverting a normal distribution centered on the configured mean. The
// extremes are clamped just inside (0, 100) so the inverse CDF stays
// finite.
func (p *Projector) TrophyTarget(percentile float64) float64 {
	q := percentile / percentileMax
	if q < percentileEpsilon {
		q = percentileEpsilon
	}
	if q > 1-percentileEpsilon {
		q = 1 - percentileEpsilon
	}
	z := math.Sqrt2 * math.Erfinv(2*q-1)
	return p.trophyMean + p.trophyStd*z
}

// TrophyStep advances a displayed trophy count after one outcome. Gains
// and penalties fade as the count approaches its target so the display
// tracks the underlying estimate without jumping.
func (p *Projector) TrophyStep(current, target float64, won bool) float64 {
	gap := target - current
	scale := gap / p.fadeWidth
	if scale < 0 {
		scale = 0
	}
	if scale > 1 {
		scale = 1
	}

	next := current
	if won {
		next += p.winGain * scale
	} else {
		next -= p.lossBite * scale
	}
	if next < 0 {
		next = 0
	}
	return next
}
