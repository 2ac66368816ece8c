package ranking

import "sort"

// Option applies a configuration option to the Projector.
type Option func(*Projector)

// WithTiers sets the tier boundaries. Boundaries are sorted by lower
// bound; tier semantics are a product decision, so nothing is hardcoded.
func WithTiers(tiers []Tier) Option {
	return func(p *Projector) {
		sorted := make([]Tier, len(tiers))
		copy(sorted, tiers)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })
		p.tiers = sorted
	}
}

// WithTrophyScale sets the mean and spread of the displayed trophy
// distribution.
func WithTrophyScale(mean, std float64) Option {
	return func(p *Projector) {
		if std > 0 {
			p.trophyMean = mean
			p.trophyStd = std
		}
	}
}

// WithTrophyStepSizes sets the per-outcome gain and penalty before fading.
func WithTrophyStepSizes(winGain, lossPenalty float64) Option {
	return func(p *Projector) {
		if winGain > 0 && lossPenalty > 0 {
			p.winGain = winGain
			p.lossBite = lossPenalty
		}
	}
}

// WithFadeWidth sets how wide the approach zone around the trophy target
// is; steps shrink linearly inside it.
func WithFadeWidth(width float64) Option {
	return func(p *Projector) {
		if width > 0 {
			p.fadeWidth = width
		}
	}
}
