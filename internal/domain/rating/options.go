// Package rating implements the Bradley-Terry strength estimator.
package rating

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTolerance sets the convergence tolerance on the maximum relative
// score change per sweep.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// WithMaxIterations bounds the number of full MM sweeps per recompute.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithScoreFloor sets the minimum positive score. The floor keeps items
// that have only ever lost from collapsing to zero and items that have
// only ever won from pushing the rest of the population there.
func WithScoreFloor(floor float64) Option {
	return func(e *Engine) {
		if floor > 0 {
			e.scoreFloor = floor
		}
	}
}

// WithAnchor sets the normalization anchor for the geometric mean of the
// score vector. Bradley-Terry scores are only defined up to a constant
// factor, so the anchor fixes the scale across runs.
func WithAnchor(anchor float64) Option {
	return func(e *Engine) {
		if anchor > 0 {
			e.anchor = anchor
		}
	}
}

// WithConfidenceScale sets the comparison count at which confidence
// reaches one half.
func WithConfidenceScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.confidenceScale = scale
		}
	}
}
