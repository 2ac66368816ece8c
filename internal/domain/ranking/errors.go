package ranking

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrNoTiers    = errors.New("no tier boundaries configured")
	ErrBelowTiers = errors.New("score below the lowest tier boundary")
)
