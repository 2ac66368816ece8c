// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Comparison records a single pairwise outcome between two items.
// Comparisons are immutable once recorded; the engine only reads them.
type Comparison struct {
	ID        string    // unique id for idempotency
	WinnerID  string    // item judged better
	LoserID   string    // item judged worse
	Timestamp time.Time // when the judgement was made
}

// Validate checks the structural invariants of a comparison.
func (c Comparison) Validate() error {
	if c.WinnerID == "" || c.LoserID == "" {
		return fmt.Errorf("%w: winner=%q loser=%q", ErrMissingItemID, c.WinnerID, c.LoserID)
	}
	if c.WinnerID == c.LoserID {
		return fmt.Errorf("%w: %q", ErrSelfComparison, c.WinnerID)
	}
	return nil
}
