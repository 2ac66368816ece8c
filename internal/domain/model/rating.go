package model

// DefaultPercentile is the placeholder position for an item that has not
// been compared yet. It is never reported by the ranking projection.
const DefaultPercentile = 50

// Rating captures the current strength estimate for a single item.
// The zero value is not useful; use NewRating for neutral defaults.
type Rating struct {
	ItemID           string
	Score            float64 // Bradley-Terry strength, always > 0
	Wins             int
	Losses           int
	TotalComparisons int
	Confidence       float64 // 0..1, grows with comparison count
	Percentile       float64 // 0..100 within the scored population
}

// NewRating returns a neutral rating for an item that has not played yet.
// The score starts at the population anchor so that an unplayed item sits
// at the center of the distribution.
func NewRating(itemID string, anchor float64) Rating {
	return Rating{
		ItemID:     itemID,
		Score:      anchor,
		Percentile: DefaultPercentile,
	}
}

// Degenerate reports whether the record is one-sided: the item has only
// ever won or only ever lost. Such estimates are bounded by the score
// floor but carry reduced confidence.
func (r Rating) Degenerate() bool {
	return r.TotalComparisons > 0 && (r.Wins == 0 || r.Losses == 0)
}
