package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	Items       int           // Number of items in the population
	Comparisons int           // Number of comparisons to sample
	TopN        int           // Number of leaderboard entries to display
	Seed        int64         // RNG seed; 0 draws one from the clock
	Spread      float64       // Std dev of log-strength across the population
	Timeout     time.Duration // Budget for queue drain and recompute
	OutputFile  string        // Output file for sampled comparisons
	Verbose     bool          // Enable verbose logging
}

// Outcome is the JSON record of one sampled comparison.
type Outcome struct {
	ID       string `json:"id"`
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
	TS       string `json:"ts"`
}

// Stats holds simulation statistics.
type Stats struct {
	ItemsGenerated       int
	ComparisonsGenerated int
	ComparisonsAccepted  int
	ComparisonsDuplicate int
	ComparisonsFailed    int
	RecomputeIterations  int
	Converged            bool
	RankAgreement        float64 // fraction of item pairs ordered like their true strengths
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
