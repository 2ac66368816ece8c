package simulate

import (
	"fmt"
	"os"

	"github.com/bodi/pairrank/pkg/logger"
)

// SetupLogging initializes logging for a simulation run.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Pairrank Simulation Tool
========================

Generates a synthetic population with hidden strengths, pushes sampled
pairwise comparisons through the rating pipeline, and verifies that the
estimated ranking recovers the hidden ordering.

Usage:
  go run cmd/pairrank-sim/main.go [options]

Options:
  -items int
        Number of items in the population (default 200)
  -comparisons int
        Number of comparisons to sample (default 10000)
  -top int
        Number of leaderboard entries to display (default 50)
  -seed int
        RNG seed for a reproducible run (default: drawn from the clock)
  -spread float
        Std dev of log-strength across the population (default 1.0)
  -timeout duration
        Budget for queue drain (default 1m)
  -output string
        Output file for sampled comparisons (default: comparisons_TIMESTAMP.json)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/pairrank-sim/main.go

  # A reproducible large run
  go run cmd/pairrank-sim/main.go -items 1000 -comparisons 100000 -seed 42

  # Show the full leaderboard
  go run cmd/pairrank-sim/main.go -top 200 -verbose
`)
}
