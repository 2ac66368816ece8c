package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bodi/pairrank/internal/simulate"
)

// Default configuration constants.
const (
	defaultItems       = 200
	defaultComparisons = 10000
	defaultTopN        = 50
	defaultSpread      = 1.0
	defaultTimeout     = time.Minute
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		items       = flag.Int("items", defaultItems, "Number of items in the population")
		comparisons = flag.Int("comparisons", defaultComparisons, "Number of comparisons to sample")
		topN        = flag.Int("top", defaultTopN, "Number of leaderboard entries to display")
		seed        = flag.Int64("seed", 0, "RNG seed for a reproducible run (0 draws from the clock)")
		spread      = flag.Float64("spread", defaultSpread, "Std dev of log-strength across the population")
		timeout     = flag.Duration("timeout", defaultTimeout, "Budget for queue drain")
		outputFile  = flag.String("output", "", "Output file for sampled comparisons (default: comparisons_TIMESTAMP.json)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simulate.Config{
		Items:       *items,
		Comparisons: *comparisons,
		TopN:        *topN,
		Seed:        *seed,
		Spread:      *spread,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
