package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PAIRRANK_CONFIG is set
//  3. env (prefix PAIRRANK_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv("PAIRRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PAIRRANK_QUEUE_SIZE, PAIRRANK_MAX_ITERATIONS, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("PAIRRANK_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "pairrank_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MetricsAddr == "":
		return fmt.Errorf("%w: metrics_addr must not be empty", ErrInvalidConfig)
	case c.ConvergenceTolerance <= 0:
		return fmt.Errorf("%w: convergence_tolerance must be positive", ErrInvalidConfig)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidConfig)
	case c.ScoreFloor <= 0:
		return fmt.Errorf("%w: score_floor must be positive", ErrInvalidConfig)
	case c.NormalizationAnchor <= 0:
		return fmt.Errorf("%w: normalization_anchor must be positive", ErrInvalidConfig)
	case c.IncrementalRecomputeThreshold <= 0:
		return fmt.Errorf("%w: incremental_recompute_threshold must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
