package config

import (
	"errors"
)

// Sentinel kinds for configuration errors. Callers match with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
