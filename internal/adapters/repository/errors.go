package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound     = errors.New("item not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
)
