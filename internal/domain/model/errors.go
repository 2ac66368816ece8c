package model

import "errors"

// Sentinel kinds for comparison validation errors.
var (
	ErrMissingItemID  = errors.New("comparison is missing an item id")
	ErrSelfComparison = errors.New("comparison pairs an item with itself")
)
