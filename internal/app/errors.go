package service

import "errors"

var (
	// ErrNotStarted is returned when an operation needs a running service.
	ErrNotStarted = errors.New("service not started")

	// ErrDuplicateComparison is returned when a comparison id was already
	// accepted. The original submission stands; the duplicate is dropped.
	ErrDuplicateComparison = errors.New("duplicate comparison")

	// ErrUnknownItem is returned when a comparison references an item that
	// was never registered.
	ErrUnknownItem = errors.New("unknown item")

	// ErrQueueFull is returned when the comparison queue cannot accept
	// more work.
	ErrQueueFull = errors.New("comparison queue full")
)
