package rating

import "errors"

// Sentinel kinds for estimation errors. These allow errors.Is/As from callers.
var (
	ErrUnknownItem = errors.New("unknown item")
)
