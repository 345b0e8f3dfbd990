package window

import "errors"

// Sentinel kinds for window errors.
var (
	ErrInsufficientWindow = errors.New("insufficient history for window")
	ErrInvalidLength      = errors.New("window length must be at least 1")
)
