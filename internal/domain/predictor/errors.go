package predictor

import "errors"

// Sentinel kinds for predictor errors.
var (
	ErrInvalidConfiguration = errors.New("invalid model configuration")
	ErrInvalidInputShape    = errors.New("invalid model input shape")
	ErrInvalidOutput        = errors.New("model produced a non-finite prediction")
	ErrNoModel              = errors.New("no model provided")
)
