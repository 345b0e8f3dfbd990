package service

import (
	"errors"

	"github.com/okian/paceline/internal/domain/predictor"
	"github.com/okian/paceline/internal/domain/series"
	"github.com/okian/paceline/internal/domain/window"
)

// Sentinel kinds for service errors.
var (
	ErrNotInitialized = errors.New("service not initialized")
	ErrInference      = errors.New("inference failed")
	ErrInvalidStep    = errors.New("step must be >= 1")
)

// Machine-readable error codes.
const (
	CodeNotInitialized     = "not_initialized"
	CodeMissingParameter   = "missing_parameter"
	CodeInvalidParameter   = "invalid_parameter"
	CodeIndexOutOfRange    = "index_out_of_range"
	CodeInsufficientWindow = "insufficient_window"
	CodeConfiguration      = "configuration_error"
	CodeInvalidInputShape  = "invalid_input_shape"
	CodeInferenceFailed    = "inference_failed"
	CodeInternal           = "internal_error"
)

// Classify maps an error returned by the service to its code.
// Order matters: the first matching kind wins.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, series.ErrIndexOutOfRange):
		return CodeIndexOutOfRange
	case errors.Is(err, window.ErrInsufficientWindow):
		return CodeInsufficientWindow
	case errors.Is(err, predictor.ErrInvalidConfiguration), errors.Is(err, window.ErrInvalidLength):
		return CodeConfiguration
	case errors.Is(err, predictor.ErrInvalidInputShape):
		return CodeInvalidInputShape
	case errors.Is(err, series.ErrNonFiniteTime), errors.Is(err, ErrInvalidStep):
		return CodeInvalidParameter
	case errors.Is(err, ErrInference):
		return CodeInferenceFailed
	default:
		return CodeInternal
	}
}
