package predictor

import (
	"fmt"
	"math"
)

// ModelConfig carries the timing parameters a model was trained with.
// All durations are in seconds.
type ModelConfig struct {
	SamplingRate       float64 // seconds per sample
	WindowDuration     float64 // seconds of history consumed per prediction
	PredictionDuration float64 // seconds the prediction looks ahead
}

// WindowSamples returns floor(WindowDuration / SamplingRate).
func (c ModelConfig) WindowSamples() (int, error) {
	if !(c.SamplingRate > 0) {
		return 0, fmt.Errorf("%w: sampling_rate %v must be > 0", ErrInvalidConfiguration, c.SamplingRate)
	}
	n := math.Floor(c.WindowDuration / c.SamplingRate)
	if !(n > 0) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: window of %v samples (window_duration %v / sampling_rate %v)",
			ErrInvalidConfiguration, n, c.WindowDuration, c.SamplingRate)
	}
	return int(n), nil
}

// AdvanceSamples returns max(1, floor(PredictionDuration / SamplingRate)).
func (c ModelConfig) AdvanceSamples() (int, error) {
	if !(c.SamplingRate > 0) {
		return 0, fmt.Errorf("%w: sampling_rate %v must be > 0", ErrInvalidConfiguration, c.SamplingRate)
	}
	n := math.Floor(c.PredictionDuration / c.SamplingRate)
	if math.IsNaN(n) || n < 1 {
		return 1, nil
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: advance of %v samples", ErrInvalidConfiguration, n)
	}
	return int(n), nil
}

// Validate checks everything the service needs to serve predictions.
func (c ModelConfig) Validate() error {
	if !(c.WindowDuration > 0) {
		return fmt.Errorf("%w: window_duration %v must be > 0", ErrInvalidConfiguration, c.WindowDuration)
	}
	if !(c.PredictionDuration > 0) {
		return fmt.Errorf("%w: prediction_duration %v must be > 0", ErrInvalidConfiguration, c.PredictionDuration)
	}
	if _, err := c.WindowSamples(); err != nil {
		return err
	}
	_, err := c.AdvanceSamples()
	return err
}
