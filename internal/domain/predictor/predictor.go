// Package predictor defines the model contract and the adapter that guards
// its input shape and derives the polling stride.
package predictor

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Model produces a single predicted speed from a window of
// (speed, heart_rate) rows, oldest first. Implementations are treated as
// deterministic for a fixed input.
type Model interface {
	Predict(ctx context.Context, input [][]float64) (float64, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, input [][]float64) (float64, error)

// Predict calls f.
func (f ModelFunc) Predict(ctx context.Context, input [][]float64) (float64, error) {
	return f(ctx, input)
}

// Adapter wraps a Model with a fixed input-shape contract.
type Adapter struct {
	model     Model
	cfg       ModelConfig
	serialize bool
	mu        sync.Mutex
}

// NewAdapter creates an adapter for model under cfg. cfg is not validated
// here; WindowSamples and AdvanceSamples report a bad configuration at use.
func NewAdapter(model Model, cfg ModelConfig, opts ...Option) (*Adapter, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	a := &Adapter{
		model: model,
		cfg:   cfg,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Config returns the model configuration.
func (a *Adapter) Config() ModelConfig {
	return a.cfg
}

// WindowSamples returns the number of rows every input must have.
func (a *Adapter) WindowSamples() (int, error) {
	return a.cfg.WindowSamples()
}

// AdvanceSamples returns the stride between consecutive poll indices.
func (a *Adapter) AdvanceSamples() (int, error) {
	return a.cfg.AdvanceSamples()
}

// Predict checks that input is exactly (WindowSamples, 2) and runs the
// model. A mismatched input never reaches the model.
func (a *Adapter) Predict(ctx context.Context, input [][]float64) (float64, error) {
	n, err := a.WindowSamples()
	if err != nil {
		return 0, err
	}
	if len(input) != n {
		return 0, fmt.Errorf("%w: got (%d, _), want (%d, 2)", ErrInvalidInputShape, len(input), n)
	}
	for i, row := range input {
		if len(row) != 2 {
			return 0, fmt.Errorf("%w: row %d has %d columns, want 2", ErrInvalidInputShape, i, len(row))
		}
	}

	if a.serialize {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	y, err := a.model.Predict(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("model predict: %w", err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOutput, y)
	}
	return y, nil
}
