package inference

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/paceline/internal/domain/window"
)

type activation func(float64) float64

var activations = map[string]activation{
	"":       func(v float64) float64 { return v },
	"linear": func(v float64) float64 { return v },
	"relu": func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	},
	"tanh":    math.Tanh,
	"sigmoid": func(v float64) float64 { return 1 / (1 + math.Exp(-v)) },
}

type denseLayer struct {
	w   *mat.Dense
	b   *mat.VecDense
	act activation
}

// Dense is an in-process feed-forward network. The window is normalised,
// flattened row by row into (speed, heart_rate, speed, heart_rate, ...),
// passed through the layers and the single output is de-normalised.
// Dense holds no mutable state and is safe for concurrent use.
type Dense struct {
	layers []denseLayer
	norm   Normalization
	inputs int
}

// NewDense builds the network described by m and checks that its input
// width matches the model window and that it has exactly one output.
func NewDense(m *Manifest) (*Dense, error) {
	ws, err := m.Config().WindowSamples()
	if err != nil {
		return nil, err
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("%w: dense backend needs at least one layer", ErrInvalidManifest)
	}
	for name, std := range map[string]float64{
		"speed_std":      m.Normalization.SpeedStd,
		"heart_rate_std": m.Normalization.HeartRateStd,
		"target_std":     m.Normalization.TargetStd,
	} {
		if !(std > 0) || math.IsInf(std, 0) {
			return nil, fmt.Errorf("%w: normalization.%s must be > 0, got %v", ErrInvalidManifest, name, std)
		}
	}

	d := &Dense{norm: m.Normalization, inputs: ws * window.FeatureCount}
	width := d.inputs
	for i, l := range m.Layers {
		act, ok := activations[l.Activation]
		if !ok {
			return nil, fmt.Errorf("%w: layer %d activation %q", ErrInvalidManifest, i, l.Activation)
		}
		rows := len(l.Weights)
		if rows == 0 || len(l.Bias) != rows {
			return nil, fmt.Errorf("%w: layer %d has %d weight rows and %d biases", ErrLayerShape, i, rows, len(l.Bias))
		}
		data := make([]float64, 0, rows*width)
		for r, row := range l.Weights {
			if len(row) != width {
				return nil, fmt.Errorf("%w: layer %d row %d has %d inputs, want %d", ErrLayerShape, i, r, len(row), width)
			}
			data = append(data, row...)
		}
		bias := make([]float64, rows)
		copy(bias, l.Bias)
		d.layers = append(d.layers, denseLayer{
			w:   mat.NewDense(rows, width, data),
			b:   mat.NewVecDense(rows, bias),
			act: act,
		})
		width = rows
	}
	if width != 1 {
		return nil, fmt.Errorf("%w: network has %d outputs, want 1", ErrLayerShape, width)
	}
	return d, nil
}

// Inputs returns the flattened input width.
func (d *Dense) Inputs() int {
	return d.inputs
}

// Predict implements predictor.Model.
func (d *Dense) Predict(ctx context.Context, input [][]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(input)*window.FeatureCount != d.inputs {
		return 0, fmt.Errorf("%w: %d rows for %d inputs", ErrInputSize, len(input), d.inputs)
	}

	flat := make([]float64, 0, d.inputs)
	for i, row := range input {
		if len(row) != window.FeatureCount {
			return 0, fmt.Errorf("%w: row %d has %d features", ErrInputSize, i, len(row))
		}
		flat = append(flat,
			(row[0]-d.norm.SpeedMean)/d.norm.SpeedStd,
			(row[1]-d.norm.HeartRateMean)/d.norm.HeartRateStd,
		)
	}

	x := mat.NewVecDense(d.inputs, flat)
	for _, l := range d.layers {
		rows, _ := l.w.Dims()
		y := mat.NewVecDense(rows, nil)
		y.MulVec(l.w, x)
		y.AddVec(y, l.b)
		for i := 0; i < rows; i++ {
			y.SetVec(i, l.act(y.AtVec(i)))
		}
		x = y
	}
	return x.AtVec(0)*d.norm.TargetStd + d.norm.TargetMean, nil
}
