// Package inference builds predictor.Model implementations from a model
// manifest: an in-process dense network or a remote JSON endpoint.
package inference

import (
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/paceline/internal/domain/predictor"
)

// Backend names.
const (
	BackendDense  = "dense"
	BackendRemote = "remote"
)

// Manifest describes a trained model. It is usually stored as model.json
// next to the weights.
type Manifest struct {
	SamplingRate       float64       `koanf:"sampling_rate"`
	WindowDuration     float64       `koanf:"window_duration"`
	PredictionDuration float64       `koanf:"prediction_duration"`
	Backend            string        `koanf:"backend"`
	Normalization      Normalization `koanf:"normalization"`
	Layers             []Layer       `koanf:"layers"`
	WeightsPath        string        `koanf:"weights_path"`
	Remote             RemoteConfig  `koanf:"remote"`
}

// Normalization holds the feature and target scaling used during training.
type Normalization struct {
	SpeedMean     float64 `koanf:"speed_mean"`
	SpeedStd      float64 `koanf:"speed_std"`
	HeartRateMean float64 `koanf:"heart_rate_mean"`
	HeartRateStd  float64 `koanf:"heart_rate_std"`
	TargetMean    float64 `koanf:"target_mean"`
	TargetStd     float64 `koanf:"target_std"`
}

// Layer is one fully connected layer: activation(W·x + b).
// Weights has one row per output unit.
type Layer struct {
	Weights    [][]float64 `koanf:"weights"`
	Bias       []float64   `koanf:"bias"`
	Activation string      `koanf:"activation"`
}

// RemoteConfig points at an HTTP model server.
type RemoteConfig struct {
	URL       string `koanf:"url"`
	TimeoutMS int    `koanf:"timeout_ms"`
}

func defaultManifest() Manifest {
	return Manifest{
		Backend: BackendDense,
		Normalization: Normalization{
			SpeedStd:     1,
			HeartRateStd: 1,
			TargetStd:    1,
		},
		Remote: RemoteConfig{TimeoutMS: 2000},
	}
}

// LoadManifest reads the manifest at path. When weights_path is set and the
// manifest carries no layers, layers are read from that file, resolved
// relative to the manifest.
func LoadManifest(path string) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}

	m := defaultManifest()
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if m.WeightsPath != "" && len(m.Layers) == 0 {
		weights := m.WeightsPath
		if !filepath.IsAbs(weights) {
			weights = filepath.Join(filepath.Dir(path), weights)
		}
		wk := koanf.New(".")
		if err := wk.Load(file.Provider(weights), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load weights %s: %w", weights, err)
		}
		if err := wk.UnmarshalWithConf("layers", &m.Layers, koanf.UnmarshalConf{}); err != nil {
			return nil, fmt.Errorf("%w: weights: %v", ErrInvalidManifest, err)
		}
	}

	if err := m.Config().Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Config returns the timing parameters of the model.
func (m *Manifest) Config() predictor.ModelConfig {
	return predictor.ModelConfig{
		SamplingRate:       m.SamplingRate,
		WindowDuration:     m.WindowDuration,
		PredictionDuration: m.PredictionDuration,
	}
}
