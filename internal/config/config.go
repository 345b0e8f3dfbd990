// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config with defaults; Load layers file and env on top.
// - Validation errors wrap ErrInvalidConfig and name the offending key.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the recorded sessions (.json, .parquet or .fit).
	DatasetPath string `koanf:"dataset_path"`

	// SessionID selects the session inside multi-session datasets.
	SessionID int `koanf:"session_id"`

	// ModelPath points at the model manifest.
	ModelPath string `koanf:"model_path"`

	// SerializeInference guards the model with a mutex for backends that
	// are not safe for concurrent use.
	SerializeInference bool `koanf:"serialize_inference"`

	// StrictStartup refuses to serve when the dataset or model fails to load.
	// When false the server starts degraded and reports not_initialized.
	StrictStartup bool `koanf:"strict_startup"`

	// CORSAllowedOrigins lists origins allowed by CORS; "*" allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// SeriesMaxPoints caps the points returned by /demo_series.
	SeriesMaxPoints int `koanf:"series_max_points"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8080",
		DatasetPath:        "data/raw_run_data.json",
		SessionID:          35,
		ModelPath:          "model.json",
		SerializeInference: false,
		StrictStartup:      true,
		CORSAllowedOrigins: []string{"*"},
		SeriesMaxPoints:    5000,
	}
	return c
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr", "must not be empty")
	case c.DatasetPath == "":
		return invalid("dataset_path", "must not be empty")
	case c.ModelPath == "":
		return invalid("model_path", "must not be empty")
	case c.SessionID < 0:
		return invalid("session_id", "must be >= 0")
	case c.SeriesMaxPoints < 1:
		return invalid("series_max_points", "must be >= 1")
	}
	return nil
}
