// Package service loads the sample series and model once and answers the
// prediction, lookup and series queries behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/paceline/internal/adapters/dataset"
	"github.com/okian/paceline/internal/adapters/inference"
	"github.com/okian/paceline/internal/domain/lookup"
	"github.com/okian/paceline/internal/domain/predictor"
	"github.com/okian/paceline/internal/domain/series"
	"github.com/okian/paceline/pkg/logger"
	"github.com/okian/paceline/pkg/metrics"
)

// snapshot is the immutable state published by Start.
type snapshot struct {
	series         *series.Series
	predictor      *predictor.Adapter
	lookup         *lookup.Lookup
	windowSamples  int
	advanceSamples int
}

// Service implements the API dependencies for the inference demo.
type Service struct {
	mu    sync.Mutex
	state atomic.Pointer[snapshot]

	// Sources
	datasetPath string
	sessionID   int
	modelPath   string

	// Preloaded sources, used instead of the paths when set.
	series      *series.Series
	model       predictor.Model
	modelConfig predictor.ModelConfig

	// Configuration
	serialize       bool
	seriesMaxPoints int

	// State
	started  bool
	startErr error

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDatasetPath sets the dataset file and the session to serve.
func WithDatasetPath(path string, sessionID int) Option {
	return func(s *Service) {
		if path != "" {
			s.datasetPath = path
		}
		if sessionID >= 0 {
			s.sessionID = sessionID
		}
	}
}

// WithModelPath sets the model manifest.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithSerializedInference runs at most one model call at a time.
func WithSerializedInference(enabled bool) Option {
	return func(s *Service) {
		s.serialize = enabled
	}
}

// WithSeriesMaxPoints caps the points returned by Series.
func WithSeriesMaxPoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seriesMaxPoints = n
		}
	}
}

// WithSeries serves s instead of loading the dataset.
func WithSeries(s *series.Series) Option {
	return func(svc *Service) {
		svc.series = s
	}
}

// WithModel serves model under cfg instead of loading the manifest.
func WithModel(model predictor.Model, cfg predictor.ModelConfig) Option {
	return func(s *Service) {
		s.model = model
		s.modelConfig = cfg
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		datasetPath:     "data/raw_run_data.json",
		sessionID:       35,
		modelPath:       "model.json",
		seriesMaxPoints: 5000,
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the series and model and publishes them. On failure nothing
// is published and every query reports ErrNotInitialized.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting inference service...")

	snap, err := s.load(ctx)
	if err != nil {
		s.startErr = err
		metrics.UpdateReady(false)
		s.logger.Error(ctx, "service initialization failed", logger.Error(err))
		return err
	}

	s.state.Store(snap)
	s.started = true
	s.startErr = nil

	metrics.UpdateReady(true)
	metrics.UpdateSeriesLength(snap.series.Len())
	metrics.UpdateWindowSamples(snap.windowSamples)
	metrics.UpdateAdvanceSamples(snap.advanceSamples)

	s.logger.Info(ctx, "inference service started",
		logger.Int("samples", snap.series.Len()),
		logger.Int("windowSamples", snap.windowSamples),
		logger.Int("advanceSamples", snap.advanceSamples),
		logger.Bool("serializedInference", s.serialize),
	)

	return nil
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	ser := s.series
	if ser == nil {
		loader, err := dataset.Open(s.datasetPath, s.sessionID)
		if err != nil {
			return nil, err
		}
		ser, err = dataset.LoadSeries(ctx, loader)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s session %d: %w", s.datasetPath, s.sessionID, err)
		}
		s.logger.Info(ctx, "dataset loaded",
			logger.String("path", s.datasetPath),
			logger.Int("session", s.sessionID),
			logger.Int("samples", ser.Len()),
		)
	}

	model, cfg := s.model, s.modelConfig
	if model == nil {
		manifest, err := inference.LoadManifest(s.modelPath)
		if err != nil {
			return nil, err
		}
		model, err = inference.Open(ctx, manifest)
		if err != nil {
			return nil, fmt.Errorf("open model %s: %w", s.modelPath, err)
		}
		cfg = manifest.Config()
		s.logger.Info(ctx, "model loaded",
			logger.String("path", s.modelPath),
			logger.String("backend", manifest.Backend),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	adapter, err := predictor.NewAdapter(model, cfg, predictor.WithSerializedInference(s.serialize))
	if err != nil {
		return nil, err
	}
	ws, err := adapter.WindowSamples()
	if err != nil {
		return nil, err
	}
	adv, err := adapter.AdvanceSamples()
	if err != nil {
		return nil, err
	}
	if ws > ser.Len() {
		s.logger.Warn(ctx, "series is shorter than the model window; every prediction will fail",
			logger.Int("samples", ser.Len()),
			logger.Int("windowSamples", ws),
		)
	}

	return &snapshot{
		series:         ser,
		predictor:      adapter,
		lookup:         lookup.New(ser),
		windowSamples:  ws,
		advanceSamples: adv,
	}, nil
}

// Stop unpublishes the loaded state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping inference service...")

	s.state.Store(nil)
	s.started = false
	metrics.UpdateReady(false)

	s.logger.Info(context.Background(), "inference service stopped")
}

// Ready reports whether queries can be served.
func (s *Service) Ready() bool {
	return s.state.Load() != nil
}

func (s *Service) current() (*snapshot, error) {
	snap := s.state.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	return snap, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started, startErr := s.started, s.startErr
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":            started,
		"ready":              s.Ready(),
		"datasetPath":        s.datasetPath,
		"sessionId":          s.sessionID,
		"modelPath":          s.modelPath,
		"serializeInference": s.serialize,
		"seriesMaxPoints":    s.seriesMaxPoints,
	}
	if startErr != nil {
		stats["startError"] = startErr.Error()
	}

	snap := s.state.Load()
	if snap == nil {
		return stats
	}

	cfg := snap.predictor.Config()
	first, _ := snap.series.At(0)
	last, _ := snap.series.At(snap.series.Len() - 1)
	stats["seriesLength"] = snap.series.Len()
	stats["windowSamples"] = snap.windowSamples
	stats["advanceSamples"] = snap.advanceSamples
	stats["samplingRate"] = cfg.SamplingRate
	stats["windowDuration"] = cfg.WindowDuration
	stats["predictionDuration"] = cfg.PredictionDuration
	stats["firstPredictIdx"] = snap.windowSamples - 1
	stats["lastIdx"] = snap.series.Len() - 1
	stats["firstTimestamp"] = first.Timestamp
	stats["lastOriginTimestamp"] = last.OriginTimestamp
	return stats
}

// StartError returns the error of the last failed Start, if any.
func (s *Service) StartError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startErr
}

// isClientError reports whether err was caused by the request.
func isClientError(err error) bool {
	switch Classify(err) {
	case CodeIndexOutOfRange, CodeInsufficientWindow, CodeInvalidParameter:
		return true
	}
	return errors.Is(err, context.Canceled)
}
