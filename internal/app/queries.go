package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/paceline/internal/domain/series"
	"github.com/okian/paceline/internal/domain/types"
	"github.com/okian/paceline/internal/domain/window"
	"github.com/okian/paceline/pkg/logger"
	"github.com/okian/paceline/pkg/metrics"
)

// Predict runs the model on the window ending at idx and tells the caller
// where to poll next.
func (s *Service) Predict(ctx context.Context, idx int) (types.Prediction, error) {
	p, err := s.predict(ctx, idx)
	if err != nil {
		metrics.RecordPredictionError(Classify(err))
		if s.logger != nil && !isClientError(err) {
			s.logger.Error(ctx, "prediction failed", logger.Int("idx", idx), logger.Error(err))
		}
		return types.Prediction{}, err
	}
	metrics.RecordPrediction()
	return p, nil
}

func (s *Service) predict(ctx context.Context, idx int) (types.Prediction, error) {
	snap, err := s.current()
	if err != nil {
		return types.Prediction{}, err
	}
	n := snap.series.Len()
	if idx < 0 || idx >= n {
		return types.Prediction{}, fmt.Errorf("%w: idx %d not in [0, %d)", series.ErrIndexOutOfRange, idx, n)
	}

	ws, err := snap.predictor.WindowSamples()
	if err != nil {
		return types.Prediction{}, err
	}
	w, err := window.EndingAt(snap.series, idx, ws)
	if err != nil {
		return types.Prediction{}, err
	}

	start := time.Now()
	y, err := snap.predictor.Predict(ctx, window.Features(w))
	metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return types.Prediction{}, fmt.Errorf("%w: %w", ErrInference, err)
	}

	next := min(idx+snap.advanceSamples, n-1)
	nextSample, err := snap.series.At(next)
	if err != nil {
		return types.Prediction{}, err
	}

	return types.Prediction{
		PredictedSpeed:                 y,
		NextIdx:                        next,
		CurrentInputEndOriginTimestamp: float64(w[len(w)-1].OriginTimestamp),
		NextIdxOriginTimestamp:         float64(nextSample.OriginTimestamp),
	}, nil
}

// Lookup returns the sample closest to origin offset t and its index.
func (s *Service) Lookup(_ context.Context, t float64) (types.DataPoint, int, error) {
	snap, err := s.current()
	if err != nil {
		return types.DataPoint{}, 0, err
	}
	m, err := snap.lookup.Nearest(t)
	if err != nil {
		return types.DataPoint{}, 0, err
	}
	metrics.RecordLookup()
	return types.DataPoint{
		Timestamp:       m.Sample.Timestamp,
		OriginTimestamp: m.Sample.OriginTimestamp,
		HeartRate:       m.Sample.HeartRate,
		Speed:           m.Sample.Speed,
	}, m.Index, nil
}

// Series returns every step-th sample as columns. The step is raised when
// needed so that no more than the configured maximum of points is returned.
func (s *Service) Series(_ context.Context, step int) (types.SeriesColumns, error) {
	snap, err := s.current()
	if err != nil {
		return types.SeriesColumns{}, err
	}
	if step < 1 {
		return types.SeriesColumns{}, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}

	n := snap.series.Len()
	if minStep := (n-1)/s.seriesMaxPoints + 1; step < minStep {
		step = minStep
	}

	// n >= 1, so neither ceiling division can overflow.
	size := (n-1)/step + 1
	out := types.SeriesColumns{
		Step:            step,
		Indices:         make([]int, 0, size),
		OriginTimestamp: make([]int64, 0, size),
		Speed:           make([]float64, 0, size),
		HeartRate:       make([]float64, 0, size),
	}
	samples := snap.series.Samples()
	for i := 0; i < n; i = nextIndex(i, step, n) {
		out.Indices = append(out.Indices, i)
		out.OriginTimestamp = append(out.OriginTimestamp, samples[i].OriginTimestamp)
		out.Speed = append(out.Speed, samples[i].Speed)
		out.HeartRate = append(out.HeartRate, samples[i].HeartRate)
	}
	return out, nil
}

// nextIndex advances i by step, stopping at n instead of overflowing.
func nextIndex(i, step, n int) int {
	if step >= n-i {
		return n
	}
	return i + step
}
