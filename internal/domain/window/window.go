// Package window cuts fixed-length trailing windows out of a series and
// turns them into model input rows.
package window

import (
	"fmt"

	"github.com/okian/paceline/internal/domain/model"
	"github.com/okian/paceline/internal/domain/series"
)

// FeatureCount is the width of one input row: speed, heart rate.
const FeatureCount = 2

// EndingAt returns the n samples ending at idx, oldest first. A window that
// would reach before the start of the series fails with
// ErrInsufficientWindow; it is never padded.
func EndingAt(s *series.Series, idx, n int) ([]model.Sample, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}
	if idx < 0 || idx >= s.Len() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", series.ErrIndexOutOfRange, idx, s.Len())
	}
	start := max(0, idx-n+1)
	w, err := s.Slice(start, idx+1)
	if err != nil {
		return nil, err
	}
	if len(w) < n {
		return nil, fmt.Errorf("%w: %d samples available ending at %d, need %d", ErrInsufficientWindow, len(w), idx, n)
	}
	return w, nil
}

// Features returns one (speed, heart_rate) row per sample, in window order.
func Features(w []model.Sample) [][]float64 {
	rows := make([][]float64, len(w))
	for i, s := range w {
		rows[i] = []float64{s.Speed, s.HeartRate}
	}
	return rows
}
