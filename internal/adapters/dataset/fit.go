package dataset

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"

	"github.com/okian/paceline/internal/domain/model"
)

// FIT speeds are m/s; sessions are kept in km/h.
const metersPerSecondToKmh = 3.6

// FITLoader reads the record messages of a FIT activity file.
type FITLoader struct {
	path string
}

// NewFITLoader creates a loader for the activity at path.
func NewFITLoader(path string) *FITLoader {
	return &FITLoader{path: path}
}

// Load implements Loader. Records without a usable timestamp are skipped;
// invalid heart rate or speed values become NaN and are dropped later by
// Normalize.
func (l *FITLoader) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode FIT file: %v", ErrMalformed, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: activity FIT expected: %v", ErrMalformed, err)
	}

	records := make([]model.Record, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		records = append(records, model.Record{
			Timestamp: ts.Unix(),
			HeartRate: extractHeartRate(rec),
			Speed:     extractSpeed(rec) * metersPerSecondToKmh,
		})
	}
	return records, nil
}

func extractHeartRate(rec *fit.RecordMsg) float64 {
	if rec.HeartRate == math.MaxUint8 {
		return math.NaN()
	}
	return float64(rec.HeartRate)
}

func extractSpeed(rec *fit.RecordMsg) float64 {
	speed := rec.GetEnhancedSpeedScaled()
	if !math.IsNaN(speed) && !math.IsInf(speed, 0) && speed >= 0 {
		return speed
	}
	speed = rec.GetSpeedScaled()
	if !math.IsNaN(speed) && !math.IsInf(speed, 0) && speed >= 0 {
		return speed
	}
	return math.NaN()
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}
