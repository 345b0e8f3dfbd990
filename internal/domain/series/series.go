// Package series holds the immutable, position-indexed sample series the
// service predicts over.
package series

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/paceline/internal/domain/model"
)

// Series is an ordered, read-only sequence of samples. The zero value is not
// usable; build one with New.
type Series struct {
	samples []model.Sample
}

// New validates samples and returns a Series owning a private copy of them.
// Samples must be non-empty, non-decreasing by Timestamp, carry origin
// offsets relative to the first sample, and hold positive heart rate and
// non-negative speed.
func New(samples []model.Sample) (*Series, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}
	first := samples[0].Timestamp
	for i, s := range samples {
		if i > 0 && s.Timestamp < samples[i-1].Timestamp {
			return nil, fmt.Errorf("%w: timestamp %d at %d precedes %d", ErrUnordered, s.Timestamp, i, samples[i-1].Timestamp)
		}
		if s.OriginTimestamp != s.Timestamp-first {
			return nil, fmt.Errorf("%w: sample %d has %d, want %d", ErrInvalidOrigin, i, s.OriginTimestamp, s.Timestamp-first)
		}
		if !(s.HeartRate > 0) || math.IsInf(s.HeartRate, 0) {
			return nil, fmt.Errorf("%w: heart rate %v at %d", ErrInvalidSample, s.HeartRate, i)
		}
		if !(s.Speed >= 0) || math.IsInf(s.Speed, 0) {
			return nil, fmt.Errorf("%w: speed %v at %d", ErrInvalidSample, s.Speed, i)
		}
	}
	owned := make([]model.Sample, len(samples))
	copy(owned, samples)
	return &Series{samples: owned}, nil
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.samples)
}

// At returns the sample at position i.
func (s *Series) At(i int) (model.Sample, error) {
	if i < 0 || i >= len(s.samples) {
		return model.Sample{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.samples))
	}
	return s.samples[i], nil
}

// Slice returns a copy of the samples in [lo, hi). Bounds are never clamped.
func (s *Series) Slice(lo, hi int) ([]model.Sample, error) {
	if lo < 0 || hi > len(s.samples) || lo > hi {
		return nil, fmt.Errorf("%w: [%d, %d) not within [0, %d)", ErrIndexOutOfRange, lo, hi, len(s.samples))
	}
	out := make([]model.Sample, hi-lo)
	copy(out, s.samples[lo:hi])
	return out, nil
}

// Samples returns a copy of the whole series.
func (s *Series) Samples() []model.Sample {
	out := make([]model.Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// NearestByOriginTimestamp returns the index whose origin timestamp is
// closest to t. Ties go to the earliest index, including among samples that
// share a timestamp.
func (s *Series) NearestByOriginTimestamp(t float64) (int, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, ErrNonFiniteTime
	}
	n := len(s.samples)
	// First index whose origin is >= t; origins are non-decreasing.
	right := sort.Search(n, func(i int) bool {
		return float64(s.samples[i].OriginTimestamp) >= t
	})
	if right == 0 {
		return 0, nil
	}
	// Earliest index holding the value just below t.
	below := s.samples[right-1].OriginTimestamp
	left := sort.Search(right, func(i int) bool {
		return s.samples[i].OriginTimestamp >= below
	})
	if right == n {
		return left, nil
	}
	dl := t - float64(below)
	dr := float64(s.samples[right].OriginTimestamp) - t
	if dl <= dr {
		return left, nil
	}
	return right, nil
}
