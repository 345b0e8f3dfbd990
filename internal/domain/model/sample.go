// Package model contains domain models passed between layers.
package model

import "math"

// Record is one raw row as produced by a dataset loader, before ordering,
// cleaning and origin normalisation. Missing values are NaN.
type Record struct {
	Timestamp int64   // absolute seconds
	HeartRate float64 // bpm
	Speed     float64 // dataset units (km/h for FIT imports)
}

// Valid reports whether the record can become a Sample.
func (r Record) Valid() bool {
	if math.IsNaN(r.HeartRate) || math.IsInf(r.HeartRate, 0) {
		return false
	}
	if math.IsNaN(r.Speed) || math.IsInf(r.Speed, 0) {
		return false
	}
	return r.HeartRate > 0 && r.Speed >= 0
}

// Sample is one time step of a loaded series.
type Sample struct {
	Timestamp       int64   // absolute seconds
	OriginTimestamp int64   // seconds since the first sample of the series
	HeartRate       float64 // > 0
	Speed           float64 // >= 0
}
