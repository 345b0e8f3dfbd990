// Package types contains common types used across the application
package types

// Prediction is the response body of GET /demo_predict.
type Prediction struct {
	PredictedSpeed                 float64 `json:"predicted_speed"`
	NextIdx                        int     `json:"next_idx"`
	CurrentInputEndOriginTimestamp float64 `json:"current_input_end_origin_timestamp"`
	NextIdxOriginTimestamp         float64 `json:"next_idx_origin_timestamp"`
}

// DataPoint is the response body of GET /demo_data: every field of one sample.
type DataPoint struct {
	Timestamp       int64   `json:"timestamp"`
	OriginTimestamp int64   `json:"origin_timestamp"`
	HeartRate       float64 `json:"heart_rate"`
	Speed           float64 `json:"speed"`
}

// SeriesColumns is the response body of GET /demo_series.
type SeriesColumns struct {
	Step            int       `json:"step"`
	Indices         []int     `json:"indices"`
	OriginTimestamp []int64   `json:"origin_timestamp"`
	Speed           []float64 `json:"speed"`
	HeartRate       []float64 `json:"heart_rate"`
}
