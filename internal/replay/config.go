package replay

import "time"

// Config holds configuration for a replay run.
type Config struct {
	BaseURL    string        // Base URL of the service
	StartIdx   int           // First idx to poll; negative starts at the first complete window
	MaxSteps   int           // Upper bound on polls; 0 means until next_idx saturates
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Report file; empty skips writing
	Verbose    bool          // Log every step
}

// Prediction mirrors the body of GET /demo_predict.
type Prediction struct {
	PredictedSpeed                 float64 `json:"predicted_speed"`
	NextIdx                        int     `json:"next_idx"`
	CurrentInputEndOriginTimestamp float64 `json:"current_input_end_origin_timestamp"`
	NextIdxOriginTimestamp         float64 `json:"next_idx_origin_timestamp"`
}

// DataPoint mirrors the body of GET /demo_data.
type DataPoint struct {
	Timestamp       int64   `json:"timestamp"`
	OriginTimestamp int64   `json:"origin_timestamp"`
	HeartRate       float64 `json:"heart_rate"`
	Speed           float64 `json:"speed"`
}

// Step is one poll of the replay.
type Step struct {
	Idx            int     `json:"idx"`
	NextIdx        int     `json:"next_idx"`
	TargetOrigin   float64 `json:"target_origin_timestamp"`
	ActualOrigin   int64   `json:"actual_origin_timestamp"`
	PredictedSpeed float64 `json:"predicted_speed"`
	ActualSpeed    float64 `json:"actual_speed"`
	AbsError       float64 `json:"abs_error"`
}

// Report summarises a replay.
type Report struct {
	BaseURL   string        `json:"base_url"`
	StartIdx  int           `json:"start_idx"`
	Steps     []Step        `json:"steps"`
	MAE       float64       `json:"mae"`
	RMSE      float64       `json:"rmse"`
	MaxError  float64       `json:"max_error"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration_ns"`
}
