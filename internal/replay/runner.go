package replay

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/paceline/pkg/logger"
)

// Run polls /demo_predict the way the demo front-end does: start at the
// first complete window, follow next_idx until it stops advancing, and
// compare every prediction with the sample at next_idx_origin_timestamp.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("replay")
	client := newHTTPClient(config.Timeout)
	report := &Report{BaseURL: config.BaseURL, StartTime: time.Now()}

	log.Info(ctx, "starting replay",
		logger.String("baseURL", config.BaseURL),
		logger.Int("maxSteps", config.MaxSteps),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	idx := config.StartIdx
	if idx < 0 {
		first, err := firstPredictIdx(ctx, client, config.BaseURL)
		if err != nil {
			return nil, err
		}
		idx = first
	}
	report.StartIdx = idx

	for config.MaxSteps <= 0 || len(report.Steps) < config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, err := poll(ctx, client, config.BaseURL, idx)
		if err != nil {
			return nil, fmt.Errorf("poll idx %d: %w", idx, err)
		}
		report.Steps = append(report.Steps, step)
		if config.Verbose {
			log.Info(ctx, "step",
				logger.Int("idx", step.Idx),
				logger.Float64("predicted", step.PredictedSpeed),
				logger.Float64("actual", step.ActualSpeed))
		}
		if step.NextIdx <= idx {
			break
		}
		idx = step.NextIdx
	}

	summarize(report)
	report.Duration = time.Since(report.StartTime)

	log.Info(ctx, "replay completed",
		logger.Int("steps", len(report.Steps)),
		logger.Float64("mae", report.MAE),
		logger.Float64("rmse", report.RMSE),
		logger.Duration("duration", report.Duration))

	if config.OutputFile != "" {
		if err := saveReport(config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	return report, nil
}

func poll(ctx context.Context, client *HTTPClient, baseURL string, idx int) (Step, error) {
	var p Prediction
	q := url.Values{"idx": {strconv.Itoa(idx)}}
	if err := client.getJSON(ctx, baseURL+"/demo_predict?"+q.Encode(), &p); err != nil {
		return Step{}, err
	}

	var actual DataPoint
	q = url.Values{"t": {strconv.FormatFloat(p.NextIdxOriginTimestamp, 'f', -1, 64)}}
	if err := client.getJSON(ctx, baseURL+"/demo_data?"+q.Encode(), &actual); err != nil {
		return Step{}, err
	}

	return Step{
		Idx:            idx,
		NextIdx:        p.NextIdx,
		TargetOrigin:   p.NextIdxOriginTimestamp,
		ActualOrigin:   actual.OriginTimestamp,
		PredictedSpeed: p.PredictedSpeed,
		ActualSpeed:    actual.Speed,
		AbsError:       math.Abs(p.PredictedSpeed - actual.Speed),
	}, nil
}

// summarize fills MAE, RMSE and the largest absolute error.
func summarize(r *Report) {
	if len(r.Steps) == 0 {
		return
	}
	abs := make([]float64, len(r.Steps))
	sq := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		abs[i] = s.AbsError
		sq[i] = s.AbsError * s.AbsError
		r.MaxError = math.Max(r.MaxError, s.AbsError)
	}
	r.MAE = stat.Mean(abs, nil)
	r.RMSE = math.Sqrt(stat.Mean(sq, nil))
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// firstPredictIdx reads the first idx with a complete window from /stats.
func firstPredictIdx(ctx context.Context, client *HTTPClient, baseURL string) (int, error) {
	var stats struct {
		Ready           bool `json:"ready"`
		FirstPredictIdx *int `json:"firstPredictIdx"`
	}
	if err := client.getJSON(ctx, baseURL+"/stats", &stats); err != nil {
		return 0, fmt.Errorf("read stats: %w", err)
	}
	if !stats.Ready || stats.FirstPredictIdx == nil {
		return 0, ErrNotReady
	}
	return *stats.FirstPredictIdx, nil
}
