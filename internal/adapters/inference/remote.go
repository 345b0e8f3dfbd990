package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Response bodies larger than this are rejected.
const maxRemoteBody = 1 << 20

type remoteRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type remoteResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
}

// Remote calls a model server that accepts {"instances": [window]} and
// answers {"predictions": [y]} or {"predictions": [[y]]}.
// Remote is safe for concurrent use.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote creates a client for cfg.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: remote.url %q", ErrInvalidManifest, cfg.URL)
	}
	if cfg.TimeoutMS <= 0 {
		return nil, fmt.Errorf("%w: remote.timeout_ms must be > 0", ErrInvalidManifest)
	}
	return &Remote{
		url: u.String(),
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}, nil
}

// Predict implements predictor.Model.
func (r *Remote) Predict(ctx context.Context, input [][]float64) (float64, error) {
	body, err := json.Marshal(remoteRequest{Instances: [][][]float64{input}})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrRemoteStatus, resp.StatusCode)
	}
	return parsePrediction(data)
}

func parsePrediction(data []byte) (float64, error) {
	var out remoteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteResponse, err)
	}
	if len(out.Predictions) == 0 {
		return 0, fmt.Errorf("%w: no predictions", ErrRemoteResponse)
	}

	first := out.Predictions[0]
	var y float64
	if err := json.Unmarshal(first, &y); err == nil {
		return y, nil
	}
	var ys []float64
	if err := json.Unmarshal(first, &ys); err != nil || len(ys) == 0 {
		return 0, fmt.Errorf("%w: prediction %s", ErrRemoteResponse, first)
	}
	return ys[0], nil
}
