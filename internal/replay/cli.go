// Package replay drives a running paceline server the way the demo
// front-end does and scores its predictions against the recorded session.
package replay

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/paceline/pkg/logger"
)

// SetupLogging initializes the global logger in the given format.
func SetupLogging(format string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetFormatString(format); err != nil {
		return fmt.Errorf("failed to set log format: %w", err)
	}
	return nil
}

// PrintSummary writes a short human-readable summary of r to w.
func PrintSummary(w io.Writer, r *Report) {
	fmt.Fprintf(w, "steps:     %d (from idx %d)\n", len(r.Steps), r.StartIdx)
	fmt.Fprintf(w, "MAE:       %.4f\n", r.MAE)
	fmt.Fprintf(w, "RMSE:      %.4f\n", r.RMSE)
	fmt.Fprintf(w, "max error: %.4f\n", r.MaxError)
	fmt.Fprintf(w, "duration:  %s\n", r.Duration)
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`paceline replay
===============

Polls a running paceline server from the first complete window to the end of
the session, following next_idx, and reports MAE/RMSE of the predictions
against the recorded speed.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -start int
        First idx to poll; -1 reads it from /stats (default -1)
  -steps int
        Stop after this many polls; 0 runs to the end (default 0)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the full report as JSON to this file
  -log-format string
        text or json (default "text")
  -verbose
        Log every step
  -help
        Show this help message

Examples:
  go run ./cmd/replay -url http://localhost:8080 -output reports/session35.json
  go run ./cmd/replay -start 120 -steps 50 -verbose
`)
}
