package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/paceline/internal/replay"
)

// Default configuration constants.
const (
	defaultTimeout       = 10 * time.Second
	defaultReplayTimeout = 30 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		startIdx   = flag.Int("start", -1, "First idx to poll; -1 reads it from /stats")
		maxSteps   = flag.Int("steps", 0, "Stop after this many polls; 0 runs to the end")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the full report as JSON to this file")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every step")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFormat); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultReplayTimeout)
	defer cancel()

	config := &replay.Config{
		BaseURL:    *baseURL,
		StartIdx:   *startIdx,
		MaxSteps:   *maxSteps,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	report, err := replay.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	replay.PrintSummary(os.Stdout, report)
}
