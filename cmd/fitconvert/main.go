// Command fitconvert turns recorded FIT activities into a session dataset
// the server can load. Each input file becomes one session; the output
// format follows the extension of -out (.parquet or .json).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/paceline/internal/adapters/dataset"
	"github.com/okian/paceline/pkg/logger"
)

var errNoInput = errors.New("no input files")

func main() {
	var (
		out     = flag.String("out", "data/raw_run_data.parquet", "Output dataset (.parquet or .json)")
		firstID = flag.Int("session", 0, "Session id of the first input; later inputs count up")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: fitconvert [options] activity.fit [more.fit ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := context.Background()
	if err := convert(ctx, flag.Args(), *out, *firstID); err != nil {
		logger.Get().Error(ctx, "conversion failed", logger.Error(err))
		os.Exit(1)
	}
}

// convert loads every input with its format's loader and writes them to out
// as sessions firstID, firstID+1, ...
func convert(ctx context.Context, inputs []string, out string, firstID int) error {
	if len(inputs) == 0 {
		return errNoInput
	}
	log := logger.Named("fitconvert")

	sessions := make([]dataset.Session, 0, len(inputs))
	for i, in := range inputs {
		id := firstID + i
		loader, err := dataset.Open(in, id)
		if err != nil {
			return err
		}
		records, err := loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", in, err)
		}
		sessions = append(sessions, dataset.Session{ID: int64(id), Records: records})
		log.Info(ctx, "activity loaded",
			logger.String("path", in),
			logger.Int("session", id),
			logger.Int("records", len(records)))
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".parquet":
		err = dataset.WriteParquet(out, sessions)
	case ".json":
		err = dataset.WriteJSON(out, sessions)
	default:
		err = fmt.Errorf("%w: %q", dataset.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return err
	}

	log.Info(ctx, "dataset written", logger.String("path", out), logger.Int("sessions", len(sessions)))
	return nil
}
