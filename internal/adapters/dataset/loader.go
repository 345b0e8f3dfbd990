// Package dataset loads recorded sessions from disk and turns them into a
// validated sample series. All format sniffing stays behind this boundary.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/paceline/internal/domain/model"
	"github.com/okian/paceline/internal/domain/series"
)

// Loader reads the raw records of one session.
type Loader interface {
	Load(ctx context.Context) ([]model.Record, error)
}

// Session is one recording as written by the converters.
type Session struct {
	ID      int64
	Records []model.Record
}

// Open returns the loader for path, chosen by file extension.
// sessionID selects the session in multi-session formats and is ignored for
// FIT files, which hold a single activity.
func Open(path string, sessionID int) (Loader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return NewJSONLoader(path, sessionID), nil
	case ".parquet":
		return NewParquetLoader(path, sessionID), nil
	case ".fit":
		return NewFITLoader(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Normalize orders records by timestamp, drops rows with missing or
// implausible values and computes origin offsets from the first kept row.
func Normalize(records []model.Record) []model.Sample {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	out := make([]model.Sample, 0, len(sorted))
	for _, r := range sorted {
		if !r.Valid() {
			continue
		}
		out = append(out, model.Sample{
			Timestamp: r.Timestamp,
			HeartRate: r.HeartRate,
			Speed:     r.Speed,
		})
	}
	if len(out) == 0 {
		return out
	}
	first := out[0].Timestamp
	for i := range out {
		out[i].OriginTimestamp = out[i].Timestamp - first
	}
	return out
}

// LoadSeries runs l and builds the series from its normalised records.
func LoadSeries(ctx context.Context, l Loader) (*series.Series, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	s, err := series.New(Normalize(records))
	if err != nil {
		return nil, fmt.Errorf("build series from %d records: %w", len(records), err)
	}
	return s, nil
}
