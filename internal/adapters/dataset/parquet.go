package dataset

import (
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/okian/paceline/internal/domain/model"
)

// parallelism passed to the parquet reader and writer.
const parquetParallelism = 4

type sampleParquetRow struct {
	SessionID int64   `parquet:"name=session_id, type=INT64"`
	Timestamp int64   `parquet:"name=timestamp, type=INT64"`
	HeartRate float64 `parquet:"name=heart_rate, type=DOUBLE"`
	Speed     float64 `parquet:"name=speed, type=DOUBLE"`
}

// ParquetLoader reads one session out of a flat parquet file with columns
// session_id, timestamp, heart_rate and speed.
type ParquetLoader struct {
	path      string
	sessionID int64
}

// NewParquetLoader creates a loader for the rows tagged sessionID.
func NewParquetLoader(path string, sessionID int) *ParquetLoader {
	return &ParquetLoader{path: path, sessionID: int64(sessionID)}
}

// Load implements Loader.
func (l *ParquetLoader) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fr, err := local.NewLocalFileReader(l.path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(sampleParquetRow), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer pr.ReadStop()

	rows := make([]sampleParquetRow, int(pr.GetNumRows()))
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrMalformed, err)
	}

	var records []model.Record
	for _, r := range rows {
		if r.SessionID != l.sessionID {
			continue
		}
		records = append(records, model.Record{
			Timestamp: r.Timestamp,
			HeartRate: r.HeartRate,
			Speed:     r.Speed,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rows for session %d in %d rows", ErrSessionNotFound, l.sessionID, len(rows))
	}
	return records, nil
}

// WriteParquet writes sessions as flat snappy-compressed rows.
func WriteParquet(path string, sessions []Session) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), parquetParallelism)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range sessions {
		for _, r := range s.Records {
			row := sampleParquetRow{
				SessionID: s.ID,
				Timestamp: r.Timestamp,
				HeartRate: r.HeartRate,
				Speed:     r.Speed,
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				_ = fw.Close()
				return err
			}
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
