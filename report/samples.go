package report

import (
	"errors"
	"time"
)

// ErrParquetUnsupported is returned by MarshalSamplesParquet on platforms
// without the parquet writer.
var ErrParquetUnsupported = errors.New("parquet export is not available in this build")

// SampleRow is one trackpoint of an analyzed lap in the samples export.
type SampleRow struct {
	Lap        int64   `parquet:"name=lap, type=INT64"`
	File       string  `parquet:"name=file, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LapIndex   int64   `parquet:"name=lap_index, type=INT64"`
	TSUTCISO   string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedS   float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	HRBPM      int64   `parquet:"name=hr_bpm, type=INT64"`
	DistanceM  float64 `parquet:"name=distance_m, type=DOUBLE"`
	FirstHalf  bool    `parquet:"name=first_half, type=BOOLEAN"`
	SecondHalf bool    `parquet:"name=second_half, type=BOOLEAN"`
}

// SampleRows flattens every row's samples in report order, tagging each
// sample with the halves it belongs to.
func (r *Report) SampleRows() []SampleRow {
	var out []SampleRow
	for _, m := range r.Rows {
		if len(m.Samples) == 0 {
			continue
		}
		start := m.Samples[0].Time
		for _, s := range m.Samples {
			out = append(out, SampleRow{
				Lap:        int64(m.Ordinal),
				File:       m.File,
				LapIndex:   int64(m.Index),
				TSUTCISO:   s.Time.UTC().Format(time.RFC3339Nano),
				ElapsedS:   s.Time.Sub(start).Seconds(),
				HRBPM:      int64(s.HeartRate),
				DistanceM:  s.DistanceM,
				FirstHalf:  !s.Time.After(m.Halftime),
				SecondHalf: !s.Time.Before(m.Halftime),
			})
		}
	}
	return out
}
