//go:build js

package report

// MarshalSamplesParquet is not available in js builds.
func (r *Report) MarshalSamplesParquet() ([]byte, error) {
	return nil, ErrParquetUnsupported
}
