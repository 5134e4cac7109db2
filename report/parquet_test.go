//go:build !js

package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"
)

func TestMarshalSamplesParquetRoundTrip(t *testing.T) {
	r := testReport(t)
	data, err := r.MarshalSamplesParquet()
	if err != nil {
		t.Fatalf("MarshalSamplesParquet() error: %v", err)
	}

	pr, err := reader.NewParquetReader(parquetbuffer.NewBufferFileFromBytes(data), new(SampleRow), 1)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	got := make([]SampleRow, n)
	if err := pr.Read(&got); err != nil {
		t.Fatalf("read parquet rows: %v", err)
	}
	if diff := cmp.Diff(r.SampleRows(), got); diff != "" {
		t.Fatalf("parquet rows mismatch (-want +got):\n%s", diff)
	}
}
