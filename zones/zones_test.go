package zones

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lucasjlepore/lap-drift/internal/testutil"
	"github.com/lucasjlepore/lap-drift/tcx"
)

func TestBinRightInclusive(t *testing.T) {
	hr := []int{0, 100, 101, 123, 124, 136, 150, 154, 155, 300, 301}

	d, err := Bin(hr, DefaultEdges)
	if err != nil {
		t.Fatalf("Bin() error: %v", err)
	}
	counts := make([]int, len(d.Zones))
	for i, z := range d.Zones {
		counts[i] = z.Count
	}
	// 0 and 301 fall outside (0, 300].
	if diff := cmp.Diff([]int{1, 2, 2, 0, 2, 2}, counts); diff != "" {
		t.Fatalf("zone counts mismatch (-want +got):\n%s", diff)
	}
	if d.Total != 9 || d.OutOfRange != 2 {
		t.Fatalf("unexpected totals: total=%d out=%d", d.Total, d.OutOfRange)
	}

	sum := 0.0
	for _, z := range d.Zones {
		sum += z.Fraction
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Fatalf("fractions sum to %v", sum)
	}
	if d.Zones[0].Name != "Z0" || d.Zones[5].Name != "Z5" {
		t.Fatalf("unexpected zone names %s..%s", d.Zones[0].Name, d.Zones[5].Name)
	}
}

func TestBinEmpty(t *testing.T) {
	d, err := Bin(nil, DefaultEdges)
	if err != nil {
		t.Fatalf("Bin() error: %v", err)
	}
	for _, z := range d.Zones {
		if z.Fraction != 0 {
			t.Fatalf("expected zero fractions, got %+v", z)
		}
	}
}

func TestParseEdges(t *testing.T) {
	got, err := ParseEdges(" 0, 120 ,150,220")
	if err != nil {
		t.Fatalf("ParseEdges() error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 120, 150, 220}, got); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "100", "0,abc", "0,150,120", "0,100,100"} {
		if _, err := ParseEdges(bad); !errors.Is(err, ErrInvalidEdges) {
			t.Fatalf("ParseEdges(%q): expected ErrInvalidEdges, got %v", bad, err)
		}
	}
}

func TestHeartRatesFromParsedFiles(t *testing.T) {
	doc := testutil.Document(testutil.Lap("10", "10", true,
		testutil.TP("2024-03-02T10:00:00Z", 99, 0),
		testutil.TP("2024-03-02T10:00:01Z", 130, 1),
	))
	f, err := tcx.Parse("z.tcx", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if diff := cmp.Diff([]int{99, 130}, HeartRates(f)); diff != "" {
		t.Fatalf("heart rates mismatch (-want +got):\n%s", diff)
	}
}

func TestDistributionWriteCSV(t *testing.T) {
	d, err := Bin([]int{110, 110, 130, 200}, []int{100, 120, 220})
	if err != nil {
		t.Fatalf("Bin() error: %v", err)
	}
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf, true); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	want := "zone,low_bpm,high_bpm,samples,fraction\nZ0,100,120,2,0.5\nZ1,120,220,2,0.5\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
