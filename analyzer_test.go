package lapdrift

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lucasjlepore/lap-drift/tcx"
)

func testLap(hr []int, dist []float64, totalTime int) tcx.Lap {
	return tcx.Lap{
		File:       "run.tcx",
		Index:      0,
		Ordinal:    3,
		TotalTimeS: totalTime,
		Samples:    evenSamples(hr, dist),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeLapMeasuredSpeed(t *testing.T) {
	lap := testLap([]int{100, 100, 110, 110}, []float64{0, 10, 20, 30}, 30)

	m, err := AnalyzeLap(lap, Config{})
	if err != nil {
		t.Fatalf("AnalyzeLap() error: %v", err)
	}
	if m.Ordinal != 3 || m.File != "run.tcx" {
		t.Fatalf("unexpected identity %s/%d", m.File, m.Ordinal)
	}
	if m.DistanceM != 30 || m.SpeedMps != 1.0 || m.Pace != "26:49" {
		t.Fatalf("unexpected whole-lap speed: dist=%v speed=%v pace=%s", m.DistanceM, m.SpeedMps, m.Pace)
	}
	if m.Duration != 30*time.Second || m.Zone != "UTC" {
		t.Fatalf("unexpected duration %v zone %q", m.Duration, m.Zone)
	}
	if m.AvgHeartRate != 105 || m.SampleCount != 4 {
		t.Fatalf("unexpected avg hr %v / count %d", m.AvgHeartRate, m.SampleCount)
	}
	if !m.Halftime.Equal(lapStart.Add(15 * time.Second)) {
		t.Fatalf("unexpected halftime %v", m.Halftime)
	}

	if m.First.DistanceM != 10 || m.Second.DistanceM != 10 {
		t.Fatalf("unexpected half distances %v / %v", m.First.DistanceM, m.Second.DistanceM)
	}
	if !almostEqual(m.First.SpeedMps, 10.0/15) || !almostEqual(m.Second.SpeedMps, 10.0/15) {
		t.Fatalf("unexpected half speeds %v / %v", m.First.SpeedMps, m.Second.SpeedMps)
	}
	if m.First.AvgHeartRate != 100 || m.Second.AvgHeartRate != 110 {
		t.Fatalf("unexpected half hr %v / %v", m.First.AvgHeartRate, m.Second.AvgHeartRate)
	}
	if m.First.SampleCount+m.Second.SampleCount < m.SampleCount {
		t.Fatalf("half sample counts do not cover the lap")
	}
	if !almostEqual(m.Drift, 100.0/110-1) {
		t.Fatalf("unexpected drift %v", m.Drift)
	}
	if !almostEqual(m.BPMDrift, 0.1) {
		t.Fatalf("unexpected bpm drift %v", m.BPMDrift)
	}
	if &m.Samples[0] != &lap.Samples[0] {
		t.Fatalf("expected metrics to reference the lap samples")
	}
}

func TestAnalyzeLapTreadmillOverridesSpeed(t *testing.T) {
	lap := testLap([]int{120, 125, 130, 135}, []float64{0, 0, 0, 0}, 0)

	m, err := AnalyzeLap(lap, Config{TreadmillPace: 12})
	if err != nil {
		t.Fatalf("AnalyzeLap() error: %v", err)
	}
	want := MetersPerMile / 720
	for name, got := range map[string]float64{
		"lap":    m.SpeedMps,
		"first":  m.First.SpeedMps,
		"second": m.Second.SpeedMps,
	} {
		if !almostEqual(got, want) {
			t.Fatalf("%s speed = %v, want %v", name, got, want)
		}
	}
	if m.Pace != "12:00" || m.First.Pace != "12:00" || m.Second.Pace != "12:00" {
		t.Fatalf("unexpected treadmill paces %s %s %s", m.Pace, m.First.Pace, m.Second.Pace)
	}
	if !m.Treadmill {
		t.Fatalf("expected treadmill flag on metrics")
	}
}

func TestAnalyzeLapDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		lap    tcx.Lap
		metric string
	}{
		{
			name:   "zero first half heart rate",
			lap:    testLap([]int{0, 0, 110, 110}, []float64{0, 10, 20, 30}, 30),
			metric: "1st half avg. BPM",
		},
		{
			name:   "zero total time",
			lap:    testLap([]int{100, 100, 110, 110}, []float64{0, 10, 20, 30}, 0),
			metric: "zero total time",
		},
		{
			name:   "zero first half distance",
			lap:    testLap([]int{100, 100, 110, 110}, []float64{5, 5, 20, 30}, 30),
			metric: "1st/2nd half drift",
		},
		{
			name:   "no samples",
			lap:    tcx.Lap{File: "run.tcx", TotalTimeS: 10},
			metric: "samples",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := AnalyzeLap(tc.lap, Config{})
			if !errors.Is(err, ErrDegenerateMetric) {
				t.Fatalf("expected ErrDegenerateMetric, got %v", err)
			}
			if m != nil {
				t.Fatalf("expected no metrics for degenerate lap")
			}
			var metricErr *MetricError
			if !errors.As(err, &metricErr) || metricErr.File != "run.tcx" {
				t.Fatalf("expected *MetricError with file, got %#v", err)
			}
			if !strings.Contains(metricErr.Metric, tc.metric) {
				t.Fatalf("metric %q does not mention %q", metricErr.Metric, tc.metric)
			}
		})
	}
}

func TestAnalyzeLapLocalTime(t *testing.T) {
	lap := testLap([]int{100, 100, 110, 110}, []float64{0, 10, 20, 30}, 30)
	lap.Coordinates = boston

	m, err := AnalyzeLap(lap, Config{Localizer: &Localizer{Lookup: fixedZone("America/New_York"), Enabled: true}})
	if err != nil {
		t.Fatalf("AnalyzeLap() error: %v", err)
	}
	if m.Zone != "America/New_York" || m.Begin.Location().String() != "America/New_York" {
		t.Fatalf("expected local begin, got %v (%s)", m.Begin, m.Zone)
	}
	utc := lap.Samples[len(lap.Samples)-1].Time.Sub(lap.Samples[0].Time)
	if m.Duration != utc {
		t.Fatalf("local duration %v differs from UTC %v", m.Duration, utc)
	}

	m, err = AnalyzeLap(lap, Config{Localizer: &Localizer{Lookup: fixedZone(""), Enabled: true}})
	if err != nil {
		t.Fatalf("AnalyzeLap() error: %v", err)
	}
	if m.Zone != "UTC" || len(m.Warnings) != 1 || !strings.Contains(m.Warnings[0], "using UTC") {
		t.Fatalf("expected UTC fallback warning, got zone=%q warnings=%v", m.Zone, m.Warnings)
	}
}
