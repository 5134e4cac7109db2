package lapdrift

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasjlepore/lap-drift/tcx"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateMetric reports a lap whose derived ratios cannot be computed,
// typically because of a zero divisor.
var ErrDegenerateMetric = errors.New("degenerate metric")

// Config controls how laps are turned into metrics.
type Config struct {
	// TreadmillPace, in minutes per mile, replaces measured speed for the
	// whole lap and both halves when positive.
	TreadmillPace float64

	// Localizer converts lap boundaries to local time. Nil keeps UTC.
	Localizer *Localizer
}

// Treadmill reports whether measured speed is replaced by a fixed pace.
func (c Config) Treadmill() bool {
	return c.TreadmillPace > 0
}

// MetricError identifies the lap and the metric that could not be derived.
// It unwraps to ErrDegenerateMetric.
type MetricError struct {
	File   string
	Lap    int
	Metric string
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("%s lap %d: %s: %s", e.File, e.Lap, e.Metric, ErrDegenerateMetric)
}

func (e *MetricError) Unwrap() error { return ErrDegenerateMetric }

// HalfMetrics are the metrics recomputed over one half of a lap.
type HalfMetrics struct {
	DistanceM    float64 `json:"distance_m"`
	SpeedMps     float64 `json:"speed_mps"`
	Pace         string  `json:"pace_min_mile"`
	AvgHeartRate float64 `json:"avg_heart_rate_bpm"`
	SpeedPerBPM  float64 `json:"speed_per_bpm"`
	SampleCount  int     `json:"sample_count"`
}

// LapMetrics is the analysis of one lap. It is built once by AnalyzeLap and
// not modified afterwards.
type LapMetrics struct {
	File    string `json:"file"`
	Index   int    `json:"index"`
	Ordinal int    `json:"ordinal"`

	Begin    time.Time     `json:"begin"`
	End      time.Time     `json:"end"`
	Zone     string        `json:"zone"`
	Duration time.Duration `json:"duration"`

	DistanceM    float64   `json:"distance_m"`
	TotalTimeS   int       `json:"total_time_s"`
	SampleCount  int       `json:"sample_count"`
	AvgHeartRate float64   `json:"avg_heart_rate_bpm"`
	SpeedMps     float64   `json:"speed_mps"`
	Pace         string    `json:"pace_min_mile"`
	Treadmill    bool      `json:"treadmill"`
	Halftime     time.Time `json:"halftime"`

	First  HalfMetrics `json:"first_half"`
	Second HalfMetrics `json:"second_half"`

	Drift    float64 `json:"drift"`
	BPMDrift float64 `json:"bpm_drift"`

	// Samples is the lap's own series, shared read-only.
	Samples []tcx.Sample `json:"-"`

	Warnings []string `json:"warnings,omitempty"`
}

// AnalyzeLap derives the lap metrics. A zero divisor or a non-finite ratio
// returns a *MetricError and no metrics.
func AnalyzeLap(lap tcx.Lap, cfg Config) (*LapMetrics, error) {
	degenerate := func(metric string) error {
		return &MetricError{File: lap.File, Lap: lap.Index, Metric: metric}
	}
	if len(lap.Samples) == 0 {
		return nil, degenerate("samples")
	}

	first, last := lap.Samples[0], lap.Samples[len(lap.Samples)-1]
	m := &LapMetrics{
		File:        lap.File,
		Index:       lap.Index,
		Ordinal:     lap.Ordinal,
		DistanceM:   last.DistanceM - first.DistanceM,
		TotalTimeS:  lap.TotalTimeS,
		SampleCount: len(lap.Samples),
		Treadmill:   cfg.Treadmill(),
		Samples:     lap.Samples,
	}

	span, err := cfg.Localizer.Localize(first.Time, last.Time, lap.Coordinates)
	if err != nil {
		m.Warnings = append(m.Warnings, fmt.Sprintf("%s lap %d: %v; using UTC", lap.File, lap.Index, err))
	}
	m.Begin, m.End, m.Zone = span.Begin, span.End, span.Zone
	m.Duration = span.Duration()

	m.AvgHeartRate = stat.Mean(heartRates(lap.Samples), nil)

	if m.Treadmill {
		m.SpeedMps = TreadmillSpeed(cfg.TreadmillPace)
	} else {
		if lap.TotalTimeS == 0 {
			return nil, degenerate("speed (zero total time)")
		}
		m.SpeedMps = m.DistanceM / float64(lap.TotalTimeS)
	}
	m.Pace = FormatPace(m.SpeedMps)

	halves := SplitHalves(lap.Samples)
	m.Halftime = halves.Halftime

	m.First, err = halfMetrics(halves.First, lap.TotalTimeS, cfg)
	if err != nil {
		return nil, degenerate("1st half " + err.Error())
	}
	m.Second, err = halfMetrics(halves.Second, lap.TotalTimeS, cfg)
	if err != nil {
		return nil, degenerate("2nd half " + err.Error())
	}

	if m.First.SpeedPerBPM == 0 {
		return nil, degenerate("1st/2nd half drift (zero 1st half speed/avg. BPM ratio)")
	}
	m.Drift = (m.Second.SpeedPerBPM - m.First.SpeedPerBPM) / m.First.SpeedPerBPM
	m.BPMDrift = (m.Second.AvgHeartRate - m.First.AvgHeartRate) / m.First.AvgHeartRate

	checks := []struct {
		name  string
		value float64
	}{
		{"speed", m.SpeedMps},
		{"avg. BPM", m.AvgHeartRate},
		{"1st/2nd half drift", m.Drift},
		{"1st/2nd half BPM-only drift", m.BPMDrift},
	}
	for _, c := range checks {
		if !isFinite(c.value) {
			return nil, degenerate(c.name + " is not finite")
		}
	}
	return m, nil
}

func halfMetrics(samples []tcx.Sample, totalTimeS int, cfg Config) (HalfMetrics, error) {
	h := HalfMetrics{SampleCount: len(samples)}
	if len(samples) == 0 {
		return h, errors.New("has no samples")
	}
	dist := distances(samples)
	h.DistanceM = floats.Max(dist) - floats.Min(dist)

	if cfg.Treadmill() {
		h.SpeedMps = TreadmillSpeed(cfg.TreadmillPace)
	} else {
		if totalTimeS == 0 {
			return h, errors.New("speed (zero total time)")
		}
		h.SpeedMps = h.DistanceM / (float64(totalTimeS) / 2)
	}
	h.Pace = FormatPace(h.SpeedMps)

	h.AvgHeartRate = stat.Mean(heartRates(samples), nil)
	if h.AvgHeartRate == 0 {
		return h, errors.New("avg. BPM is zero")
	}
	h.SpeedPerBPM = h.SpeedMps / h.AvgHeartRate
	if !isFinite(h.SpeedPerBPM) {
		return h, errors.New("speed/avg. BPM ratio is not finite")
	}
	return h, nil
}

func heartRates(samples []tcx.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s.HeartRate)
	}
	return out
}

func distances(samples []tcx.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.DistanceM
	}
	return out
}
