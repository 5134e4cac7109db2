package lapdrift

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// BuildLapNotes turns one lap's metrics into a short readable summary.
func BuildLapNotes(m *LapMetrics) string {
	if m == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Lap %d: %s #%d\n", m.Ordinal, m.File, m.Index)
	if !m.Begin.IsZero() {
		fmt.Fprintf(&b, "Start: %s (%s)\n", m.Begin.Format("2006-01-02 15:04:05"), m.Zone)
	}
	fmt.Fprintf(
		&b,
		"Duration %s | Distance %.2f mi | Pace %s /mi | HR %.0f avg bpm\n",
		formatDuration(m.Duration),
		m.DistanceM/MetersPerMile,
		m.Pace,
		m.AvgHeartRate,
	)
	if m.Treadmill {
		b.WriteString("Speed fixed by treadmill pace; drift reflects heart rate only.\n")
	}

	fmt.Fprintf(
		&b,
		"1st half: %s /mi at %.0f bpm (%d samples)\n",
		m.First.Pace,
		m.First.AvgHeartRate,
		m.First.SampleCount,
	)
	fmt.Fprintf(
		&b,
		"2nd half: %s /mi at %.0f bpm (%d samples)\n",
		m.Second.Pace,
		m.Second.AvgHeartRate,
		m.Second.SampleCount,
	)
	fmt.Fprintf(&b, "Drift %+.1f%% | BPM-only drift %+.1f%%\n", m.Drift*100, m.BPMDrift*100)

	b.WriteString("- ")
	b.WriteString(driftAssessment(m))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

// A speed/BPM loss under 5% between halves is the usual aerobic-base threshold.
func driftAssessment(m *LapMetrics) string {
	loss := -m.Drift * 100
	switch {
	case m.Duration < 20*time.Minute:
		return "Lap is shorter than 20 minutes; drift is indicative only."
	case loss < 0:
		return "Second half was more efficient than the first; likely still warming up or pacing negatively."
	case loss < 5:
		return "Heart rate stayed coupled to pace; aerobic base looks solid at this effort."
	case loss < 10:
		return "Moderate cardiac drift; this effort sits near the top of the aerobic range."
	default:
		return "Significant cardiac drift; the effort was above aerobic threshold or conditions (heat, hydration) interfered."
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	s := int(math.Round(d.Seconds()))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
