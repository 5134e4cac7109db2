// Package report renders lap metrics as tables, spreadsheets, charts and
// columnar sample exports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/tcx"
)

// Mode selects which projection of the lap metrics is rendered.
type Mode int

const (
	Summary Mode = iota
	Detailed
)

func (m Mode) String() string {
	if m == Detailed {
		return "detailed"
	}
	return "summary"
}

// IndexLabel heads the lap ordinal column when a header row is written.
const IndexLabel = "lap"

// SamplesColumn holds the embedded sample series in detailed output.
const SamplesColumn = "Trackpoints"

// Report is the ordered list of analyzed laps. Rows keep insertion order.
type Report struct {
	Rows []*lapdrift.LapMetrics
}

// Add appends one lap to the report.
func (r *Report) Add(m *lapdrift.LapMetrics) {
	r.Rows = append(r.Rows, m)
}

// Len returns the number of rows.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

type column struct {
	name  string
	value func(m *lapdrift.LapMetrics) any
}

var summaryColumns = []column{
	{"Filename", func(m *lapdrift.LapMetrics) any { return m.File }},
	{"Beginning time", func(m *lapdrift.LapMetrics) any { return m.Begin }},
	{"End time", func(m *lapdrift.LapMetrics) any { return m.End }},
	{"Duration", func(m *lapdrift.LapMetrics) any { return m.Duration }},
	{"1st/2nd half drift", func(m *lapdrift.LapMetrics) any { return m.Drift }},
	{"Avg. BPM", func(m *lapdrift.LapMetrics) any { return m.AvgHeartRate }},
	{"1st half avg. BPM", func(m *lapdrift.LapMetrics) any { return m.First.AvgHeartRate }},
	{"2nd half avg. BPM", func(m *lapdrift.LapMetrics) any { return m.Second.AvgHeartRate }},
	{"1st/2nd half BPM-only drift", func(m *lapdrift.LapMetrics) any { return m.BPMDrift }},
}

var detailedColumns = []column{
	{"Filename", func(m *lapdrift.LapMetrics) any { return m.File }},
	{"Beginning time", func(m *lapdrift.LapMetrics) any { return m.Begin }},
	{"End time", func(m *lapdrift.LapMetrics) any { return m.End }},
	{"Duration", func(m *lapdrift.LapMetrics) any { return m.Duration }},
	{"Time zone", func(m *lapdrift.LapMetrics) any { return m.Zone }},
	{"Total distance", func(m *lapdrift.LapMetrics) any { return m.DistanceM }},
	{"# Trackpoints", func(m *lapdrift.LapMetrics) any { return m.SampleCount }},
	{"Total time", func(m *lapdrift.LapMetrics) any { return m.TotalTimeS }},
	{"Avg. BPM", func(m *lapdrift.LapMetrics) any { return m.AvgHeartRate }},
	{"Speed (m/s)", func(m *lapdrift.LapMetrics) any { return m.SpeedMps }},
	{"Pace (min:mi)", func(m *lapdrift.LapMetrics) any { return m.Pace }},
	{SamplesColumn, func(m *lapdrift.LapMetrics) any { return m.Samples }},
	{"Halftime", func(m *lapdrift.LapMetrics) any { return m.Halftime }},
	{"1st half distance", func(m *lapdrift.LapMetrics) any { return m.First.DistanceM }},
	{"1st half speed (m/s)", func(m *lapdrift.LapMetrics) any { return m.First.SpeedMps }},
	{"1st half pace (min:mi)", func(m *lapdrift.LapMetrics) any { return m.First.Pace }},
	{"1st half avg. BPM", func(m *lapdrift.LapMetrics) any { return m.First.AvgHeartRate }},
	{"1st half speed/avg. BPM ratio", func(m *lapdrift.LapMetrics) any { return m.First.SpeedPerBPM }},
	{"1st half # Trackpoints", func(m *lapdrift.LapMetrics) any { return m.First.SampleCount }},
	{"2nd half distance", func(m *lapdrift.LapMetrics) any { return m.Second.DistanceM }},
	{"2nd half speed (m/s)", func(m *lapdrift.LapMetrics) any { return m.Second.SpeedMps }},
	{"2nd half pace (min:mi)", func(m *lapdrift.LapMetrics) any { return m.Second.Pace }},
	{"2nd half avg. BPM", func(m *lapdrift.LapMetrics) any { return m.Second.AvgHeartRate }},
	{"2nd half speed/avg. BPM ratio", func(m *lapdrift.LapMetrics) any { return m.Second.SpeedPerBPM }},
	{"2nd half # Trackpoints", func(m *lapdrift.LapMetrics) any { return m.Second.SampleCount }},
	{"1st/2nd half drift", func(m *lapdrift.LapMetrics) any { return m.Drift }},
	{"1st/2nd half BPM-only drift", func(m *lapdrift.LapMetrics) any { return m.BPMDrift }},
}

func columnsFor(mode Mode) []column {
	if mode == Detailed {
		return detailedColumns
	}
	return summaryColumns
}

// Columns returns the column names of a projection, index label excluded.
func Columns(mode Mode) []string {
	cols := columnsFor(mode)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// Header returns the header row: the index label followed by Columns(mode).
func Header(mode Mode) []string {
	return append([]string{IndexLabel}, Columns(mode)...)
}

// Record renders one row, lap ordinal first.
func Record(m *lapdrift.LapMetrics, mode Mode) []string {
	cols := columnsFor(mode)
	out := make([]string, 0, len(cols)+1)
	out = append(out, strconv.Itoa(m.Ordinal))
	for _, c := range cols {
		out = append(out, formatCell(c.value(m)))
	}
	return out
}

// WriteCSV writes the report in lap order. The header row is written only
// when header is set.
func (r *Report) WriteCSV(w io.Writer, mode Mode, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Header(mode)); err != nil {
			return err
		}
	}
	for _, m := range r.Rows {
		if err := cw.Write(Record(m, mode)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	case time.Time:
		return formatTime(x)
	case time.Duration:
		return FormatClock(x)
	case []tcx.Sample:
		return FormatSamples(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// FormatClock renders a duration as H:MM:SS, with a leading minus sign for
// negative spans.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// FormatSamples embeds a sample series in one cell as
// "time/bpm/meters" triples separated by semicolons.
func FormatSamples(samples []tcx.Sample) string {
	var b strings.Builder
	for i, s := range samples {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(s.Time.UTC().Format(time.RFC3339Nano))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(s.HeartRate))
		b.WriteByte('/')
		b.WriteString(formatFloat(s.DistanceM))
	}
	return b.String()
}
