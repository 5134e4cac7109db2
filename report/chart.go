package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteDriftChart renders an HTML bar chart of both drift ratios per lap,
// in percent.
func (r *Report) WriteDriftChart(w io.Writer) error {
	labels := make([]string, 0, len(r.Rows))
	drift := make([]opts.BarData, 0, len(r.Rows))
	bpmDrift := make([]opts.BarData, 0, len(r.Rows))
	for _, m := range r.Rows {
		labels = append(labels, fmt.Sprintf("%d %s#%d", m.Ordinal, m.File, m.Index))
		drift = append(drift, opts.BarData{Value: percent(m.Drift)})
		bpmDrift = append(bpmDrift, opts.BarData{Value: percent(m.BPMDrift)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lap drift", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cardiac drift per lap", Subtitle: fmt.Sprintf("%d laps", len(r.Rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)
	bar.SetXAxis(labels).
		AddSeries("1st/2nd half drift", drift,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("BPM-only drift", bpmDrift)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render drift chart: %w", err)
	}
	return nil
}

func percent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}
