// Package zones bins heart-rate samples into training zones.
package zones

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasjlepore/lap-drift/tcx"
)

// DefaultEdges bound zones Z0..Z5. Each zone covers (low, high].
var DefaultEdges = []int{0, 100, 123, 136, 146, 154, 300}

// ErrInvalidEdges reports zone edges that are not strictly increasing.
var ErrInvalidEdges = errors.New("invalid zone edges")

// Zone is one bin of the distribution.
type Zone struct {
	Name     string
	Low      int // exclusive
	High     int // inclusive
	Count    int
	Fraction float64
}

// Distribution is the binned result. Values outside every zone are counted
// in OutOfRange and excluded from the fractions.
type Distribution struct {
	Zones      []Zone
	Total      int
	OutOfRange int
}

// Bin counts heart rates per zone and normalizes the counts to fractions.
func Bin(heartRates []int, edges []int) (*Distribution, error) {
	if err := validate(edges); err != nil {
		return nil, err
	}
	d := &Distribution{Zones: make([]Zone, len(edges)-1)}
	for i := range d.Zones {
		d.Zones[i] = Zone{Name: fmt.Sprintf("Z%d", i), Low: edges[i], High: edges[i+1]}
	}
	for _, hr := range heartRates {
		// first edge >= hr closes the zone that holds it
		i := sort.SearchInts(edges, hr)
		if i == 0 || i == len(edges) {
			d.OutOfRange++
			continue
		}
		d.Zones[i-1].Count++
		d.Total++
	}
	if d.Total > 0 {
		for i := range d.Zones {
			d.Zones[i].Fraction = float64(d.Zones[i].Count) / float64(d.Total)
		}
	}
	return d, nil
}

// ParseEdges reads a comma-separated list of zone edges.
func ParseEdges(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEdges, part)
		}
		out = append(out, v)
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(edges []int) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: need at least two edges, got %d", ErrInvalidEdges, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("%w: %d does not follow %d", ErrInvalidEdges, edges[i], edges[i-1])
		}
	}
	return nil
}

// HeartRates collects the heart rate of every sample of every lap.
func HeartRates(files ...*tcx.File) []int {
	var out []int
	for _, f := range files {
		for _, lap := range f.Laps {
			for _, s := range lap.Samples {
				out = append(out, s.HeartRate)
			}
		}
	}
	return out
}

// WriteCSV writes one row per zone. With header set the first row names the
// columns.
func (d *Distribution) WriteCSV(w io.Writer, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write([]string{"zone", "low_bpm", "high_bpm", "samples", "fraction"}); err != nil {
			return err
		}
	}
	for _, z := range d.Zones {
		row := []string{
			z.Name,
			strconv.Itoa(z.Low),
			strconv.Itoa(z.High),
			strconv.Itoa(z.Count),
			strconv.FormatFloat(z.Fraction, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
