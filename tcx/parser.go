package tcx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedSource reports a source that cannot be read or is not well-formed XML.
	ErrMalformedSource = errors.New("malformed source")

	// ErrMalformedLap reports a lap whose trackpoints do not carry homogeneous data.
	ErrMalformedLap = errors.New("malformed lap")
)

// LapError describes why one lap was rejected. It unwraps to ErrMalformedLap.
type LapError struct {
	File   string
	Index  int
	Reason string
}

func (e *LapError) Error() string {
	return fmt.Sprintf("%s lap %d: %s", e.File, e.Index, e.Reason)
}

func (e *LapError) Unwrap() error { return ErrMalformedLap }

// ParseFile reads and parses a TCX document from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}
	return Parse(filepath.Base(path), bytes.NewReader(data))
}

// Parse extracts every lap of a TCX document in document order.
// Rejected laps are reported in File.Rejected and do not fail the parse;
// only unreadable or malformed XML returns an error.
func Parse(name string, r io.Reader) (*File, error) {
	out := &File{Name: name}
	dec := xml.NewDecoder(r)
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSource, name, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "Lap" || (se.Name.Space != Namespace && se.Name.Space != "") {
			continue
		}

		var raw xmlLap
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSource, name, err)
		}
		idx := out.LapCount
		out.LapCount++

		lap, err := buildLap(name, idx, raw)
		if err != nil {
			var lapErr *LapError
			if errors.As(err, &lapErr) {
				out.Rejected = append(out.Rejected, lapErr)
				continue
			}
			return nil, err
		}
		if lap.Coordinates == nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%s lap %d: no coordinates recorded (indoor activity?); local time unavailable, using UTC", name, idx))
		}
		out.Laps = append(out.Laps, lap)
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: %s: no root element", ErrMalformedSource, name)
	}
	return out, nil
}

func buildLap(name string, idx int, raw xmlLap) (Lap, error) {
	reject := func(format string, args ...any) error {
		return &LapError{File: name, Index: idx, Reason: fmt.Sprintf(format, args...)}
	}

	lap := Lap{File: name, Index: idx}

	if raw.TotalTimeSeconds == nil {
		return Lap{}, reject("missing TotalTimeSeconds")
	}
	totalTime, err := parseNumber(*raw.TotalTimeSeconds)
	if err != nil || totalTime < 0 {
		return Lap{}, reject("invalid TotalTimeSeconds %q", *raw.TotalTimeSeconds)
	}
	lap.TotalTimeS = int(math.Floor(totalTime))

	// The lap's own DistanceMeters precedes the trackpoint values; it is
	// dropped from the marker sequence below.
	var markers []float64
	if raw.DistanceMeters != nil {
		d, err := parseNumber(*raw.DistanceMeters)
		if err != nil || d < 0 {
			return Lap{}, reject("invalid DistanceMeters %q", *raw.DistanceMeters)
		}
		lap.DistanceM = d
		markers = append(markers, d)
	}

	var (
		heartRates []int
		distances  []float64
		times      []time.Time
		partial    = -1
		point      = 0
	)
	for _, track := range raw.Tracks {
		for _, tp := range track.Trackpoints {
			hasTime := tp.Time != nil
			hasHR := tp.HeartRateBpm != nil && tp.HeartRateBpm.Value != nil
			hasDist := tp.DistanceMeters != nil

			if hasHR {
				hr, err := strconv.Atoi(strings.TrimSpace(*tp.HeartRateBpm.Value))
				if err != nil {
					return Lap{}, reject("trackpoint %d: invalid heart rate %q", point, *tp.HeartRateBpm.Value)
				}
				heartRates = append(heartRates, hr)
			}
			if hasDist {
				d, err := parseNumber(*tp.DistanceMeters)
				if err != nil || d < 0 {
					return Lap{}, reject("trackpoint %d: invalid distance %q", point, *tp.DistanceMeters)
				}
				markers = append(markers, d)
				distances = append(distances, math.Trunc(d))
			}
			if hasTime {
				ts, err := parseTime(*tp.Time)
				if err != nil {
					return Lap{}, reject("trackpoint %d: invalid time %q", point, *tp.Time)
				}
				times = append(times, ts)
			}
			if lap.Coordinates == nil && tp.Position != nil {
				lap.Coordinates = parsePosition(tp.Position)
			}

			complete := hasTime && hasHR && hasDist
			empty := !hasTime && !hasHR && !hasDist
			if !complete && !empty && partial < 0 {
				partial = point
			}
			point++
		}
	}

	if len(heartRates) != len(distances) || len(distances) != len(times) {
		return Lap{}, reject("trackpoints do not carry homogeneous data: %d heart rates, %d distances, %d times",
			len(heartRates), len(distances), len(times))
	}
	if partial >= 0 {
		return Lap{}, reject("trackpoint %d carries only part of time, heart rate and distance", partial)
	}
	if len(times) == 0 {
		return Lap{}, reject("no trackpoint samples")
	}

	lap.Samples = make([]Sample, len(times))
	for i := range times {
		lap.Samples[i] = Sample{
			Time:      times[i],
			HeartRate: heartRates[i],
			DistanceM: distances[i],
		}
	}
	if len(markers) > 0 {
		lap.DistanceMarkers = markers[1:]
	}
	return lap, nil
}

func parsePosition(p *xmlPosition) *Coordinates {
	if p.LongitudeDegrees == nil || p.LatitudeDegrees == nil {
		return nil
	}
	lon, err := parseNumber(*p.LongitudeDegrees)
	if err != nil {
		return nil
	}
	lat, err := parseNumber(*p.LatitudeDegrees)
	if err != nil {
		return nil
	}
	return &Coordinates{Longitude: lon, Latitude: lat}
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// Timestamps without a zone designator are read as UTC.
const zonelessLayout = "2006-01-02T15:04:05.999999999"

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.ParseInLocation(zonelessLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
