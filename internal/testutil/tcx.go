// Package testutil builds TCX documents for tests.
package testutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Namespace mirrors tcx.Namespace without importing it.
const Namespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"

// Fixture coordinates (Boston Common), used when a lap is built with a position.
const (
	Longitude = -71.05
	Latitude  = 42.36
)

// Trackpoint is one complete trackpoint for a fixture lap.
type Trackpoint struct {
	Time      string
	HeartRate int
	Distance  float64
}

// TP is shorthand for a Trackpoint literal.
func TP(ts string, hr int, distance float64) Trackpoint {
	return Trackpoint{Time: ts, HeartRate: hr, Distance: distance}
}

// Lap renders a Lap element. When withPosition is set the first trackpoint
// carries the fixture coordinates.
func Lap(totalTime, distance string, withPosition bool, points ...Trackpoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<Lap StartTime=%q>\n", startTime(points))
	fmt.Fprintf(&b, "  <TotalTimeSeconds>%s</TotalTimeSeconds>\n", totalTime)
	fmt.Fprintf(&b, "  <DistanceMeters>%s</DistanceMeters>\n", distance)
	b.WriteString("  <Intensity>Active</Intensity>\n  <Track>\n")
	for i, p := range points {
		b.WriteString("    <Trackpoint>\n")
		fmt.Fprintf(&b, "      <Time>%s</Time>\n", p.Time)
		if withPosition && i == 0 {
			fmt.Fprintf(&b, "      <Position><LatitudeDegrees>%s</LatitudeDegrees><LongitudeDegrees>%s</LongitudeDegrees></Position>\n",
				formatFloat(Latitude), formatFloat(Longitude))
		}
		fmt.Fprintf(&b, "      <DistanceMeters>%s</DistanceMeters>\n", formatFloat(p.Distance))
		fmt.Fprintf(&b, "      <HeartRateBpm><Value>%d</Value></HeartRateBpm>\n", p.HeartRate)
		b.WriteString("    </Trackpoint>\n")
	}
	b.WriteString("  </Track>\n</Lap>\n")
	return b.String()
}

// Document wraps lap elements into a TrainingCenterDatabase document.
func Document(laps ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<TrainingCenterDatabase xmlns=%q>\n", Namespace)
	b.WriteString("<Activities>\n<Activity Sport=\"Running\">\n<Id>2024-03-02T10:00:00Z</Id>\n")
	for _, lap := range laps {
		b.WriteString(lap)
	}
	b.WriteString("</Activity>\n</Activities>\n</TrainingCenterDatabase>\n")
	return b.String()
}

func startTime(points []Trackpoint) string {
	if len(points) == 0 {
		return ""
	}
	return points[0].Time
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
