package tcx

import "time"

// Namespace is the default namespace of TrainingCenterDatabase v2 documents.
const Namespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"

// Sample is one trackpoint reading.
type Sample struct {
	Time      time.Time `json:"time"`
	HeartRate int       `json:"heart_rate_bpm"`
	DistanceM float64   `json:"distance_m"`
}

// Coordinates is the first recorded position of a lap.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Lap is one lap element and the samples extracted from it.
type Lap struct {
	File    string `json:"file"`
	Index   int    `json:"index"`   // position within File
	Ordinal int    `json:"ordinal"` // position across the whole run, set by the caller

	TotalTimeS      int          `json:"total_time_s"`
	DistanceM       float64      `json:"distance_m"`
	DistanceMarkers []float64    `json:"distance_markers"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Samples         []Sample     `json:"samples"`
}

// File is the parsed content of one source document.
type File struct {
	Name string

	// LapCount counts every lap element seen, rejected ones included.
	LapCount int
	Laps     []Lap
	Rejected []*LapError
	Warnings []string
}

type xmlLap struct {
	TotalTimeSeconds *string    `xml:"TotalTimeSeconds"`
	DistanceMeters   *string    `xml:"DistanceMeters"`
	Tracks           []xmlTrack `xml:"Track"`
}

type xmlTrack struct {
	Trackpoints []xmlTrackpoint `xml:"Trackpoint"`
}

type xmlTrackpoint struct {
	Time           *string       `xml:"Time"`
	Position       *xmlPosition  `xml:"Position"`
	DistanceMeters *string       `xml:"DistanceMeters"`
	HeartRateBpm   *xmlHeartRate `xml:"HeartRateBpm"`
}

type xmlPosition struct {
	LatitudeDegrees  *string `xml:"LatitudeDegrees"`
	LongitudeDegrees *string `xml:"LongitudeDegrees"`
}

type xmlHeartRate struct {
	Value *string `xml:"Value"`
}
