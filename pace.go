package lapdrift

import (
	"fmt"
	"math"
)

const (
	// MetersPerMile converts between meters and statute miles.
	MetersPerMile = 1609.34

	// DefaultTreadmillPace is the pace in minutes per mile used when treadmill
	// mode is requested without an explicit pace.
	DefaultTreadmillPace = 12.0
)

// TreadmillSpeed converts a pace in minutes per mile into meters per second.
func TreadmillSpeed(paceMinPerMile float64) float64 {
	return 1 / (paceMinPerMile * 60 / MetersPerMile)
}

// MinutesPerMile converts a speed in meters per second into decimal minutes
// per mile. A zero speed returns zero.
func MinutesPerMile(speed float64) float64 {
	milesPerMinute := speed / MetersPerMile * 60
	if milesPerMinute == 0 {
		return 0
	}
	return 1 / milesPerMinute
}

// FormatPace renders a speed in meters per second as MM:SS per mile.
func FormatPace(speed float64) string {
	pace := MinutesPerMile(speed)
	if !isFinite(pace) || pace <= 0 {
		return "00:00"
	}
	total := pace * 60
	minutes := math.Floor(total / 60)
	seconds := math.RoundToEven(total - minutes*60)
	if seconds >= 60 {
		minutes++
		seconds -= 60
	}
	return fmt.Sprintf("%02d:%02d", int(minutes), int(seconds))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
