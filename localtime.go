package lapdrift

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasjlepore/lap-drift/tcx"
	"github.com/ringsaturn/tzf"
)

// ErrUnknownZone is returned when coordinates do not resolve to a loadable zone.
var ErrUnknownZone = errors.New("unknown time zone")

// TimezoneLookup resolves an IANA zone name for a position. An empty name
// means the position is not covered.
type TimezoneLookup interface {
	TimezoneName(longitude, latitude float64) string
}

// LocalSpan is a begin/end pair expressed in one zone.
type LocalSpan struct {
	Begin time.Time
	End   time.Time
	Zone  string
}

// Duration is End minus Begin; it does not depend on the zone.
func (s LocalSpan) Duration() time.Duration {
	return s.End.Sub(s.Begin)
}

// Localizer converts UTC lap boundaries into the lap's local zone.
// A nil or disabled Localizer passes UTC through.
type Localizer struct {
	Lookup  TimezoneLookup
	Enabled bool
}

// Localize converts begin and end into the zone found at coords. Without
// coordinates, or when disabled, the UTC span is returned. When the zone
// cannot be resolved the UTC span is returned together with ErrUnknownZone
// so the caller can report the fallback.
func (l *Localizer) Localize(begin, end time.Time, coords *tcx.Coordinates) (LocalSpan, error) {
	utc := LocalSpan{Begin: begin.UTC(), End: end.UTC(), Zone: "UTC"}
	if l == nil || !l.Enabled || l.Lookup == nil || coords == nil {
		return utc, nil
	}

	name := l.Lookup.TimezoneName(coords.Longitude, coords.Latitude)
	if name == "" {
		return utc, fmt.Errorf("%w at lon %.5f lat %.5f", ErrUnknownZone, coords.Longitude, coords.Latitude)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return utc, fmt.Errorf("%w %q: %w", ErrUnknownZone, name, err)
	}
	return LocalSpan{Begin: begin.In(loc), End: end.In(loc), Zone: name}, nil
}

// TZFLookup resolves zones from the offline polygon data bundled with tzf.
type TZFLookup struct {
	finder tzf.F
}

// NewTZFLookup loads the default tzf finder.
func NewTZFLookup() (*TZFLookup, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("init tzf finder: %w", err)
	}
	return &TZFLookup{finder: finder}, nil
}

// TimezoneName returns the IANA zone at the position, or "" when none matches.
func (t *TZFLookup) TimezoneName(longitude, latitude float64) string {
	return t.finder.GetTimezoneName(longitude, latitude)
}
