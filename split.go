package lapdrift

import (
	"time"

	"github.com/lucasjlepore/lap-drift/tcx"
)

// Halves is a lap's sample series partitioned at its temporal midpoint.
// First and Second are fresh slices; they never alias the lap's samples.
type Halves struct {
	Halftime time.Time
	First    []tcx.Sample
	Second   []tcx.Sample
}

// SplitHalves computes the halftime between the earliest and latest sample and
// partitions the samples around it. A sample stamped exactly at halftime lands
// in both halves, so a single-sample lap yields two identical halves.
func SplitHalves(samples []tcx.Sample) Halves {
	if len(samples) == 0 {
		return Halves{}
	}
	first, last := timeBounds(samples)
	half := first.Add(last.Sub(first) / 2)

	out := Halves{Halftime: half}
	for _, s := range samples {
		if !s.Time.After(half) {
			out.First = append(out.First, s)
		}
		if !s.Time.Before(half) {
			out.Second = append(out.Second, s)
		}
	}
	return out
}

func timeBounds(samples []tcx.Sample) (time.Time, time.Time) {
	lo, hi := samples[0].Time, samples[0].Time
	for _, s := range samples[1:] {
		if s.Time.Before(lo) {
			lo = s.Time
		}
		if s.Time.After(hi) {
			hi = s.Time
		}
	}
	return lo, hi
}
