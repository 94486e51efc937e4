package tracking

import "github.com/chgenberg/runmate-sub002/internal/shared/geo"

// Filter decides which samples count toward distance. Consumer GPS drifts
// while stationary, so tiny moves and low-accuracy fixes are ignored.
type Filter struct {
	MinMovementKm float64
	MaxAccuracyM  float64
}

// Evaluate returns the increment in kilometers from last to s and whether s
// is accepted. A nil last never accepts.
func (f Filter) Evaluate(last *TrackPoint, s LocationSample) (float64, bool) {
	if last == nil {
		return 0, false
	}
	inc := geo.HaversineKm(last.Latitude, last.Longitude, s.Latitude, s.Longitude)
	return inc, inc > f.MinMovementKm && s.Accuracy < f.MaxAccuracyM
}

// Seeds reports whether s may become the first point of a route.
func (f Filter) Seeds(s LocationSample) bool {
	return s.Accuracy < f.MaxAccuracyM
}

// InstantPace returns seconds per kilometer for one accepted increment, or
// false when either term is zero.
func InstantPace(elapsedSec, incrementKm float64) (float64, bool) {
	if elapsedSec <= 0 || incrementKm <= 0 {
		return 0, false
	}
	return elapsedSec / incrementKm, true
}
