package catmull

import (
	"fmt"
	"math"

	"github.com/npillmayer/tubetrack"
)

// AsString returns waypoints of a spline as a (debugging) string, in
// MetaPost-like notation:
//
//	(0,0,0) .. (10,0,0) .. (10,0,10) .. cycle
func AsString(points []tubetrack.Waypoint, closed bool) string {
	var s string
	for i, pt := range points {
		if i > 0 {
			s += " .. "
		}
		s += ptstring(pt)
	}
	if closed {
		s += " .. cycle"
	}
	return s
}

// Index i modulo n, always non-negative.
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// NaN and infinite parameters are treated as 0.
func sanitize(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		tracer().Debugf("invalid curve parameter %g, using 0", t)
		return 0
	}
	return t
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

func ptstring(p tubetrack.Waypoint) string {
	if !tubetrack.IsValid(p) {
		return "(<unknown>)"
	}
	return fmt.Sprintf("(%.4g,%.4g,%.4g)", round(p.X), round(p.Y), round(p.Z))
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x*10000.0+0.5)) / 10000.0
	}
	return float64(int64(x*10000.0-0.5)) / 10000.0
}
