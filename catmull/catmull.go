package catmull

import (
	"fmt"
	"math"

	"github.com/npillmayer/tubetrack"
	"gonum.org/v1/gonum/spatial/r3"
)

// Position evaluates a Catmull-Rom spline through points at parameter t.
// It never fails: see the package documentation for degenerate cases.
func Position(points []tubetrack.Waypoint, t, tension float64, closed bool) tubetrack.Waypoint {
	n := len(points)
	switch {
	case n == 0:
		return tubetrack.Origin
	case n == 1:
		return points[0]
	case n == 2 && !closed:
		return tubetrack.Lerp(points[0], points[1], clamp01(sanitize(t)))
	}
	s, u := segment(n, t, closed)
	p0, p1, p2, p3 := controls(points, s, closed)
	m1, m2 := tangents(p0, p1, p2, p3, tension)
	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2
	return combine(h00, p1, h10, m1, h01, p2, h11, m2)
}

// Derivative evaluates the first derivative (with respect to t) of a
// Catmull-Rom spline through points at parameter t.
// The derivative may be the zero vector, e.g. at waypoints of a spline with
// tension 0, or for fewer than 2 waypoints.
func Derivative(points []tubetrack.Waypoint, t, tension float64, closed bool) tubetrack.Waypoint {
	n := len(points)
	switch {
	case n < 2:
		return tubetrack.Origin
	case n == 2 && !closed:
		return r3.Sub(points[1], points[0])
	}
	s, u := segment(n, t, closed)
	p0, p1, p2, p3 := controls(points, s, closed)
	m1, m2 := tangents(p0, p1, p2, p3, tension)
	u2 := u * u
	d00 := 6*u2 - 6*u
	d10 := 3*u2 - 4*u + 1
	d01 := -6*u2 + 6*u
	d11 := 3*u2 - 2*u
	return combine(d00, p1, d10, m1, d01, p2, d11, m2)
}

// FrameAt evaluates the local frame of a Catmull-Rom spline at t.
// The tangent follows the derivative. Where the derivative vanishes, the
// chord of the current segment is used instead; if that is degenerate as
// well, the default frame is returned.
func FrameAt(points []tubetrack.Waypoint, t, tension float64, closed bool) tubetrack.Frame {
	n := len(points)
	if n < 2 {
		return tubetrack.DefaultFrame
	}
	d := Derivative(points, t, tension, closed)
	if r3.Norm(d) <= _epsilon {
		s, _ := segment(n, t, closed)
		_, p1, p2, _ := controls(points, s, closed)
		d = r3.Sub(p2, p1)
		tracer().Debugf("vanishing derivative at t=%.4g, using chord %s", t, tubetrack.String(d))
	}
	return tubetrack.FrameFromTangent(d)
}

// Validate checks waypoints for geometry which cannot be rendered as a
// proper curve. Evaluation functions tolerate all of these conditions; Validate
// is intended for diagnostics.
func Validate(points []tubetrack.Waypoint, closed bool) error {
	n := len(points)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrTooFewKnots, n)
	}
	for i, z := range points {
		if !tubetrack.IsValid(z) {
			return fmt.Errorf("%w at waypoint %d", ErrInvalidKnot, i)
		}
	}
	limit := n - 1
	if closed {
		limit = n
	}
	for i := 0; i < limit; i++ {
		j := (i + 1) % n
		if tubetrack.Distance(points[i], points[j]) <= _epsilon {
			return fmt.Errorf("%w between waypoints %d and %d", ErrDegenerateSegment, i, j)
		}
	}
	return nil
}

// segment splits t into a segment index s and a local parameter u in [0,1].
// For closed splines s is reduced modulo n, for open ones t is clamped to
// [0,n-1] and the last segment is extended to include t = n-1.
func segment(n int, t float64, closed bool) (int, float64) {
	t = sanitize(t)
	if closed {
		f := math.Floor(t)
		return wrap(int(f), n), t - f
	}
	t = math.Max(0, math.Min(float64(n-1), t))
	s := int(math.Floor(t))
	if s > n-2 {
		s = n - 2
	}
	return s, t - float64(s)
}

// controls selects the four control points for segment s.
func controls(points []tubetrack.Waypoint, s int, closed bool) (p0, p1, p2, p3 tubetrack.Waypoint) {
	n := len(points)
	if closed {
		return points[wrap(s-1, n)], points[wrap(s, n)], points[wrap(s+1, n)], points[wrap(s+2, n)]
	}
	return points[max(0, s-1)], points[s], points[min(n-1, s+1)], points[min(n-1, s+2)]
}

func tangents(p0, p1, p2, p3 tubetrack.Waypoint, tension float64) (tubetrack.Waypoint, tubetrack.Waypoint) {
	m1 := r3.Scale(tension, r3.Sub(p2, p0))
	m2 := r3.Scale(tension, r3.Sub(p3, p1))
	return m1, m2
}

func combine(a float64, p tubetrack.Waypoint, b float64, q tubetrack.Waypoint,
	c float64, r tubetrack.Waypoint, d float64, s tubetrack.Waypoint) tubetrack.Waypoint {
	return r3.Add(r3.Add(r3.Scale(a, p), r3.Scale(b, q)), r3.Add(r3.Scale(c, r), r3.Scale(d, s)))
}
