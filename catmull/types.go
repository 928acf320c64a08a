package catmull

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubetrack"
)

// tracer writes to trace with key 'catmull'
func tracer() tracing.Trace {
	return tracing.Select("catmull")
}

const _epsilon = 0.0000001

var (
	// ErrTooFewKnots indicates a spline with fewer than 2 waypoints.
	ErrTooFewKnots = errors.New("spline has too few waypoints")
	// ErrInvalidKnot indicates a waypoint coordinate contains NaN/Inf.
	ErrInvalidKnot = errors.New("spline has invalid waypoint coordinate")
	// ErrDegenerateSegment indicates two consecutive waypoints collapse to one point.
	ErrDegenerateSegment = errors.New("spline has degenerate segment")
)

// Spline is a value type bundling waypoints with the parameters needed to
// evaluate them. It does not copy the waypoints; callers which mutate the
// slice later on have to create a new Spline.
type Spline struct {
	points  []tubetrack.Waypoint // z.i
	tension float64              // tangent influence
	closed  bool                 // wrap around at the end?
}

// New creates a spline through points.
func New(points []tubetrack.Waypoint, tension float64, closed bool) Spline {
	return Spline{points: points, tension: tension, closed: closed}
}

// N returns the number of waypoints.
func (sp Spline) N() int {
	return len(sp.points)
}

// Z returns the waypoint at position (i mod N). Z of an empty spline is the
// origin.
func (sp Spline) Z(i int) tubetrack.Waypoint {
	if sp.N() == 0 {
		return tubetrack.Origin
	}
	return sp.points[wrap(i, sp.N())]
}

// IsCycle is a predicate: is this spline closed?
func (sp Spline) IsCycle() bool {
	return sp.closed
}

// Tension returns the tension parameter of this spline.
func (sp Spline) Tension() float64 {
	return sp.tension
}

// Range returns the parameter range of this spline.
func (sp Spline) Range() tubetrack.ParameterRange {
	return tubetrack.RangeFor(sp.N(), sp.closed)
}

// Position evaluates the spline at t.
func (sp Spline) Position(t float64) tubetrack.Waypoint {
	return Position(sp.points, t, sp.tension, sp.closed)
}

// Derivative evaluates the first derivative of the spline at t.
func (sp Spline) Derivative(t float64) tubetrack.Waypoint {
	return Derivative(sp.points, t, sp.tension, sp.closed)
}

// Frame evaluates the local frame of the spline at t.
func (sp Spline) Frame(t float64) tubetrack.Frame {
	return FrameAt(sp.points, t, sp.tension, sp.closed)
}

// Validate checks the spline for geometry which will be rendered in a
// degenerate way.
func (sp Spline) Validate() error {
	return Validate(sp.points, sp.closed)
}

func (sp Spline) String() string {
	return AsString(sp.points, sp.closed)
}
