package track

import (
	"math"

	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/polygon"
	"github.com/npillmayer/tubetrack/ringpool"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	lengthSamplesPerSpan = 10
	searchIterations     = 20
	searchTolerance      = 0.001
	boundsSamplesPerSpan = 5
	minBoundsSamples     = 20
)

// Length returns the approximate arc length of the whole track.
func (tr *Track) Length() float64 {
	return tr.lengthTo(tr.ParameterRange().Max)
}

// lengthTo approximates the arc length from 0 to t by summing the chords of
// ceil(10 t) sub-segments.
func (tr *Track) lengthTo(t float64) float64 {
	n := int(math.Ceil(t * lengthSamplesPerSpan))
	if n <= 0 {
		return 0
	}
	sp := tr.spline()
	length := 0.0
	prev := sp.Position(0)
	for i := 1; i <= n; i++ {
		p := sp.Position(t * float64(i) / float64(n))
		length += tubetrack.Distance(prev, p)
		prev = p
	}
	return length
}

// ParameterAtLength returns the curve parameter at which the arc length
// from the start of the track reaches target. It uses a binary search which
// assumes arc length to grow monotonically with t. If the search does not
// converge within its iteration budget, the middle of the final bracket is
// returned.
func (tr *Track) ParameterAtLength(target float64) float64 {
	r := tr.ParameterRange()
	if r.IsEmpty() || target <= 0 {
		return r.Min
	}
	if target >= tr.lengthTo(r.Max) {
		return r.Max
	}
	lo, hi := r.Min, r.Max
	for i := 0; i < searchIterations; i++ {
		mid := (lo + hi) / 2
		l := tr.lengthTo(mid)
		if math.Abs(l-target) < searchTolerance {
			return mid
		}
		if l < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	tracer().P("track", tr.opts.Name).Debugf("arc length search for %.4g did not converge", target)
	return (lo + hi) / 2
}

// Bounds returns the axis-aligned bounding box of the centerline, sampled at
// max(20, 5n) points for n waypoints. Extrema between samples may be missed.
// Bounds of an empty track is the empty box at the origin.
func (tr *Track) Bounds() r3.Box {
	n := len(tr.waypoints)
	if n == 0 {
		return r3.Box{}
	}
	samples := max(minBoundsSamples, n*boundsSamplesPerSpan)
	r := tr.ParameterRange()
	sp := tr.spline()
	first := sp.Position(r.Min)
	box := r3.Box{Min: first, Max: first}
	for i := 1; i <= samples; i++ {
		p := sp.Position(r.Min + (r.Max-r.Min)*float64(i)/float64(samples))
		box.Min = r3.Vec{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}
	return box
}

// RenderBounds returns the bounds of the centerline, grown by the extent of
// the rendered primitives: rings around the centerline and spokes placed
// half a radius out.
func (tr *Track) RenderBounds() r3.Box {
	box := tr.Bounds()
	if len(tr.waypoints) == 0 {
		return box
	}
	grow := 0.0
	if tr.opts.Pool != nil {
		grow = ringpool.Extent(tr.opts.Pool.Shape())
	}
	if tr.opts.SpokePool != nil && tr.opts.SpokeCount > 0 {
		grow = math.Max(grow, tr.opts.Radius/2+ringpool.Extent(tr.opts.SpokePool.Shape()))
	}
	d := r3.Vec{X: grow, Y: grow, Z: grow}
	return r3.Box{Min: r3.Sub(box.Min, d), Max: r3.Add(box.Max, d)}
}

// Footprint returns the ground outline of the tube in the XZ plane: the
// centerline offset by halfWidth to both sides. Tracks without geometry
// have an empty footprint.
func (tr *Track) Footprint(halfWidth float64) *polygon.Polygon {
	pg := polygon.NullPolygon()
	r := tr.ParameterRange()
	if r.IsEmpty() {
		return pg
	}
	samples := max(minBoundsSamples, len(tr.waypoints)*boundsSamplesPerSpan)
	sp := tr.spline()
	right := make([]tubetrack.Waypoint, 0, samples+1)
	for i := 0; i <= samples; i++ {
		t := r.Min + (r.Max-r.Min)*float64(i)/float64(samples)
		p, f := sp.Position(t), sp.Frame(t)
		side := groundSide(f)
		pg.Knot(polygon.Ground(Offset(p, side, -halfWidth)))
		right = append(right, Offset(p, side, halfWidth))
	}
	for i := len(right) - 1; i >= 0; i-- {
		pg.Knot(polygon.Ground(right[i]))
	}
	return pg.Cycle()
}

// groundSide returns the horizontal direction perpendicular to the tangent.
func groundSide(f tubetrack.Frame) tubetrack.Waypoint {
	side := r3.Vec{X: f.Tangent.Z, Y: 0, Z: -f.Tangent.X}
	side, _ = tubetrack.Normalize(side, f.Normal)
	return side
}

// Offset moves p by distance d along direction dir.
func Offset(p, dir tubetrack.Waypoint, d float64) tubetrack.Waypoint {
	return r3.Add(p, r3.Scale(d, dir))
}

// spin rotates a frame around its tangent by angle (in radians). The
// tangent is unchanged, so the centerline orientation is preserved.
func spin(f tubetrack.Frame, angle float64) tubetrack.Frame {
	c, s := math.Cos(angle), math.Sin(angle)
	return tubetrack.Frame{
		Tangent:  f.Tangent,
		Normal:   r3.Add(r3.Scale(c, f.Normal), r3.Scale(s, f.Binormal)),
		Binormal: r3.Add(r3.Scale(-s, f.Normal), r3.Scale(c, f.Binormal)),
	}
}
