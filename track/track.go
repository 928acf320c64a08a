/*
Package track builds tube-like geometry along a Catmull-Rom spline.

A Track owns a sequence of waypoints and turns it into rings: cross
sections of the tube, each with a position, an orientation and an
accumulated phase. Rings are rendered with primitives from a ringpool.Pool,
which the track references but does not own. Every rebuild releases the
primitives of the previous one back to the pool before acquiring new ones.

	pool := ringpool.New(ringpool.Torus{Radius: 2, Tube: 0.2}, 128)
	opts := track.DefaultOptions()
	opts.Pool = pool
	tr := track.New(waypoints, opts)
	scene := tr.Generate()
	...
	tr.Destroy()

Tracks are not safe for concurrent use and are expected to be driven by a
single render loop.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package track

import (
	"math"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/catmull"
	"github.com/npillmayer/tubetrack/ringpool"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'track'
func tracer() tracing.Trace {
	return tracing.Select("track")
}

// Ring is the derived data of one cross section of a track. Rings are
// recreated on every rebuild; only their pool handles persist.
type Ring struct {
	Index       int
	T           float64 // curve parameter
	Position    tubetrack.Waypoint
	Frame       tubetrack.Frame
	Orientation tubetrack.Euler
	Phase       float64 // accumulated phase in degrees
	Height      float64 // arc length covered by the ring
	Handle      ringpool.Handle
	Spokes      []ringpool.Handle
}

// Rendered is a predicate: does this ring have a primitive?
func (r Ring) Rendered() bool {
	return r.Handle != ringpool.NoHandle
}

// Track is a tube along a spline through waypoints.
type Track struct {
	waypoints []tubetrack.Waypoint
	opts      Options
	scene     ringpool.SceneHandle
	rings     []Ring
	lastBuild time.Time
	built     bool
}

// New creates a track through copies of points.
func New(points []tubetrack.Waypoint, opts Options) *Track {
	tr := &Track{opts: opts.normalize()}
	tr.waypoints = append(make([]tubetrack.Waypoint, 0, len(points)), points...)
	tr.scene = ringpool.NewSceneHandle(tr.opts.Name)
	return tr
}

// Scene returns the container which the track's primitives are attached to.
func (tr *Track) Scene() ringpool.SceneHandle {
	return tr.scene
}

// Options returns the (normalized) options of the track.
func (tr *Track) Options() Options {
	return tr.opts
}

// RadialSegments returns the radial segment count of the track's ring
// primitives. It is a property of the ring pool's torus shape, so tracks
// without a torus pool report 0.
func (tr *Track) RadialSegments() int {
	if tr.opts.Pool == nil {
		return 0
	}
	if torus, ok := tr.opts.Pool.Shape().(ringpool.Torus); ok {
		return torus.RadialSegments
	}
	return 0
}

// spline returns the spline through the current waypoints.
func (tr *Track) spline() catmull.Spline {
	return catmull.New(tr.waypoints, tr.opts.Tension, tr.opts.Closed)
}

// === Waypoints =============================================================

// WaypointCount returns the number of waypoints.
func (tr *Track) WaypointCount() int {
	return len(tr.waypoints)
}

// Waypoints returns a copy of the waypoints.
func (tr *Track) Waypoints() []tubetrack.Waypoint {
	return append([]tubetrack.Waypoint(nil), tr.waypoints...)
}

// Waypoint returns waypoint i, or the origin if i is out of range.
func (tr *Track) Waypoint(i int) tubetrack.Waypoint {
	if i < 0 || i >= len(tr.waypoints) {
		return tubetrack.Origin
	}
	return tr.waypoints[i]
}

// LastWaypoint returns the last waypoint, or the origin for an empty track.
func (tr *Track) LastWaypoint() tubetrack.Waypoint {
	return tr.Waypoint(len(tr.waypoints) - 1)
}

// AddWaypoint appends a copy of p to the end of the track.
func (tr *Track) AddWaypoint(p tubetrack.Waypoint) {
	tr.waypoints = append(tr.waypoints, p)
}

// SetWaypoints replaces all waypoints by copies of points.
func (tr *Track) SetWaypoints(points []tubetrack.Waypoint) {
	tr.waypoints = append(tr.waypoints[:0:0], points...)
}

// TrimFront removes count waypoints from the front of the track. Trims which
// are non-positive or would leave no waypoint are ignored, as they are a
// benign race between player progress and generation cadence.
func (tr *Track) TrimFront(count int) {
	if count <= 0 || count >= len(tr.waypoints) {
		tracer().P("track", tr.opts.Name).Debugf("ignoring trim of %d of %d waypoints",
			count, len(tr.waypoints))
		return
	}
	tr.waypoints = tr.waypoints[count:]
}

// SetTension changes the tension; it takes effect with the next rebuild.
func (tr *Track) SetTension(tension float64) {
	tr.opts.Tension = tension
}

// SetClosed changes the closed-loop flag; it takes effect with the next rebuild.
func (tr *Track) SetClosed(closed bool) {
	tr.opts.Closed = closed
}

// === Curve queries =========================================================

// ParameterRange returns the domain of the curve parameter.
func (tr *Track) ParameterRange() tubetrack.ParameterRange {
	return tubetrack.RangeFor(len(tr.waypoints), tr.opts.Closed)
}

// Point returns the centerline position at t.
func (tr *Track) Point(t float64) tubetrack.Waypoint {
	return tr.spline().Position(t)
}

// Frame returns the local frame at t.
func (tr *Track) Frame(t float64) tubetrack.Frame {
	return tr.spline().Frame(t)
}

// === Rebuilds ==============================================================

// Rings returns the rings of the last rebuild. Every rebuild creates a new
// slice, so rings returned earlier keep their values; their handles, however,
// have been released and may belong to newer rings.
func (tr *Track) Rings() []Ring {
	return tr.rings
}

// Generate rebuilds all rings of the track, reusing primitives from the
// configured pools, and returns the container they are attached to.
// Tracks with fewer than 2 waypoints have no rings.
func (tr *Track) Generate() ringpool.SceneHandle {
	tr.releasePrimitives()
	r := tr.ParameterRange()
	if r.IsEmpty() {
		tracer().P("track", tr.opts.Name).Debugf("no geometry for %d waypoints", len(tr.waypoints))
		tr.built = true
		return tr.scene
	}
	if err := tr.spline().Validate(); err != nil {
		tracer().P("track", tr.opts.Name).Debugf("degenerate geometry: %v", err)
	}
	spp := tr.opts.SegmentsPerSpan
	total := int(math.Ceil(r.Max * float64(spp)))
	height := tr.lengthTo(r.Max) / float64(total)
	if tr.opts.Pool != nil {
		tr.opts.Pool.EnsureCapacity(total/tr.opts.RingSkip + 1)
	}
	tr.rings = make([]Ring, 0, total+1)
	sp := tr.spline()
	phase := 0.0
	for i := 0; i <= total; i++ {
		t := r.Max * float64(i) / float64(total)
		frame := sp.Frame(t)
		phase += tr.opts.PhaseAdvance(t, i, total)
		ring := Ring{
			Index:       i,
			T:           t,
			Position:    sp.Position(t),
			Frame:       frame,
			Orientation: frame.Euler(),
			Phase:       phase,
			Height:      height,
		}
		tr.placeRing(&ring)
		tr.placeSpokes(&ring)
		tr.rings = append(tr.rings, ring)
	}
	tr.built = true
	tracer().P("track", tr.opts.Name).Debugf("generated %d rings for t in %s", len(tr.rings), r)
	return tr.scene
}

// RequestRebuild rebuilds the track unless the last rebuild happened less
// than the rebuild interval before now. Requests which come too early are
// dropped, not queued; force bypasses the throttle. It reports whether a
// rebuild took place.
func (tr *Track) RequestRebuild(now time.Time, force bool) bool {
	if !force && tr.built && now.Sub(tr.lastBuild) < tr.opts.RebuildInterval {
		return false
	}
	tr.Generate()
	tr.lastBuild = now
	return true
}

// Destroy releases all primitives of the track back to their pools and
// clears the rings. The track may be regenerated afterwards.
func (tr *Track) Destroy() {
	tr.releasePrimitives()
	tr.built = false
}

// placeRing acquires a primitive for a ring, unless the ring is skipped.
func (tr *Track) placeRing(ring *Ring) {
	pool := tr.opts.Pool
	if pool == nil || ring.Index%tr.opts.RingSkip != 0 {
		return
	}
	h := pool.Acquire()
	prim := pool.Get(h)
	prim.Transform.Position = ring.Position
	prim.Transform.Rotation = ring.Orientation
	prim.Index = ring.Index
	prim.Phase = ring.Phase
	pool.Attach(h, tr.scene)
	ring.Handle = h
}

// placeSpokes acquires primitives for the spokes of a ring. Spokes depend on
// their ring: if the ring is skipped, so are its spokes.
func (tr *Track) placeSpokes(ring *Ring) {
	pool := tr.opts.SpokePool
	n := tr.opts.SpokeCount
	if pool == nil || n == 0 || !ring.Rendered() || ring.Index%tr.opts.SpokeSkip != 0 {
		return
	}
	toWorld := ring.Frame.Matrix()
	for k := 0; k < n; k++ {
		angle := ring.Phase + float64(k)*360/float64(n)
		rad := angle * tubetrack.Deg2Rad
		f := spin(ring.Frame, rad)
		// spoke center in ring coordinates: on the ring plane, half way out
		local := tubetrack.W(math.Cos(rad)*tr.opts.Radius/2, math.Sin(rad)*tr.opts.Radius/2, 0)
		h := pool.Acquire()
		prim := pool.Get(h)
		prim.Transform.Position = r3.Add(ring.Position, toWorld.Transform(local))
		prim.Transform.Rotation = f.Euler()
		prim.Index = ring.Index
		prim.Phase = angle
		prim.Owner = ring.Handle
		pool.Attach(h, tr.scene)
		ring.Spokes = append(ring.Spokes, h)
	}
}

// releasePrimitives returns all primitives of the current rings to their
// pools and drops the rings.
func (tr *Track) releasePrimitives() {
	for _, ring := range tr.rings {
		for _, h := range ring.Spokes {
			tr.opts.SpokePool.Release(h)
		}
		if ring.Rendered() {
			tr.opts.Pool.Release(ring.Handle)
		}
	}
	tr.rings = nil
}
