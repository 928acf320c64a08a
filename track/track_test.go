package track

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubetrack"
	"github.com/npillmayer/tubetrack/ringpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func straight() []tubetrack.Waypoint {
	return []tubetrack.Waypoint{
		tubetrack.W(0, 0, 0), tubetrack.W(10, 0, 0),
		tubetrack.W(20, 0, 0), tubetrack.W(30, 0, 0),
	}
}

func square() []tubetrack.Waypoint {
	return []tubetrack.Waypoint{
		tubetrack.W(0, 0, 0), tubetrack.W(10, 0, 0),
		tubetrack.W(10, 0, 10), tubetrack.W(0, 0, 10),
	}
}

func pooled(t *testing.T, points []tubetrack.Waypoint) (*Track, *ringpool.Pool, *ringpool.MemoryScene) {
	t.Helper()
	scene := ringpool.NewMemoryScene()
	pool := ringpool.New(ringpool.Torus{Radius: 2, Tube: 0.2, RadialSegments: 16}, 5,
		ringpool.WithRenderer(scene))
	opts := DefaultOptions()
	opts.Pool = pool
	return New(points, opts), pool, scene
}

func TestScenarioOpenStraightTrack(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr := New(straight(), DefaultOptions())
	assert.Equal(t, tubetrack.ParameterRange{Min: 0, Max: 3}, tr.ParameterRange())
	assert.True(t, tubetrack.Equal(tubetrack.W(15, 0, 0), tr.Point(1.5), 1e-9))
	assert.True(t, tubetrack.Equal(tubetrack.XAxis, tr.Frame(1.5).Tangent, 1e-9))
}

func TestScenarioClosedSquare(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	opts := DefaultOptions()
	opts.Closed = true
	tr := New(square(), opts)
	assert.Equal(t, 4.0, tr.ParameterRange().Max)
	assert.True(t, tubetrack.Equal(tr.Point(0), tr.Point(4), 1e-9))
}

func TestDegenerateTracks(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr, pool, _ := pooled(t, nil)
	assert.Equal(t, tubetrack.Origin, tr.Point(0.5))
	assert.True(t, tr.ParameterRange().IsEmpty())
	scene := tr.Generate()
	assert.Equal(t, tr.Scene(), scene)
	assert.Empty(t, tr.Rings())
	assert.Equal(t, 0, pool.Stats().Active)
	assert.Equal(t, r3.Box{}, tr.Bounds())
	assert.Equal(t, 0, tr.Footprint(1).N())
	assert.Equal(t, 0.0, tr.ParameterAtLength(5))

	tr.AddWaypoint(tubetrack.W(1, 2, 3))
	assert.Equal(t, tubetrack.W(1, 2, 3), tr.Point(42))
	assert.Equal(t, r3.Box{Min: tubetrack.W(1, 2, 3), Max: tubetrack.W(1, 2, 3)}, tr.Bounds())
	tr.Generate()
	assert.Empty(t, tr.Rings())
}

func TestWaypointsAreCopied(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := straight()
	tr := New(pts, DefaultOptions())
	pts[0] = tubetrack.W(99, 99, 99)
	assert.Equal(t, tubetrack.Origin, tr.Waypoint(0))
	out := tr.Waypoints()
	out[1] = tubetrack.W(99, 99, 99)
	assert.Equal(t, tubetrack.W(10, 0, 0), tr.Waypoint(1))
	assert.Equal(t, tubetrack.W(30, 0, 0), tr.LastWaypoint())
	assert.Equal(t, tubetrack.Origin, tr.Waypoint(17))
}

func TestTrimSafety(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr := New(straight(), DefaultOptions())
	tr.TrimFront(0)
	tr.TrimFront(-3)
	tr.TrimFront(4)
	tr.TrimFront(17)
	assert.Equal(t, 4, tr.WaypointCount())
	tr.TrimFront(3)
	assert.Equal(t, 1, tr.WaypointCount())
	assert.Equal(t, tubetrack.W(30, 0, 0), tr.Waypoint(0))
	tr.TrimFront(1)
	assert.Equal(t, 1, tr.WaypointCount())
	tr.AddWaypoint(tubetrack.W(40, 0, 0))
	assert.Equal(t, 2, tr.WaypointCount())
}

func TestGenerateRings(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr, pool, scene := pooled(t, straight())
	container := tr.Generate()
	rings := tr.Rings()
	require.Len(t, rings, 31) // ceil(3 * 10) + 1
	for i, ring := range rings {
		assert.Equal(t, i, ring.Index)
		assert.InDelta(t, 0.1*float64(i), ring.T, 1e-9)
		assert.InDelta(t, 1.0, ring.Height, 1e-9)
		assert.True(t, ring.Rendered())
		prim := pool.Get(ring.Handle)
		require.NotNil(t, prim)
		assert.Equal(t, ring.Position, prim.Transform.Position)
		assert.Empty(t, cmp.Diff(ring.Orientation, prim.Transform.Rotation))
	}
	assert.True(t, tubetrack.Equal(tubetrack.W(30, 0, 0), rings[30].Position, 1e-9))
	assert.Equal(t, 31, pool.Stats().Active)
	assert.Equal(t, 31, scene.Len(container))

	tr.Generate()
	st := pool.Stats()
	assert.Equal(t, 31, st.Active)
	assert.Equal(t, st.Total, st.Active+st.Pooled)
	assert.Equal(t, 31, scene.Len(container))

	tr.Destroy()
	assert.Empty(t, tr.Rings())
	assert.Equal(t, 0, pool.Stats().Active)
	assert.Equal(t, 0, scene.Len(container))
	tr.Destroy()
	assert.Equal(t, 0, pool.Stats().Active)
}

func TestClosedTrackRings(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	opts := DefaultOptions()
	opts.Closed = true
	opts.SegmentsPerSpan = 4
	tr := New(square(), opts)
	tr.Generate()
	rings := tr.Rings()
	require.Len(t, rings, 17)
	assert.True(t, tubetrack.Equal(rings[0].Position, rings[16].Position, 1e-9))
	assert.False(t, rings[0].Rendered()) // no pool configured
}

func TestSkipIsHierarchical(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ringPool := ringpool.New(ringpool.Torus{Radius: 2}, 0)
	spokePool := ringpool.New(ringpool.Spoke{Length: 2, Width: 0.1}, 0)
	opts := DefaultOptions()
	opts.Pool = ringPool
	opts.SpokePool = spokePool
	opts.SpokeCount = 4
	opts.RingSkip = 3
	opts.SpokeSkip = 2
	tr := New(straight(), opts)
	tr.Generate()
	rendered, withSpokes := 0, 0
	for _, ring := range tr.Rings() {
		if ring.Rendered() {
			rendered++
			assert.Equal(t, 0, ring.Index%3)
		}
		if len(ring.Spokes) > 0 {
			withSpokes++
			assert.True(t, ring.Rendered(), "ring %d has spokes without being rendered", ring.Index)
			assert.Equal(t, 0, ring.Index%6)
			assert.Len(t, ring.Spokes, 4)
			for _, h := range ring.Spokes {
				assert.Equal(t, ring.Handle, spokePool.Get(h).Owner)
			}
		}
	}
	assert.Equal(t, 11, rendered)
	assert.Equal(t, 6, withSpokes)
	assert.Equal(t, 31, len(tr.Rings()), "skipped rings still contribute to the centerline")
	assert.Equal(t, 11, ringPool.Stats().Active)
	assert.Equal(t, 24, spokePool.Stats().Active)
	tr.Destroy()
	assert.Equal(t, 0, spokePool.Stats().Active)
}

func TestSpokesWithoutRingPool(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	spokePool := ringpool.New(ringpool.Spoke{Length: 2}, 0)
	opts := DefaultOptions()
	opts.SpokePool = spokePool
	opts.SpokeCount = 3
	tr := New(straight(), opts)
	tr.Generate()
	assert.Equal(t, 0, spokePool.Stats().Active)
}

func TestPhaseIsIndependentOfOrientation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	plain := New(square(), DefaultOptions())
	plain.Generate()
	opts := DefaultOptions()
	opts.PhaseAdvance = ConstantTwist(90, opts.SegmentsPerSpan)
	twisted := New(square(), opts)
	twisted.Generate()
	require.Equal(t, len(plain.Rings()), len(twisted.Rings()))
	for i, ring := range twisted.Rings() {
		assert.InDelta(t, 9*float64(i), ring.Phase, 1e-9)
		assert.Equal(t, 0.0, plain.Rings()[i].Phase)
		assert.Empty(t, cmp.Diff(plain.Rings()[i].Orientation, ring.Orientation))
		assert.Equal(t, plain.Rings()[i].Position, ring.Position)
	}
}

func TestSpokePlacement(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ringPool := ringpool.New(ringpool.Torus{Radius: 2}, 0)
	spokePool := ringpool.New(ringpool.Spoke{Length: 1}, 0)
	opts := DefaultOptions()
	opts.Pool, opts.SpokePool = ringPool, spokePool
	opts.SpokeCount = 4
	opts.Radius = 2
	opts.PhaseAdvance = ConstantTwist(90, opts.SegmentsPerSpan)
	tr := New(straight(), opts)
	tr.Generate()
	ring := tr.Rings()[10] // phase 90°
	require.Len(t, ring.Spokes, 4)
	first := spokePool.Get(ring.Spokes[0])
	// a quarter turn moves the first spoke from the normal onto the binormal
	want := Offset(ring.Position, ring.Frame.Binormal, 1)
	assert.True(t, tubetrack.Equal(want, first.Transform.Position, 1e-9))
	assert.InDelta(t, 90.0, first.Phase, 1e-9)
	for _, h := range ring.Spokes {
		d := tubetrack.Distance(ring.Position, spokePool.Get(h).Transform.Position)
		assert.InDelta(t, 1.0, d, 1e-9)
	}
}

func TestSpinKeepsTangent(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := tubetrack.FrameFromTangent(tubetrack.W(1, 1, 0))
	g := spin(f, 1.234)
	assert.Equal(t, f.Tangent, g.Tangent)
	assert.True(t, tubetrack.Equal(g.Tangent, r3.Cross(g.Normal, g.Binormal), 1e-9))
}

func TestRequestRebuildIsThrottled(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr, pool, _ := pooled(t, straight())
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, tr.RequestRebuild(t0, false))
	assert.Len(t, tr.Rings(), 31)
	tr.AddWaypoint(tubetrack.W(40, 0, 0))
	assert.False(t, tr.RequestRebuild(t0.Add(5*time.Millisecond), false))
	assert.Len(t, tr.Rings(), 31, "dropped request must not rebuild")
	assert.True(t, tr.RequestRebuild(t0.Add(5*time.Millisecond), true))
	assert.Len(t, tr.Rings(), 41)
	assert.False(t, tr.RequestRebuild(t0.Add(20*time.Millisecond), false))
	assert.True(t, tr.RequestRebuild(t0.Add(21*time.Millisecond), false))
	assert.Equal(t, 41, pool.Stats().Active)
}

func TestSharedPool(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	scene := ringpool.NewMemoryScene()
	pool := ringpool.New(ringpool.Torus{Radius: 1}, 0, ringpool.WithRenderer(scene))
	opts := DefaultOptions()
	opts.Pool = pool
	a := New(straight(), opts)
	b := New(square(), opts)
	assert.NotEqual(t, a.Scene(), b.Scene())
	a.Generate()
	b.Generate()
	assert.Equal(t, 62, pool.Stats().Active)
	a.Destroy()
	assert.Equal(t, 31, pool.Stats().Active)
	assert.Equal(t, 0, scene.Len(a.Scene()))
	assert.Equal(t, 31, scene.Len(b.Scene()))
	for _, ring := range b.Rings() {
		assert.True(t, pool.IsActive(ring.Handle))
	}
}

func TestArcLength(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr := New(straight(), DefaultOptions())
	assert.InDelta(t, 30.0, tr.Length(), 1e-9)
	assert.InDelta(t, 15.0, tr.lengthTo(1.5), 1e-9)
	assert.InDelta(t, 1.5, tr.ParameterAtLength(15), 1e-9)
	assert.Equal(t, 0.0, tr.ParameterAtLength(-1))
	assert.Equal(t, 3.0, tr.ParameterAtLength(100))
	u := tr.ParameterAtLength(7)
	assert.InDelta(t, 7.0, tr.Point(u).X, 0.01)
}

func TestArcLengthOnCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	opts := DefaultOptions()
	opts.Closed = true
	tr := New(square(), opts)
	total := tr.Length()
	assert.Greater(t, total, 40.0*0.9)
	prev := 0.0
	for _, target := range []float64{5, 10, 20, 30} {
		u := tr.ParameterAtLength(target)
		assert.Greater(t, u, prev)
		assert.InDelta(t, target, tr.lengthTo(u), 0.05)
		prev = u
	}
}

func TestBounds(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr := New(straight(), DefaultOptions())
	b := tr.Bounds()
	assert.True(t, tubetrack.Equal(tubetrack.Origin, b.Min, 1e-9))
	assert.True(t, tubetrack.Equal(tubetrack.W(30, 0, 0), b.Max, 1e-9))

	opts := DefaultOptions()
	opts.Closed = true
	sq := New(square(), opts)
	b = sq.Bounds()
	for _, w := range square() {
		assert.LessOrEqual(t, b.Min.X, w.X)
		assert.LessOrEqual(t, b.Min.Z, w.Z)
		assert.GreaterOrEqual(t, b.Max.X, w.X)
		assert.GreaterOrEqual(t, b.Max.Z, w.Z)
	}
	assert.InDelta(t, 0.0, b.Max.Y-b.Min.Y, 1e-9)
}

func TestFootprint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr := New(straight(), DefaultOptions())
	fp := tr.Footprint(1)
	require.True(t, fp.IsCycle())
	assert.Equal(t, 42, fp.N())
	bb := fp.BoundingBox()
	assert.InDelta(t, 0.0, bb.Min.X, 1e-9)
	assert.InDelta(t, 30.0, bb.Max.X, 1e-9)
	assert.InDelta(t, -1.0, bb.Min.Y, 1e-9)
	assert.InDelta(t, 1.0, bb.Max.Y, 1e-9)
	assert.InDelta(t, 60.0, fp.Area(), 1e-6)
}

func TestRingsSurviveRebuild(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr, pool, _ := pooled(t, straight())
	tr.Generate()
	old := tr.Rings()
	want := old[5]
	require.True(t, want.Rendered())

	tr.SetWaypoints(square())
	tr.Generate()
	assert.Empty(t, cmp.Diff(want, old[5]), "a rebuild must not overwrite rings handed out before")
	assert.NotEqual(t, old[5].Position, tr.Rings()[5].Position)
	assert.Equal(t, 31, pool.Stats().Active)
}

func TestParameterAtLengthWithoutConvergence(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	const long = 1e6
	tr := New([]tubetrack.Waypoint{tubetrack.Origin, tubetrack.W(long, 0, 0)}, DefaultOptions())
	// halving [0,1] 20 times only reaches multiples of 2⁻²⁰, which are about
	// 0.95 units of length apart here. A target half way between two of them
	// can never be met within the tolerance.
	step := 1.0 / (1 << 20)
	u := 349525.5 * step
	got := tr.ParameterAtLength(u * long)
	assert.InDelta(t, u, got, 1e-12, "expected the middle of the final bracket")
	assert.Greater(t, math.Abs(tr.lengthTo(349525*step)-u*long), searchTolerance)
}

func TestRadialSegments(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	tr, _, _ := pooled(t, straight())
	assert.Equal(t, 16, tr.RadialSegments())
	assert.Equal(t, 0, New(straight(), DefaultOptions()).RadialSegments())
	opts := DefaultOptions()
	opts.Pool = ringpool.New(ringpool.Spoke{Length: 1}, 0)
	assert.Equal(t, 0, New(straight(), opts).RadialSegments())
}

func TestRenderBounds(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, r3.Box{}, New(nil, DefaultOptions()).RenderBounds())
	plain := New(straight(), DefaultOptions())
	assert.Equal(t, plain.Bounds(), plain.RenderBounds())

	tr, _, _ := pooled(t, straight()) // torus extent 2 + 0.2/2
	b := tr.RenderBounds()
	assert.True(t, tubetrack.Equal(tubetrack.W(-2.1, -2.1, -2.1), b.Min, 1e-9))
	assert.True(t, tubetrack.Equal(tubetrack.W(32.1, 2.1, 2.1), b.Max, 1e-9))

	opts := tr.Options()
	opts.SpokePool = ringpool.New(ringpool.Spoke{Length: 3}, 0)
	opts.SpokeCount = 2
	opts.Radius = 2
	spoked := New(straight(), opts) // spokes reach 2/2 + 3 from the centerline
	b = spoked.RenderBounds()
	assert.True(t, tubetrack.Equal(tubetrack.W(-4, -4, -4), b.Min, 1e-9))
	assert.True(t, tubetrack.Equal(tubetrack.W(34, 4, 4), b.Max, 1e-9))
}
