package track

import (
	"time"

	"github.com/npillmayer/tubetrack/ringpool"
)

// PhaseFunc returns the phase advance (in degrees) for ring i of total, at
// curve parameter t. Phases accumulate along the track and rotate the
// spokes of a ring around the centerline, independent of the ring's frame.
type PhaseFunc func(t float64, i, total int) float64

// ConstantTwist advances the phase by degreesPerSpan for every span between
// two waypoints, evenly distributed over the rings of the span.
func ConstantTwist(degreesPerSpan float64, segmentsPerSpan int) PhaseFunc {
	step := degreesPerSpan / float64(max(1, segmentsPerSpan))
	return func(t float64, i, total int) float64 {
		if i == 0 {
			return 0
		}
		return step
	}
}

// Options configure a track. Pools are referenced, not owned: the caller
// creates them and may share them between tracks.
type Options struct {
	Name            string        // name of the track's scene container
	Tension         float64       // 0 = sharp corners, 1 = loose curves
	Closed          bool          // closed loop?
	SegmentsPerSpan int           // rings per span between two waypoints, ≥ 1
	Radius          float64       // distance of spokes from the centerline
	RingSkip        int           // render a ring primitive every n-th ring, ≥ 1
	SpokeSkip       int           // render spokes on every n-th ring, ≥ 1
	SpokeCount      int           // spokes per ring
	PhaseAdvance    PhaseFunc     // nil = no twist
	RebuildInterval time.Duration // minimum time between throttled rebuilds
	Pool            *ringpool.Pool
	SpokePool       *ringpool.Pool
}

// Default values for options.
const (
	DefaultTension         = 0.5
	DefaultSegmentsPerSpan = 10
	DefaultRadius          = 2.0
	DefaultRebuildInterval = 16 * time.Millisecond
)

// DefaultOptions returns options for an open track without spokes or pools.
func DefaultOptions() Options {
	return Options{
		Name:            "track",
		Tension:         DefaultTension,
		SegmentsPerSpan: DefaultSegmentsPerSpan,
		Radius:          DefaultRadius,
		RingSkip:        1,
		SpokeSkip:       1,
		RebuildInterval: DefaultRebuildInterval,
	}
}

// normalize replaces out-of-range values by their defaults.
func (o Options) normalize() Options {
	if o.SegmentsPerSpan < 1 {
		o.SegmentsPerSpan = DefaultSegmentsPerSpan
	}
	if o.RingSkip < 1 {
		o.RingSkip = 1
	}
	if o.SpokeSkip < 1 {
		o.SpokeSkip = 1
	}
	if o.SpokeCount < 0 {
		o.SpokeCount = 0
	}
	if o.RebuildInterval < 0 {
		o.RebuildInterval = 0
	}
	if o.PhaseAdvance == nil {
		o.PhaseAdvance = func(float64, int, int) float64 { return 0 }
	}
	if o.Name == "" {
		o.Name = "track"
	}
	return o
}
