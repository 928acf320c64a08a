package stream

import (
	"math"

	"github.com/npillmayer/tubetrack"
	"github.com/ojrac/opensimplex-go"
)

// Variation perturbs generated waypoints, e.g. for procedural variety or
// to follow an external signal.
type Variation interface {
	// Variation returns the offset for waypoint index, given the position of
	// the previous waypoint.
	Variation(index int, prev tubetrack.Waypoint) tubetrack.Waypoint
}

// VariationFunc adapts a function to the Variation interface. It is the
// natural choice for externally driven sources, like audio levels.
type VariationFunc func(index int, prev tubetrack.Waypoint) tubetrack.Waypoint

// Variation calls f.
func (f VariationFunc) Variation(index int, prev tubetrack.Waypoint) tubetrack.Waypoint {
	return f(index, prev)
}

// None is the variation which leaves waypoints unchanged.
type None struct{}

// Variation returns the zero offset.
func (None) Variation(int, tubetrack.Waypoint) tubetrack.Waypoint {
	return tubetrack.Origin
}

// Noise perturbs waypoints with smooth OpenSimplex noise, one independent
// noise channel per axis. Consecutive indices yield similar offsets, so the
// track meanders instead of jittering.
type Noise struct {
	Amplitude tubetrack.Waypoint // maximum offset per axis
	Frequency float64            // noise cycles per waypoint
	noise     opensimplex.Noise
}

// Noise channels are rows of the 2D noise field, far enough apart to be
// uncorrelated.
var noiseChannels = [3]float64{0, 57.3, 114.6}

// NewNoise creates a noise variation with a reproducible seed.
func NewNoise(amplitude tubetrack.Waypoint, frequency float64, seed uint64) *Noise {
	return &Noise{
		Amplitude: amplitude,
		Frequency: frequency,
		noise:     opensimplex.New(int64(seed)),
	}
}

// Variation returns the noise offset for index.
func (n *Noise) Variation(index int, _ tubetrack.Waypoint) tubetrack.Waypoint {
	x := float64(index) * n.Frequency
	return tubetrack.W(
		n.Amplitude.X*n.at(x, 0),
		n.Amplitude.Y*n.at(x, 1),
		n.Amplitude.Z*n.at(x, 2),
	)
}

// at evaluates channel ch of the noise at x. Results are in [-1,1].
func (n *Noise) at(x float64, ch int) float64 {
	v := n.noise.Eval2(x, noiseChannels[ch])
	return math.Max(-1, math.Min(1, v))
}
