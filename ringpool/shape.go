package ringpool

import (
	"fmt"
	"math"
)

// Shape is the structural geometry of a pooled primitive. A pool hands out
// primitives of exactly one shape; pooled primitives differ only in their
// transform and visibility.
//
// The set of shapes is closed: Torus and Spoke.
type Shape interface {
	isShape()
}

// Torus is a ring around the track's centerline.
type Torus struct {
	Radius          float64 // distance from the centerline
	Tube            float64 // thickness of the ring
	RadialSegments  int     // tessellation around the centerline
	TubularSegments int     // tessellation around the tube
}

// Spoke is a radial or tangential accessory attached to a ring.
type Spoke struct {
	Length float64
	Width  float64
}

func (Torus) isShape() {}
func (Spoke) isShape() {}

// Describe returns a short human readable description of a shape.
func Describe(s Shape) string {
	switch sh := s.(type) {
	case Torus:
		return fmt.Sprintf("torus(r=%g,tube=%g,%dx%d)", sh.Radius, sh.Tube,
			sh.RadialSegments, sh.TubularSegments)
	case Spoke:
		return fmt.Sprintf("spoke(len=%g,w=%g)", sh.Length, sh.Width)
	case nil:
		return "<no shape>"
	}
	return "<unknown shape>"
}

// VertexCount estimates the number of vertices a renderer needs for a shape.
func VertexCount(s Shape) int {
	switch sh := s.(type) {
	case Torus:
		return (max(sh.RadialSegments, 3) + 1) * (max(sh.TubularSegments, 3) + 1)
	case Spoke:
		return 8 // a box
	}
	return 0
}

// Extent returns the largest distance of the shape's geometry from its
// local origin.
func Extent(s Shape) float64 {
	switch sh := s.(type) {
	case Torus:
		return sh.Radius + sh.Tube/2
	case Spoke:
		return math.Hypot(sh.Length, sh.Width/2)
	}
	return 0
}
