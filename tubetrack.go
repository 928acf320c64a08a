/*
Package tubetrack implements the shared geometry types for procedural
spline tracks: waypoints, local frames, orientations and parameter ranges.

The sub-packages build on these types:

	catmull   – Catmull-Rom evaluation of positions and frames
	ringpool  – a reusable arena of render-primitive handles
	track     – a tube-like track of rings along a spline
	stream    – endless generation of waypoints ahead of a player
	polygon   – ground footprints of tracks

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package tubetrack

import (
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// tracer writes to trace with key 'tubetrack'
func tracer() tracing.Trace {
	return tracing.Select("tubetrack")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
var Deg2Rad float64 = 0.01745329251

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// === Waypoints =============================================================

// Waypoint is a point in 3D space. Tracks own copies of their waypoints.
type Waypoint = r3.Vec

// Origin represents the frequently used constant (0,0,0).
var Origin = W(0, 0, 0)

// Default axes, used as fallbacks for degenerate directions.
var (
	XAxis = W(1, 0, 0)
	YAxis = W(0, 1, 0)
	ZAxis = W(0, 0, 1)
)

// W is a quick notation for constructing a waypoint from floats.
func W(x, y, z float64) Waypoint {
	return r3.Vec{X: x, Y: y, Z: z}
}

// String is a pretty printer for waypoints.
func String(w Waypoint) string {
	return fmt.Sprintf("(%g,%g,%g)", Zap(w.X), Zap(w.Y), Zap(w.Z))
}

// Equal compares two waypoints, allowing for a tolerance of tol per axis.
func Equal(a, b Waypoint, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// IsValid is a predicate: are all coordinates of w finite?
func IsValid(w Waypoint) bool {
	for _, c := range [...]float64{w.X, w.Y, w.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b Waypoint, u float64) Waypoint {
	return r3.Add(a, r3.Scale(u, r3.Sub(b, a)))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Waypoint) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Normalize returns v scaled to unit length. Vectors shorter than ε cannot
// be normalized; for them fallback is returned instead, and ok is false.
func Normalize(v, fallback Waypoint) (n Waypoint, ok bool) {
	l := r3.Norm(v)
	if l <= Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		tracer().Debugf("cannot normalize %s, falling back to %s", String(v), String(fallback))
		return fallback, false
	}
	return r3.Scale(1/l, v), true
}

// === Parameter Range =======================================================

// ParameterRange is the valid domain of the curve parameter t.
// Max ≤ 0 means that there is no renderable geometry.
type ParameterRange struct {
	Min, Max float64
}

// RangeFor returns the parameter range for a curve through n waypoints.
// Open curves end at the last waypoint (n-1), closed curves wrap around
// to the first one (n).
func RangeFor(n int, closed bool) ParameterRange {
	if n < 2 {
		return ParameterRange{}
	}
	if closed {
		return ParameterRange{Min: 0, Max: float64(n)}
	}
	return ParameterRange{Min: 0, Max: float64(n - 1)}
}

// IsEmpty is a predicate: does r contain any renderable geometry?
func (r ParameterRange) IsEmpty() bool {
	return r.Max <= 0
}

// Clamp restricts t to r.
func (r ParameterRange) Clamp(t float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, t))
}

func (r ParameterRange) String() string {
	return fmt.Sprintf("[%g..%g]", r.Min, r.Max)
}

// === Frames and Orientation ================================================

// Frame is a local orthonormal basis along a curve. It is derived data and
// is recomputed whenever geometry is rebuilt.
type Frame struct {
	Tangent  Waypoint
	Normal   Waypoint
	Binormal Waypoint
}

// DefaultFrame is the frame of a curve running along the z-axis.
var DefaultFrame = Frame{Tangent: ZAxis, Normal: XAxis, Binormal: YAxis}

// FrameFromTangent builds a frame around a tangent direction. The reference
// "up" vector is the y-axis, unless the tangent is nearly parallel to it;
// then the x-axis is used. The result is right-handed: Normal × Binormal = Tangent.
func FrameFromTangent(tangent Waypoint) Frame {
	T, ok := Normalize(tangent, ZAxis)
	if !ok {
		return DefaultFrame
	}
	up := YAxis
	if math.Abs(r3.Dot(T, up)) > 0.999 {
		up = XAxis
	}
	N, ok := Normalize(r3.Cross(up, T), XAxis)
	if !ok {
		return DefaultFrame
	}
	B := r3.Cross(T, N)
	return Frame{Tangent: T, Normal: N, Binormal: B}
}

// Matrix returns the rotation matrix with columns [normal | binormal | tangent].
func (f Frame) Matrix() AT {
	m := newAT()
	m.setCol(0, f.Normal)
	m.setCol(1, f.Binormal)
	m.setCol(2, f.Tangent)
	return m
}

// Euler returns the orientation of f as YXZ Euler angles.
func (f Frame) Euler() Euler {
	return f.Matrix().EulerYXZ()
}

// Euler holds rotation angles in radians, to be applied in order Y, X, Z.
type Euler struct {
	Yaw, Pitch, Roll float64
}

func (e Euler) String() string {
	return fmt.Sprintf("(yaw=%.4g°,pitch=%.4g°,roll=%.4g°)",
		Zap(e.Yaw)/Deg2Rad, Zap(e.Pitch)/Deg2Rad, Zap(e.Roll)/Deg2Rad)
}

// === Rotation Matrix =======================================================

// AT is a 3x3 matrix, flattened by rows, used for orientations.
type AT []float64

// Internal constructor.
func newAT() AT {
	m := make([]float64, 9)
	return m
}

func (m AT) get(row, col int) float64 {
	return m[row*3+col]
}

func (m AT) set(row, col int, value float64) {
	m[row*3+col] = value
}

func (m AT) setCol(col int, v Waypoint) {
	m.set(0, col, v.X)
	m.set(1, col, v.Y)
	m.set(2, col, v.Z)
}

// Debug Stringer for a matrix.
func (m AT) String() string {
	s := fmt.Sprintf("[%g,%g,%g|%g,%g,%g|%g,%g,%g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
	return s
}

// EulerYXZ extracts Euler angles in YXZ order from a matrix with columns
// [N | B | T]:
//
//	yaw   = atan2(Tx, Tz)
//	pitch = atan2(-Ty, sqrt(Ny² + By²))
//	roll  = atan2(Ny, By)
//
// Downstream orientation composition depends on exactly this convention.
func (m AT) EulerYXZ() Euler {
	tx, ty, tz := m.get(0, 2), m.get(1, 2), m.get(2, 2)
	ny, by := m.get(1, 0), m.get(1, 1)
	return Euler{
		Yaw:   math.Atan2(tx, tz),
		Pitch: math.Atan2(-ty, math.Sqrt(ny*ny+by*by)),
		Roll:  math.Atan2(ny, by),
	}
}

// Transform multiplies a vector by m. For a frame's matrix this maps ring
// coordinates (normal, binormal, tangent) to world coordinates.
func (m AT) Transform(v Waypoint) Waypoint {
	return W(
		m.get(0, 0)*v.X+m.get(0, 1)*v.Y+m.get(0, 2)*v.Z,
		m.get(1, 0)*v.X+m.get(1, 1)*v.Y+m.get(1, 2)*v.Z,
		m.get(2, 0)*v.X+m.get(2, 1)*v.Y+m.get(2, 2)*v.Z,
	)
}
