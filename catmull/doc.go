// Package catmull evaluates Catmull-Rom splines through 3D waypoints.
/*

A Catmull-Rom spline passes exactly through each of its waypoints. Between
waypoints i and i+1 the curve is a cubic Hermite segment whose tangents are
taken from the neighbouring waypoints:

   m.i   = tension * (z.[i+1] - z.[i-1])
   m.i+1 = tension * (z.[i+2] - z.[i])

Unlike the classic formulation with a fixed factor of 1/2, tension scales
the tangent influence directly. A tension of 0 yields straight connections
between waypoints (with ease-in/ease-out parametrization), 0.5 is the
classic Catmull-Rom curve, and larger values make the curve swing wider
around its waypoints.

The curve parameter t runs from 0 to N-1 for open splines and from 0 to N
for closed ones, where N is the number of waypoints. The integer part of t
selects the segment, the fractional part the position within it. For
closed splines indices wrap around modulo N, for open ones they are clamped
at the ends. Degenerate inputs never fail:

   0 waypoints           → the origin
   1 waypoint            → that waypoint, for any t
   2 waypoints, open     → linear interpolation, t clamped to [0,1]

Usage

   pts := []tubetrack.Waypoint{tubetrack.W(0,0,0), tubetrack.W(10,0,0), tubetrack.W(20,5,0)}
   sp := catmull.New(pts, 0.5, false)
   pos := sp.Position(1.5)
   frame := sp.Frame(1.5)

Frames are built from the analytic derivative of the basis functions. The
normal and binormal come from a reference "up" vector which is switched
whenever the tangent runs nearly parallel to it, so frames never degenerate.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package catmull
