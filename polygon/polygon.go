/*
Package polygon deals with ground footprints of tracks.

Footprints are polygons in the XZ ground plane, built from contours of
polyclip-go. Clients build them from knots, much like paths:

	pg := NullPolygon().Knot(P(0,0)).Knot(P(1,3)).Knot(P(3,0)).Cycle()

Footprints of several tracks may be combined with Union, e.g. to find the
ground area covered by a scene.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package polygon

import (
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubetrack"
)

// L traces with key 'polygon'.
func L() tracing.Trace {
	return tracing.Select("polygon")
}

// Polygon is a single contour in the ground plane.
type Polygon struct {
	contour polyclip.Contour
	cycle   bool
}

// P is a quick notation for a ground point (x,z).
func P(x, z float64) polyclip.Point {
	return polyclip.Point{X: x, Y: z}
}

// Ground projects a waypoint onto the XZ ground plane.
func Ground(w tubetrack.Waypoint) polyclip.Point {
	return P(w.X, w.Z)
}

// NullPolygon creates an empty polygon, to be extended by Knot calls.
func NullPolygon() *Polygon {
	return &Polygon{}
}

// Knot appends a corner to a polygon. Part of builder functionality.
func (pg *Polygon) Knot(p polyclip.Point) *Polygon {
	pg.contour.Add(p)
	return pg
}

// Cycle closes a polygon. Part of builder functionality.
func (pg *Polygon) Cycle() *Polygon {
	if pg.N() == 0 {
		panic("cannot close empty polygon")
	}
	pg.cycle = true
	return pg
}

// Box creates a rectangular polygon from two opposite corners.
func Box(topleft, bottomright polyclip.Point) *Polygon {
	return NullPolygon().Knot(topleft).Knot(P(bottomright.X, topleft.Y)).
		Knot(bottomright).Knot(P(topleft.X, bottomright.Y)).Cycle()
}

// N returns the number of corners.
func (pg *Polygon) N() int {
	return len(pg.contour)
}

// Z returns the corner at position (i mod N).
func (pg *Polygon) Z(i int) polyclip.Point {
	n := pg.N()
	i %= n
	if i < 0 {
		i += n
	}
	return pg.contour[i]
}

// IsCycle is a predicate: is this polygon closed?
func (pg *Polygon) IsCycle() bool {
	return pg.cycle
}

// Contour returns the polygon's corners as a polyclip contour.
func (pg *Polygon) Contour() polyclip.Contour {
	return pg.contour
}

// BoundingBox returns the axis-aligned bounding rectangle of a polygon.
func (pg *Polygon) BoundingBox() polyclip.Rectangle {
	if pg.N() == 0 {
		return polyclip.Rectangle{}
	}
	return pg.contour.BoundingBox()
}

// Contains is a predicate: is p inside the polygon?
func (pg *Polygon) Contains(p polyclip.Point) bool {
	if pg.N() < 3 {
		return false
	}
	return pg.contour.Contains(p)
}

// Area returns the (unsigned) area of a simple polygon.
func (pg *Polygon) Area() float64 {
	var a float64
	for i := 0; i < pg.N(); i++ {
		p, q := pg.Z(i), pg.Z(i+1)
		a += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(a) / 2
}

// Union combines polygons into one region. Overlapping polygons are merged,
// disjoint ones are kept as separate contours.
func Union(pgs ...*Polygon) polyclip.Polygon {
	var region polyclip.Polygon
	for _, pg := range pgs {
		if pg == nil || pg.N() < 3 {
			continue
		}
		subject := polyclip.Polygon{pg.contour}
		if region == nil {
			region = subject
			continue
		}
		region = region.Construct(polyclip.UNION, subject)
	}
	L().Debugf("union of %d polygons has %d contours", len(pgs), len(region))
	return region
}

// AsString returns a polygon as a (debugging) string.
func AsString(pg *Polygon) string {
	var s string
	for i, pt := range pg.contour {
		if i > 0 {
			s += " -- "
		}
		s += fmt.Sprintf("(%.4g,%.4g)", pt.X, pt.Y)
	}
	if pg.IsCycle() {
		s += " -- cycle"
	}
	return s
}
