package polygon

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubetrack"
	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pg := NullPolygon().Knot(P(0, 0)).Knot(P(1, 3)).Knot(P(3, 0)).Cycle()
	L().Infof("pg = %s", AsString(pg))
	if pg.N() != 3 {
		t.Fail()
	}
	assert.Equal(t, "(0,0) -- (1,3) -- (3,0) -- cycle", AsString(pg))
	assert.Equal(t, P(0, 0), pg.Z(3))
}

func TestBox(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	box := Box(P(0, 5), P(4, 1))
	L().Infof("box = %s", AsString(box))
	if box.N() != 4 {
		t.Fail()
	}
	assert.InDelta(t, 16.0, box.Area(), 1e-9)
	bb := box.BoundingBox()
	assert.Equal(t, P(0, 1), bb.Min)
	assert.Equal(t, P(4, 5), bb.Max)
	assert.True(t, box.Contains(P(2, 3)))
	assert.False(t, box.Contains(P(5, 3)))
}

func TestCycleOfEmptyPolygonPanics(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Panics(t, func() { NullPolygon().Cycle() })
}

func TestGround(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, P(1, 3), Ground(tubetrack.W(1, 2, 3)))
}

func TestUnion(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := Box(P(0, 0), P(4, 4))
	b := Box(P(2, 2), P(6, 6))
	region := Union(a, b, nil)
	bb := region.BoundingBox()
	assert.Equal(t, P(0, 0), bb.Min)
	assert.Equal(t, P(6, 6), bb.Max)
	assert.Len(t, region, 1)
	far := Box(P(10, 10), P(12, 12))
	assert.Len(t, Union(a, far), 2)
	assert.Nil(t, Union())
}
