package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangleSVG(t *testing.T) {
	assert.Equal(t, "M10,20L2,35L18,35Z", triangle(10, 20).SVG())
}

func TestCardinalTwoPointsIsLine(t *testing.T) {
	p := cardinal([]Point{{0, 0}, {10, 10}})
	assert.Equal(t, "M0,0L10,10", p.SVG())
}

func TestCardinalDegenerateInputs(t *testing.T) {
	assert.Nil(t, cardinal(nil))

	single := cardinal([]Point{{3, 4}})
	require.Len(t, single, 1)
	assert.Equal(t, MoveTo, single[0].Op)
}

func TestCardinalControlPoints(t *testing.T) {
	p := cardinal([]Point{{0, 0}, {10, 10}, {20, 0}})
	require.Len(t, p, 3)
	assert.Equal(t, MoveTo, p[0].Op)

	first, second := p[1], p[2]
	require.Equal(t, CurveTo, first.Op)
	require.Equal(t, CurveTo, second.Op)

	// First control point of the first segment is pinned to the start
	assert.InDelta(t, 0, first.Points[0].X, 1e-9)
	assert.InDelta(t, 0, first.Points[0].Y, 1e-9)
	assert.InDelta(t, 10-20.0/6, first.Points[1].X, 1e-9)
	assert.InDelta(t, 10, first.Points[1].Y, 1e-9)
	assert.Equal(t, Point{X: 10, Y: 10}, first.Points[2])

	assert.InDelta(t, 10+20.0/6, second.Points[0].X, 1e-9)
	assert.InDelta(t, 10, second.Points[0].Y, 1e-9)
	// Second control point of the last segment is pinned to the end
	assert.InDelta(t, 20, second.Points[1].X, 1e-9)
	assert.InDelta(t, 0, second.Points[1].Y, 1e-9)
	assert.Equal(t, Point{X: 20, Y: 0}, second.Points[2])
}

func TestArea(t *testing.T) {
	p := area([]Point{{0, 10}, {10, 0}}, 50)
	assert.Equal(t, "M0,10L10,0L10,50L0,50Z", p.SVG())
	assert.Nil(t, area(nil, 50))
}

func TestFlatten(t *testing.T) {
	p := cardinal([]Point{{0, 0}, {10, 10}, {20, 0}})
	pts := p.Flatten(4)

	require.Len(t, pts, 1+2*4)
	assert.Equal(t, Point{X: 0, Y: 0}, pts[0])
	assert.InDelta(t, 10, pts[4].X, 1e-9)
	assert.InDelta(t, 10, pts[4].Y, 1e-9)
	assert.InDelta(t, 20, pts[len(pts)-1].X, 1e-9)
	assert.InDelta(t, 0, pts[len(pts)-1].Y, 1e-9)

	tri := triangle(0, 0).Flatten(0)
	assert.Len(t, tri, 3, "ClosePath is dropped and straight segments keep one point")
}
