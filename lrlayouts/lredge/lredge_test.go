package lredge_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrlayouts/lredge"
)

func box(cx, cy, w, h float64) *geo.Box {
	return geo.NewBoxAround(geo.NewPoint(cx, cy), w, h)
}

func requireFinite(t *testing.T, e *lredge.Edge) {
	t.Helper()
	for _, p := range []*geo.Point{e.Start, e.Control, e.End, e.Label} {
		require.True(t, p.IsFinite(), "non-finite point %v", p.ToString())
	}
	require.False(t, math.IsNaN(e.Angle))
}

func TestRouteHorizontal(t *testing.T) {
	t.Parallel()

	src := box(0, 0, 100, 50)
	dst := box(300, 0, 100, 50)
	e := lredge.Route(src, dst, 0, nil)
	requireFinite(t, e)

	assert.Equal(t, 50., e.Start.X)
	assert.Equal(t, 0., e.Start.Y)
	assert.InDelta(t, 250., e.End.X, 1e-9)
	assert.InDelta(t, 0., e.End.Y, 1e-9)

	// chord 200, bowed by 10% to the left of travel
	assert.InDelta(t, 150., e.Control.X, 1e-9)
	assert.InDelta(t, 20., e.Control.Y, 1e-9)

	// label beside the chord, on the side the curve does not bow to
	assert.InDelta(t, 80., e.Label.X, 1e-9)
	assert.InDelta(t, -5., e.Label.Y, 1e-9)

	assert.Equal(t, "M 50 0 Q 150 20 250 0", e.PathData())
}

func TestRouteEndpointsOnBoundaries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src, dst *geo.Box
	}{
		{name: "right", src: box(0, 0, 100, 66), dst: box(400, 10, 120, 50)},
		{name: "below", src: box(0, 0, 100, 66), dst: box(30, 500, 100, 82)},
		{name: "diagonal", src: box(0, 0, 100, 50), dst: box(-200, -200, 200, 50)},
		{name: "overlapping", src: box(0, 0, 100, 50), dst: box(10, 5, 100, 50)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := lredge.Route(tc.src, tc.dst, 0, nil)
			requireFinite(t, e)
			assert.True(t, tc.src.OnBoundary(e.Start, 1e-6), "start %v", e.Start.ToString())
			assert.True(t, tc.dst.OnBoundary(e.End, 1e-6), "end %v", e.End.ToString())
		})
	}
}

func TestRouteOppositeSides(t *testing.T) {
	t.Parallel()

	a := box(0, 0, 100, 50)
	b := box(300, 0, 100, 50)
	ab := lredge.Route(a, b, 0, nil)
	ba := lredge.Route(b, a, 0, nil)
	assert.Greater(t, ab.Control.Y, 0.)
	assert.Less(t, ba.Control.Y, 0.)
	assert.Less(t, ab.Label.Y, 0.)
	assert.Greater(t, ba.Label.Y, 0.)
}

// distanceToCurve samples the quadratic densely and returns the closest approach to p.
func distanceToCurve(e *lredge.Edge, p *geo.Point) float64 {
	const samples = 20000
	closest := math.Inf(1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		a := (1 - t) * (1 - t)
		b := 2 * (1 - t) * t
		c := t * t
		x := a*e.Start.X + b*e.Control.X + c*e.End.X
		y := a*e.Start.Y + b*e.Control.Y + c*e.End.Y
		closest = math.Min(closest, math.Hypot(x-p.X, y-p.Y))
	}
	return closest
}

func TestRouteLabelBesideCurve(t *testing.T) {
	t.Parallel()

	src := box(0, 0, 100, 50)
	testCases := []struct {
		name string
		dst  *geo.Box
	}{
		{name: "right", dst: box(300, 0, 100, 50)},
		{name: "diagonal", dst: box(300, 300, 100, 50)},
		{name: "below", dst: box(0, 400, 100, 50)},
		{name: "up_left", dst: box(-250, 120, 100, 50)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 3; i++ {
				e := lredge.Route(src, tc.dst, i, nil)
				requireFinite(t, e)
				d := distanceToCurve(e, e.Label)
				assert.GreaterOrEqual(t, d, lredge.LABEL_NUDGE/2, "index %d: label %v is %v from its curve", i, e.Label.ToString(), d)
			}
		})
	}
}

func TestRouteCoincidentCentersOppositeSides(t *testing.T) {
	t.Parallel()

	g := &lrgraph.Graph{
		Nodes: []*lrgraph.Node{
			{ID: 0, X: 0, Y: 0, Width: 100, Height: 50},
			{ID: 1, X: 0, Y: 0, Width: 100, Height: 50},
		},
		Links: []*lrgraph.Link{
			{Source: 0, Target: 1, Label: "a"},
			{Source: 1, Target: 0, Label: "b"},
		},
	}
	edges := lredge.RouteGraph(g, nil)
	require.Len(t, edges, 2)
	requireFinite(t, edges[0])
	requireFinite(t, edges[1])
	assert.False(t, edges[0].Control.Equals(edges[1].Control), "both controls at %v", edges[0].Control.ToString())
	assert.InDelta(t, -10., edges[0].Control.Y, 1e-9)
	assert.InDelta(t, 10., edges[1].Control.Y, 1e-9)
}

func TestRouteParallel(t *testing.T) {
	t.Parallel()

	a := box(0, 0, 100, 50)
	b := box(300, 0, 100, 50)
	e0 := lredge.Route(a, b, 0, nil)
	e1 := lredge.Route(a, b, 1, nil)
	e2 := lredge.Route(a, b, 2, nil)
	assert.Less(t, e0.Control.Y, e1.Control.Y)
	assert.Less(t, e1.Control.Y, e2.Control.Y)
	assert.InDelta(t, 40., e1.Control.Y, 1e-9)
	assert.NotEqual(t, e0.Label.Y, e1.Label.Y)
	assert.NotEqual(t, e1.Label.Y, e2.Label.Y)
}

func TestRouteCustomOpts(t *testing.T) {
	t.Parallel()

	e := lredge.Route(box(0, 0, 100, 50), box(300, 0, 100, 50), 0, &lredge.Opts{
		CurveFactor: 0.5,
		LabelOffset: 10,
	})
	assert.InDelta(t, 100., e.Control.Y, 1e-9)
	assert.InDelta(t, 60., e.Label.X, 1e-9)
}

func TestRouteDegenerate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src, dst *geo.Box
	}{
		{name: "coincident", src: box(10, 10, 100, 50), dst: box(10, 10, 100, 50)},
		{name: "zero_size", src: box(0, 0, 0, 0), dst: box(0, 0, 0, 0)},
		{name: "zero_size_apart", src: box(0, 0, 0, 0), dst: box(100, 0, 0, 0)},
		{name: "nan", src: box(math.NaN(), 0, 100, 50), dst: box(0, 0, 100, 50)},
		{name: "inf", src: box(math.Inf(1), 0, 100, 50), dst: box(0, 0, 100, 50)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := lredge.Route(tc.src, tc.dst, 0, nil)
			requireFinite(t, e)
			assert.False(t, e.SelfLoop)
		})
	}
}

func TestSelfLoop(t *testing.T) {
	t.Parallel()

	b := box(100, 100, 100, 50)
	e := lredge.Route(b, b, 0, nil)
	requireFinite(t, e)
	assert.True(t, e.SelfLoop)
	assert.Equal(t, 75., e.Start.X)
	assert.Equal(t, 75., e.Start.Y)
	assert.Equal(t, 125., e.End.X)
	assert.Equal(t, 75., e.End.Y)
	assert.Less(t, e.Control.Y, b.TopLeft.Y)
	assert.Equal(t, 100., e.Label.X)
	assert.Equal(t, 40., e.Label.Y)

	e2 := lredge.Route(b, b, 1, nil)
	assert.Less(t, e2.Label.Y, e.Label.Y)
}

func TestRouteGraph(t *testing.T) {
	t.Parallel()

	g := &lrgraph.Graph{
		Nodes: []*lrgraph.Node{
			{ID: 0, X: 0, Y: 0, Width: 100, Height: 50},
			{ID: 1, X: 400, Y: 0, Width: 100, Height: 50},
		},
		Links: []*lrgraph.Link{
			{Source: 0, Target: 1, Label: "+"},
			{Source: 1, Target: 1, Label: "n"},
		},
	}
	edges := lredge.RouteGraph(g, nil)
	require.Len(t, edges, 2)
	assert.False(t, edges[0].SelfLoop)
	assert.True(t, edges[1].SelfLoop)
	assert.True(t, g.Nodes[0].Box().OnBoundary(edges[0].Start, 1e-9))
	assert.True(t, g.Nodes[1].Box().OnBoundary(edges[0].End, 1e-9))
}
