// Package lredge computes the curves and label anchors of automaton transitions.
//
// A transition leaves its source rectangle where the ray between the two centers
// crosses the border and enters its target the same way. The curve is a quadratic
// Bézier bowed to the left of its direction of travel, so a pair of opposite
// transitions never overlap. Labels sit on the other side of the chord from the
// bow. Nothing here returns NaN or Inf, whatever the boxes.
package lredge

import (
	"math"

	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/svg"
	"oss.terrastruct.com/lrviz/lrgraph"
)

const (
	DEFAULT_CURVE_FACTOR = 0.1
	DEFAULT_LABEL_OFFSET = 30.

	// LABEL_NUDGE moves a label off its chord, away from the bow.
	LABEL_NUDGE = 5.
	// LABEL_SPACING separates the labels of parallel transitions.
	LABEL_SPACING = 16.
)

type Opts struct {
	CurveFactor float64
	LabelOffset float64
}

var DefaultOpts = Opts{
	CurveFactor: DEFAULT_CURVE_FACTOR,
	LabelOffset: DEFAULT_LABEL_OFFSET,
}

// Edge is a quadratic curve from Start to End through Control, with the anchor of
// its label.
type Edge struct {
	Start   *geo.Point
	Control *geo.Point
	End     *geo.Point
	Label   *geo.Point
	// Angle is the direction of travel from source center to target center.
	Angle    float64
	SelfLoop bool
}

// Route returns the i-th curve from src to dst. Parallel transitions in the same
// direction bow progressively further out. Passing the same box twice routes a
// self loop. Boxes with coincident centers are routed as if dst lay to the right.
func Route(src, dst *geo.Box, index int, opts *Opts) *Edge {
	return route(src, dst, index, 0, opts)
}

// route falls back to angle when the centers coincide.
func route(src, dst *geo.Box, index int, fallback float64, opts *Opts) *Edge {
	if opts == nil {
		opts = &DefaultOpts
	}
	if src == dst {
		return selfLoop(src, index, opts)
	}

	angle := fallback
	if !src.Center().Equals(dst.Center()) {
		angle = src.Center().AngleTo(dst.Center())
	}
	start := src.ExitPoint(angle)
	end := dst.ExitPoint(angle + math.Pi)

	dir := geo.NewVectorFromAngle(1, angle)
	chord := start.VectorTo(end)
	side := chord.Unit().Normal()
	if chord.Length() == 0 {
		side = dir.Normal()
	}
	bow := chord.Length() * opts.CurveFactor * float64(index+1)
	control := start.Interpolate(end, 0.5).AddVector(side.Multiply(bow))

	// The curve stays on the bow side of its chord, the label on the other.
	nudge := LABEL_NUDGE + LABEL_SPACING*float64(index)
	label := start.
		AddVector(dir.Multiply(opts.LabelOffset)).
		AddVector(side.Multiply(-nudge))

	return sanitize(&Edge{
		Start:   start,
		Control: control,
		End:     end,
		Label:   label,
		Angle:   angle,
	})
}

// selfLoop rises from the top of b and comes back down, stacking parallel loops.
func selfLoop(b *geo.Box, index int, opts *Opts) *Edge {
	c := b.Center()
	top := b.TopLeft.Y
	height := opts.LabelOffset * float64(index+1)
	start := geo.NewPoint(c.X-b.Width/4, top)
	end := geo.NewPoint(c.X+b.Width/4, top)
	// The peak of a quadratic sits halfway to its control point.
	control := geo.NewPoint(c.X, top-2*height)
	label := geo.NewPoint(c.X, top-height-LABEL_NUDGE)
	return sanitize(&Edge{
		Start:    start,
		Control:  control,
		End:      end,
		Label:    label,
		Angle:    -math.Pi / 2,
		SelfLoop: true,
	})
}

// RouteGraph routes every link of g from the current node positions.
func RouteGraph(g *lrgraph.Graph, opts *Opts) []*Edge {
	boxes := make([]*geo.Box, len(g.Nodes))
	for i, n := range g.Nodes {
		boxes[i] = n.Box()
	}
	edges := make([]*Edge, len(g.Links))
	for i, l := range g.Links {
		// Opposite links between stacked nodes still need opposite sides.
		fallback := 0.
		if l.Source > l.Target {
			fallback = math.Pi
		}
		edges[i] = route(boxes[l.Source], boxes[l.Target], l.Index, fallback, opts)
	}
	return edges
}

// Route is the polyline of the curve's defining points: start, control, end.
func (e *Edge) Route() []*geo.Point {
	return []*geo.Point{e.Start, e.Control, e.End}
}

func (e *Edge) PathData() string {
	pc := svg.NewSVGPathContext()
	pc.StartAt(e.Start)
	pc.Q(e.Control, e.End)
	return pc.PathData()
}

// sanitize zeroes anything a degenerate box could have made non-finite.
func sanitize(e *Edge) *Edge {
	for _, p := range []*geo.Point{e.Start, e.Control, e.End, e.Label} {
		if !geo.IsFinite(p.X) {
			p.X = 0
		}
		if !geo.IsFinite(p.Y) {
			p.Y = 0
		}
	}
	if !geo.IsFinite(e.Angle) {
		e.Angle = 0
	}
	return e
}
