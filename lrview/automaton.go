package lrview

import (
	"context"
	"fmt"
	"strconv"

	"cdr.dev/slog"

	"oss.terrastruct.com/lrviz/lib/background"
	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrlayouts/lredge"
	"oss.terrastruct.com/lrviz/lrlayouts/lrforce"
	"oss.terrastruct.com/lrviz/lrlayouts/lrsize"
	"oss.terrastruct.com/lrviz/lrtarget"
)

const STATE_BORDER_RADIUS = 6

// AutomatonView shows the states of an LR automaton as boxes pushed around by a
// force simulation, one simulation step per frame.
type AutomatonView struct {
	*base

	automaton *lrgraph.Automaton

	graph *lrgraph.Graph
	sim   *lrforce.Simulation
	loop  *background.Loop
	// drags maps a dragged node's index to the pointer's offset from its center.
	drags map[int]*geo.Point
}

var _ View = &AutomatonView{}

func NewAutomatonView(ctx context.Context, a *lrgraph.Automaton, cfg *Config) *AutomatonView {
	v := &AutomatonView{
		base:      newBase(ctx, lrtarget.KindAutomaton, cfg),
		automaton: a,
	}
	v.base.engine = v
	return v
}

func (v *AutomatonView) start(vp lrtarget.Viewport) {
	v.graph = lrgraph.NewGraph(v.ctx, v.automaton, lrsize.Default)
	c := vp.Center()
	v.sim = lrforce.Layout(v.graph, c.X, c.Y, v.cfg.forceOpts())
	v.drags = make(map[int]*geo.Point)
	if v.cfg.FrameInterval > 0 {
		v.loop = background.Repeat(v.frame, v.cfg.FrameInterval)
	}
	log.Debug(v.ctx, "simulation started",
		slog.F("states", len(v.graph.Nodes)),
		slog.F("transitions", len(v.graph.Links)),
	)
}

func (v *AutomatonView) frame() {
	v.update(v.step)
}

func (v *AutomatonView) stop() *background.Loop {
	loop := v.loop
	v.loop = nil
	v.sim = nil
	v.graph = nil
	v.drags = nil
	return loop
}

func (v *AutomatonView) resized(vp lrtarget.Viewport) {
	c := vp.Center()
	v.sim.SetCenter(c.X, c.Y)
	v.sim.Restart()
}

func (v *AutomatonView) step() bool {
	if v.sim.Settled() {
		return false
	}
	v.sim.Step()
	return true
}

func (v *AutomatonView) settled() bool {
	return v.sim.Settled()
}

func (v *AutomatonView) nodeAt(p *geo.Point) (int, bool) {
	for i := len(v.graph.Nodes) - 1; i >= 0; i-- {
		n := v.graph.Nodes[i]
		if n.Box().Contains(p) {
			return n.ID, true
		}
	}
	return 0, false
}

// dragStart pins the node where it is. The first drag keeps the simulation warm
// until the last one ends.
func (v *AutomatonView) dragStart(id int, x, y float64) bool {
	n, ok := v.graph.Node(id)
	if !ok {
		return false
	}
	if _, dragging := v.drags[id]; dragging {
		return false
	}
	if len(v.drags) == 0 {
		v.sim.SetAlphaTarget(lrforce.DRAG_ALPHA_TARGET)
	}
	n.Pin(n.X, n.Y)
	v.drags[id] = geo.NewPoint(n.X-x, n.Y-y)
	return true
}

func (v *AutomatonView) dragMove(id int, x, y float64) {
	offset, ok := v.drags[id]
	if !ok {
		return
	}
	n, _ := v.graph.Node(id)
	n.Pin(x+offset.X, y+offset.Y)
}

func (v *AutomatonView) dragEnd(id int) bool {
	if _, ok := v.drags[id]; !ok {
		return false
	}
	delete(v.drags, id)
	n, _ := v.graph.Node(id)
	n.Unpin()
	if len(v.drags) == 0 {
		v.sim.SetAlphaTarget(0)
	}
	return true
}

func (v *AutomatonView) scene() *lrtarget.Scene {
	s := &lrtarget.Scene{
		Shapes:      make([]lrtarget.Shape, 0, len(v.graph.Nodes)),
		Connections: make([]lrtarget.Connection, 0, len(v.graph.Links)),
	}
	for i, n := range v.graph.Nodes {
		b := n.Box()
		s.Shapes = append(s.Shapes, lrtarget.Shape{
			ID:           strconv.Itoa(n.ID),
			Type:         lrtarget.ShapeRectangle,
			Classes:      []string{"automaton_node"},
			Pos:          *b.TopLeft,
			Width:        n.Width,
			Height:       n.Height,
			BorderRadius: STATE_BORDER_RADIUS,
			Label:        n.Label,
			Lines:        n.Lines,
			Root:         i == 0,
			Pinned:       n.Pinned(),
		})
	}

	edges := lredge.RouteGraph(v.graph, v.cfg.edgeOpts())
	for i, l := range v.graph.Links {
		e := edges[i]
		s.Connections = append(s.Connections, lrtarget.Connection{
			ID:            fmt.Sprintf("link-%d", i),
			Classes:       []string{"automaton_link"},
			Src:           strconv.Itoa(v.graph.Nodes[l.Source].ID),
			Dst:           strconv.Itoa(v.graph.Nodes[l.Target].ID),
			Route:         e.Route(),
			Curve:         lrtarget.CurveQuadratic,
			Label:         l.Label,
			LabelPosition: e.Label,
			DstArrow:      true,
			SelfLoop:      e.SelfLoop,
		})
	}
	return s
}
