package lrview

import (
	"context"
	"fmt"
	"strconv"

	"oss.terrastruct.com/lrviz/lib/background"
	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrlayouts/lrtree"
	"oss.terrastruct.com/lrviz/lrtarget"
)

// TreeView shows a parse tree. The layout is computed once per viewport size; it
// has no frame loop and its nodes cannot be dragged.
type TreeView struct {
	*base

	tree   *lrgraph.Tree
	layout *lrtree.Result
}

var _ View = &TreeView{}

func NewTreeView(ctx context.Context, t *lrgraph.Tree, cfg *Config) *TreeView {
	v := &TreeView{
		base: newBase(ctx, lrtarget.KindTree, cfg),
		tree: t,
	}
	v.base.engine = v
	return v
}

func (v *TreeView) start(vp lrtarget.Viewport) {
	v.layout = lrtree.Layout(v.tree, vp.Width, vp.Height, v.cfg.treeOpts())
}

func (v *TreeView) stop() *background.Loop {
	v.layout = nil
	return nil
}

func (v *TreeView) resized(vp lrtarget.Viewport) {
	v.start(vp)
}

func (v *TreeView) step() bool {
	return false
}

func (v *TreeView) settled() bool {
	return true
}

func (v *TreeView) nodeAt(p *geo.Point) (int, bool) {
	for i := len(v.layout.Nodes) - 1; i >= 0; i-- {
		n := v.layout.Nodes[i]
		if n.Box().Contains(p) {
			return n.Index, true
		}
	}
	return 0, false
}

func (v *TreeView) dragStart(int, float64, float64) bool {
	return false
}

func (v *TreeView) dragMove(int, float64, float64) {}

func (v *TreeView) dragEnd(int) bool {
	return false
}

func (v *TreeView) scene() *lrtarget.Scene {
	s := &lrtarget.Scene{
		Shapes:      make([]lrtarget.Shape, 0, len(v.layout.Nodes)),
		Connections: make([]lrtarget.Connection, 0, len(v.layout.Links)),
	}
	for _, n := range v.layout.Nodes {
		class := "tree_non_terminal"
		if n.Terminal {
			class = "tree_terminal"
		}
		s.Shapes = append(s.Shapes, lrtarget.Shape{
			ID:           strconv.Itoa(n.Index),
			Type:         lrtarget.ShapePill,
			Classes:      []string{class},
			Pos:          *n.Box().TopLeft,
			Width:        n.Width,
			Height:       n.Height,
			BorderRadius: n.Height / 2,
			Label:        n.Text,
			Root:         n.Index == 0,
		})
	}
	for i, l := range v.layout.Links {
		s.Connections = append(s.Connections, lrtarget.Connection{
			ID:      fmt.Sprintf("tree-link-%d", i),
			Classes: []string{"tree_link"},
			Src:     strconv.Itoa(l.Source.Index),
			Dst:     strconv.Itoa(l.Target.Index),
			Route:   l.Route(v.layout.Direction),
			Curve:   lrtarget.CurveCubic,
		})
	}
	return s
}
