// Package lrtree lays out a derivation tree with the Buchheim, Jünger and Leipert
// improvement of the Reingold-Tilford algorithm, as d3.tree does: siblings and
// adjacent subtrees are packed as tightly as the separation function allows, in
// linear time.
//
// Separation between neighbors grows with the ratio of their widths so that a
// long token next to a short one does not collide with it.
package lrtree

import (
	"math"

	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/go2"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrlayouts/lrsize"
)

const (
	DEFAULT_NODE_SIZE = lrsize.TREE_NODE_SIZE
	NODE_SPACING_X    = 50.
	NODE_SPACING_Y    = 70.
	TOP_MARGIN        = 50.
)

type Direction string

const (
	DirectionDown  Direction = "down"
	DirectionRight Direction = "right"
)

type Opts struct {
	// NodeSize is the height of a node and its minimum width.
	NodeSize  float64
	Direction Direction
}

var DefaultOpts = Opts{
	NodeSize:  DEFAULT_NODE_SIZE,
	Direction: DirectionDown,
}

type Node struct {
	Tree     *lrgraph.Tree
	Parent   *Node
	Children []*Node
	Depth    int
	// Index is the node's position in Result.Nodes.
	Index int

	Text     string
	Terminal bool
	Width    float64
	Height   float64

	// X, Y is the center of the node.
	X float64
	Y float64
}

type Link struct {
	Source *Node
	Target *Node
}

// Result lists nodes in pre-order, so Nodes[0] is the root.
type Result struct {
	Nodes     []*Node
	Links     []*Link
	Direction Direction
}

func (n *Node) Center() *geo.Point {
	return geo.NewPoint(n.X, n.Y)
}

func (n *Node) Box() *geo.Box {
	return geo.NewBoxAround(n.Center(), n.Width, n.Height)
}

// Layout positions t for a viewport of the given size. The root is centered
// horizontally TOP_MARGIN below the top, or vertically TOP_MARGIN from the left
// when laid out to the right.
func Layout(t *lrgraph.Tree, width, height float64, opts *Opts) *Result {
	if opts == nil {
		opts = &DefaultOpts
	}
	nodeSize := opts.NodeSize
	if nodeSize <= 0 {
		nodeSize = DEFAULT_NODE_SIZE
	}
	dir := opts.Direction
	if dir != DirectionRight {
		dir = DirectionDown
	}

	res := &Result{Direction: dir}
	if t == nil {
		return res
	}

	root := build(res, t, nil, 0, nodeSize)
	buchheim(root)

	for _, n := range res.Nodes {
		breadth := n.X * NODE_SPACING_X
		depth := float64(n.Depth) * NODE_SPACING_Y
		if dir == DirectionRight {
			n.X = depth + TOP_MARGIN
			n.Y = breadth + height/2
		} else {
			n.X = breadth + width/2
			n.Y = depth + TOP_MARGIN
		}
	}
	return res
}

func build(res *Result, t *lrgraph.Tree, parent *Node, depth int, nodeSize float64) *Node {
	text := t.Text()
	n := &Node{
		Tree:     t,
		Parent:   parent,
		Depth:    depth,
		Index:    len(res.Nodes),
		Text:     text,
		Terminal: t.IsTerminal(),
		Width:    lrsize.TreeNodeWidth(text, nodeSize),
		Height:   nodeSize,
	}
	res.Nodes = append(res.Nodes, n)
	if parent != nil {
		res.Links = append(res.Links, &Link{Source: parent, Target: n})
	}
	for _, c := range t.Children() {
		n.Children = append(n.Children, build(res, c, n, depth+1, nodeSize))
	}
	return n
}

// Separation is the distance between the centers of neighbors a and b in units
// of NODE_SPACING_X. It depends on the ratio of their widths only, so two equally
// wide labels are one unit apart however long they are.
func Separation(a, b *Node) float64 {
	wa := lrsize.TextWidth(a.Text)
	wb := lrsize.TextWidth(b.Text)
	return go2.Max(go2.Max(wa/wb, wb/wa)/3+0.5, 1)
}

// Route is the vertical (or horizontal) cubic link from the parent to the child.
func (l *Link) Route(dir Direction) []*geo.Point {
	s, t := l.Source.Center(), l.Target.Center()
	if dir == DirectionRight {
		mx := (s.X + t.X) / 2
		return []*geo.Point{s, geo.NewPoint(mx, s.Y), geo.NewPoint(mx, t.Y), t}
	}
	my := (s.Y + t.Y) / 2
	return []*geo.Point{s, geo.NewPoint(s.X, my), geo.NewPoint(t.X, my), t}
}

// Bounds is the smallest box containing every node.
func (r *Result) Bounds() *geo.Box {
	if len(r.Nodes) == 0 {
		return geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range r.Nodes {
		b := n.Box()
		minX = math.Min(minX, b.TopLeft.X)
		minY = math.Min(minY, b.TopLeft.Y)
		maxX = math.Max(maxX, b.TopLeft.X+b.Width)
		maxY = math.Max(maxY, b.TopLeft.Y+b.Height)
	}
	return geo.NewBox(geo.NewPoint(minX, minY), maxX-minX, maxY-minY)
}
