// Package lrgraph holds the inputs of lrviz, an LR automaton and a derivation tree,
// and the node/link graph the automaton view lays out.
//
// The graph is an arena: nodes live in Graph.Nodes and links refer to them by
// index. It is rebuilt wholesale whenever the input changes.
package lrgraph

import (
	"context"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lrlayouts/lrsize"
)

type Graph struct {
	Nodes []*Node
	Links []*Link

	index map[int]int
}

// Node is one automaton state. Width and Height are fixed at construction.
// X, Y, VX, VY and the FX, FY pin are owned by the force simulation.
type Node struct {
	ID     int
	Label  string
	Lines  []string
	Width  float64
	Height float64

	X  float64
	Y  float64
	VX float64
	VY float64
	FX *float64
	FY *float64
}

// Link is a directed transition between Graph.Nodes[Source] and Graph.Nodes[Target].
type Link struct {
	Source int
	Target int
	Label  string
	// Index is the ordinal of this link among the links with the same Source and
	// Target, in input order.
	Index int
}

func (n *Node) Center() *geo.Point {
	return geo.NewPoint(n.X, n.Y)
}

func (n *Node) Box() *geo.Box {
	return geo.NewBoxAround(n.Center(), n.Width, n.Height)
}

func (n *Node) Pinned() bool {
	return n.FX != nil || n.FY != nil
}

func (n *Node) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
}

func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// NewGraph builds the graph of a. Transitions whose target state does not exist and
// states whose id was already seen are skipped with a warning.
func NewGraph(ctx context.Context, a *Automaton, sizer lrsize.Sizer) *Graph {
	g := &Graph{
		index: make(map[int]int),
	}
	if a == nil {
		return g
	}

	var states []*State
	for _, st := range a.States {
		if st == nil {
			continue
		}
		if _, ok := g.index[st.ID]; ok {
			log.Warn(ctx, "skipping duplicate state", slog.F("id", st.ID))
			continue
		}
		w, h := sizer.Size(st.Items)
		states = append(states, st)
		g.index[st.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, &Node{
			ID:     st.ID,
			Label:  fmt.Sprintf("S%d", st.ID),
			Lines:  st.Items,
			Width:  w,
			Height: h,
		})
	}

	type pair struct{ src, dst int }
	parallel := make(map[pair]int)
	for src, st := range states {
		for _, tr := range st.Transitions {
			dst, ok := g.index[tr.Target]
			if !ok {
				log.Warn(ctx, "skipping transition to missing state",
					slog.F("from", st.ID),
					slog.F("to", tr.Target),
					slog.F("symbol", tr.Symbol),
				)
				continue
			}
			p := pair{src, dst}
			g.Links = append(g.Links, &Link{
				Source: src,
				Target: dst,
				Label:  tr.Symbol,
				Index:  parallel[p],
			})
			parallel[p]++
		}
	}
	return g
}

// Node returns the node of the state with the given id.
func (g *Graph) Node(id int) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

// Degree counts the links touching every node, a self link counting twice.
func (g *Graph) Degree() []int {
	deg := make([]int, len(g.Nodes))
	for _, l := range g.Links {
		deg[l.Source]++
		deg[l.Target]++
	}
	return deg
}
