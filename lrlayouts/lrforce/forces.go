package lrforce

import (
	"math"
	"math/rand"

	"oss.terrastruct.com/lrviz/lrgraph"
)

// Link pulls the endpoints of every link toward a rest distance. The correction is
// split between the endpoints by degree so that hubs move less.
type Link struct {
	Graph    *lrgraph.Graph
	Distance float64
	Strength float64

	nodes []*lrgraph.Node
	bias  []float64
	rnd   *rand.Rand
}

func NewLink(g *lrgraph.Graph, distance, strength float64) *Link {
	return &Link{
		Graph:    g,
		Distance: distance,
		Strength: strength,
	}
}

// A self link counts twice toward the degree of its node.
func (f *Link) Initialize(nodes []*lrgraph.Node, rnd *rand.Rand) {
	f.nodes = nodes
	f.rnd = rnd

	deg := f.Graph.Degree()
	f.bias = make([]float64, len(f.Graph.Links))
	for i, l := range f.Graph.Links {
		f.bias[i] = float64(deg[l.Source]) / float64(deg[l.Source]+deg[l.Target])
	}
}

func (f *Link) Apply(alpha float64) {
	for i, l := range f.Graph.Links {
		// A self link pushes and pulls the same node by the same amount.
		if l.Source == l.Target {
			continue
		}
		src, tgt := f.nodes[l.Source], f.nodes[l.Target]
		x := tgt.X + tgt.VX - src.X - src.VX
		if x == 0 {
			x = jiggle(f.rnd)
		}
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if y == 0 {
			y = jiggle(f.rnd)
		}
		d := math.Sqrt(x*x + y*y)
		d = (d - f.Distance) / d * alpha * f.Strength
		x *= d
		y *= d

		b := f.bias[i]
		tgt.VX -= x * b
		tgt.VY -= y * b
		src.VX += x * (1 - b)
		src.VY += y * (1 - b)
	}
}

// ManyBody is an exact pairwise charge: negative strength repels.
type ManyBody struct {
	Strength     float64
	DistanceMin2 float64

	nodes []*lrgraph.Node
	rnd   *rand.Rand
}

func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{
		Strength:     strength,
		DistanceMin2: 1,
	}
}

func (f *ManyBody) Initialize(nodes []*lrgraph.Node, rnd *rand.Rand) {
	f.nodes = nodes
	f.rnd = rnd
}

func (f *ManyBody) Apply(alpha float64) {
	for i, n := range f.nodes {
		for j, other := range f.nodes {
			if i == j {
				continue
			}
			x := other.X - n.X
			y := other.Y - n.Y
			l := x*x + y*y
			if x == 0 {
				x = jiggle(f.rnd)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.rnd)
				l += y * y
			}
			if l < f.DistanceMin2 {
				l = math.Sqrt(f.DistanceMin2 * l)
			}
			w := f.Strength * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

// Center translates all nodes so that their mean position is the target.
// It moves positions directly and ignores alpha.
type Center struct {
	X, Y     float64
	Strength float64

	nodes []*lrgraph.Node
}

func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

func (f *Center) Initialize(nodes []*lrgraph.Node, _ *rand.Rand) {
	f.nodes = nodes
}

func (f *Center) SetTarget(x, y float64) {
	f.X = x
	f.Y = y
}

func (f *Center) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = (sx/float64(len(f.nodes)) - f.X) * f.Strength
	sy = (sy/float64(len(f.nodes)) - f.Y) * f.Strength
	for _, n := range f.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// Collide keeps circles of Radius(node) from overlapping, looking one step ahead
// through the current velocities.
type Collide struct {
	Radius   func(n *lrgraph.Node) float64
	Strength float64

	nodes []*lrgraph.Node
	radii []float64
	rnd   *rand.Rand
}

func NewCollide(radius func(n *lrgraph.Node) float64) *Collide {
	return &Collide{
		Radius:   radius,
		Strength: 1,
	}
}

// BoxRadius is the radius of the circle around a node's box plus margin.
func BoxRadius(margin float64) func(n *lrgraph.Node) float64 {
	return func(n *lrgraph.Node) float64 {
		return math.Max(n.Width, n.Height)/2 + margin
	}
}

func (f *Collide) Initialize(nodes []*lrgraph.Node, rnd *rand.Rand) {
	f.nodes = nodes
	f.rnd = rnd
	f.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		f.radii[i] = f.Radius(n)
	}
}

func (f *Collide) Apply(float64) {
	for i, n := range f.nodes {
		ri := f.radii[i]
		ri2 := ri * ri
		xi := n.X + n.VX
		yi := n.Y + n.VY
		for j := i + 1; j < len(f.nodes); j++ {
			other := f.nodes[j]
			rj := f.radii[j]
			r := ri + rj
			x := xi - other.X - other.VX
			y := yi - other.Y - other.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = jiggle(f.rnd)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.rnd)
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * f.Strength
			x *= l
			y *= l
			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			n.VX += x * share
			n.VY += y * share
			other.VX -= x * (1 - share)
			other.VY -= y * (1 - share)
		}
	}
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Position pulls every node toward a vertical (AxisX) or horizontal (AxisY) line.
type Position struct {
	Axis     Axis
	Target   float64
	Strength float64

	nodes []*lrgraph.Node
}

func NewX(x, strength float64) *Position {
	return &Position{Axis: AxisX, Target: x, Strength: strength}
}

func NewY(y, strength float64) *Position {
	return &Position{Axis: AxisY, Target: y, Strength: strength}
}

func (f *Position) Initialize(nodes []*lrgraph.Node, _ *rand.Rand) {
	f.nodes = nodes
}

func (f *Position) SetTarget(x, y float64) {
	if f.Axis == AxisX {
		f.Target = x
	} else {
		f.Target = y
	}
}

func (f *Position) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, n := range f.nodes {
		if f.Axis == AxisX {
			n.VX += (f.Target - n.X) * k
		} else {
			n.VY += (f.Target - n.Y) * k
		}
	}
}
