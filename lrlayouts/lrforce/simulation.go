package lrforce

import (
	"math"
	"math/rand"

	"oss.terrastruct.com/lrviz/lrgraph"
)

const (
	INITIAL_RADIUS = 10.
	ALPHA_MIN      = 0.001
	VELOCITY_DECAY = 0.4

	// MAX_TICKS bounds Tick(0) when alphaTarget keeps the simulation warm.
	MAX_TICKS = 1000
)

var (
	initialAngle = math.Pi * (3 - math.Sqrt(5))
	alphaDecay   = 1 - math.Pow(ALPHA_MIN, 1./300)
)

// Force mutates node velocities (or positions) once per step.
type Force interface {
	Initialize(nodes []*lrgraph.Node, rnd *rand.Rand)
	Apply(alpha float64)
}

// Targeter is implemented by forces that pull toward a point.
type Targeter interface {
	SetTarget(x, y float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation is a velocity Verlet integrator over a fixed set of nodes.
// It is not safe for concurrent use.
type Simulation struct {
	nodes  []*lrgraph.Node
	forces []namedForce
	rnd    *rand.Rand

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
}

// NewSimulation places nodes on a phyllotaxis spiral around (cx, cy) and zeroes
// their velocities. Pinned nodes start at their pin.
func NewSimulation(nodes []*lrgraph.Node, cx, cy float64, rnd *rand.Rand) *Simulation {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(0))
	}
	s := &Simulation{
		nodes:         nodes,
		rnd:           rnd,
		alpha:         1,
		alphaMin:      ALPHA_MIN,
		alphaDecay:    alphaDecay,
		velocityDecay: 1 - VELOCITY_DECAY,
	}
	for i, n := range nodes {
		r := INITIAL_RADIUS * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		n.X = cx + r*math.Cos(a)
		n.Y = cy + r*math.Sin(a)
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		n.VX = 0
		n.VY = 0
	}
	return s
}

// Force registers f under name, replacing any force with that name.
// Forces apply in registration order.
func (s *Simulation) Force(name string, f Force) *Simulation {
	f.Initialize(s.nodes, s.rnd)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return s
		}
	}
	s.forces = append(s.forces, namedForce{name, f})
	return s
}

func (s *Simulation) Lookup(name string) (Force, bool) {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force, true
		}
	}
	return nil, false
}

func (s *Simulation) Alpha() float64 {
	return s.alpha
}

func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// Restart reheats the simulation to full temperature.
func (s *Simulation) Restart() {
	s.alpha = 1
}

// Settled reports whether the simulation has cooled below alphaMin and nothing is
// holding it warm.
func (s *Simulation) Settled() bool {
	return s.alpha < s.alphaMin && s.alphaTarget < s.alphaMin
}

// SetCenter retargets every force that pulls toward a point.
func (s *Simulation) SetCenter(x, y float64) {
	for _, nf := range s.forces {
		if t, ok := nf.force.(Targeter); ok {
			t.SetTarget(x, y)
		}
	}
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	for _, n := range s.nodes {
		if n.FX == nil {
			n.VX *= s.velocityDecay
			n.X += n.VX
		} else {
			n.X = *n.FX
			n.VX = 0
		}
		if n.FY == nil {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		} else {
			n.Y = *n.FY
			n.VY = 0
		}
	}
}

// Tick runs n steps, or until the simulation settles when n <= 0.
func (s *Simulation) Tick(n int) {
	if n <= 0 {
		for i := 0; i < MAX_TICKS && !s.Settled(); i++ {
			s.Step()
		}
		return
	}
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
