// Package lrforce lays out the automaton graph with a force simulation.
//
// The integrator and every force follow d3-force: alpha cools geometrically from 1
// toward alphaTarget, velocities decay by 40% per step and pinned nodes are held at
// their pin while still pushing on everyone else.
package lrforce

import (
	"math/rand"

	"oss.terrastruct.com/lrviz/lrgraph"
)

const (
	DEFAULT_LINK_DISTANCE    = 300.
	DEFAULT_LINK_STRENGTH    = 0.9
	DEFAULT_CHARGE_STRENGTH  = -2500.
	DEFAULT_COLLISION_MARGIN = 50.
	DEFAULT_AXIS_STRENGTH    = 0.2

	// DRAG_ALPHA_TARGET keeps the simulation warm while a node is dragged.
	DRAG_ALPHA_TARGET = 0.3
)

type Opts struct {
	LinkDistance    float64
	LinkStrength    float64
	ChargeStrength  float64
	CollisionMargin float64
	AxisStrength    float64

	// Rand breaks ties between coincident nodes. nil means a fixed seed so that
	// the same graph in the same viewport always lays out the same way.
	Rand *rand.Rand
}

var DefaultOpts = Opts{
	LinkDistance:    DEFAULT_LINK_DISTANCE,
	LinkStrength:    DEFAULT_LINK_STRENGTH,
	ChargeStrength:  DEFAULT_CHARGE_STRENGTH,
	CollisionMargin: DEFAULT_COLLISION_MARGIN,
	AxisStrength:    DEFAULT_AXIS_STRENGTH,
}

// Layout builds the automaton simulation for g centered on (cx, cy).
// The returned simulation has not stepped yet.
func Layout(g *lrgraph.Graph, cx, cy float64, opts *Opts) *Simulation {
	if opts == nil {
		opts = &DefaultOpts
	}
	s := NewSimulation(g.Nodes, cx, cy, opts.Rand)
	s.Force("link", NewLink(g, opts.LinkDistance, opts.LinkStrength))
	s.Force("charge", NewManyBody(opts.ChargeStrength))
	s.Force("center", NewCenter(cx, cy))
	s.Force("collision", NewCollide(BoxRadius(opts.CollisionMargin)))
	s.Force("x", NewX(cx, opts.AxisStrength))
	s.Force("y", NewY(cy, opts.AxisStrength))
	return s
}
