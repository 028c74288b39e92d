package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddVector(t *testing.T) {
	start := &Point{1.5, 5.3}
	c := NewVector(-3.5, -2.3)
	p2 := start.AddVector(c)

	if p2.X != -2 || p2.Y != 3 {
		t.Fatalf("Expected resulting point to be (-2, 3), got %+v", p2)
	}
}

func TestVectorTo(t *testing.T) {
	p1 := &Point{1.5, 5.3}
	p2 := &Point{-2, 3}
	c := p1.VectorTo(p2)
	if !c.equals(NewVector(-3.5, -2.3)) {
		t.Fatalf("Expected Vector to be (-3.5, -2.3), got %v", c)
	}
}

func TestAngleTo(t *testing.T) {
	origin := NewPoint(0, 0)
	assert.Equal(t, 0., origin.AngleTo(NewPoint(10, 0)))
	assert.InDelta(t, math.Pi/2, origin.AngleTo(NewPoint(0, 10)), precision)
	assert.InDelta(t, math.Pi, origin.AngleTo(NewPoint(-10, 0)), precision)
	// coincident points have no direction
	assert.Equal(t, 0., origin.AngleTo(NewPoint(0, 0)))
}

func TestInterpolate(t *testing.T) {
	p := NewPoint(0, 0).Interpolate(NewPoint(10, 20), 0.5)
	assert.Equal(t, Point{5, 10}, *p)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, NewPoint(1, 2).IsFinite())
	assert.False(t, NewPoint(math.NaN(), 2).IsFinite())
	assert.False(t, NewPoint(1, math.Inf(-1)).IsFinite())
	var p *Point
	assert.False(t, p.IsFinite())
}

func TestPointEquals(t *testing.T) {
	assert.True(t, NewPoint(1, 2).Equals(NewPoint(1, 2)))
	assert.False(t, NewPoint(1, 2).Equals(NewPoint(2, 1)))
	assert.False(t, NewPoint(math.NaN(), 0).Equals(NewPoint(math.NaN(), 0)))
	var p *Point
	assert.True(t, p.Equals(nil))
	assert.False(t, p.Equals(NewPoint(0, 0)))
}
