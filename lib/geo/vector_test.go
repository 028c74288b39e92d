package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const precision = 0.0001

func (a Vector) equals(b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if PrecisionCompare(a[i], b[i], precision) != 0 {
			return false
		}
	}
	return true
}

func TestExtendDiagonalLineSegment(t *testing.T) {
	p1 := &Point{0, 0}
	p2 := &Point{3, 1}

	v := p1.VectorTo(p2)
	v = v.Multiply(2)
	p2New := p1.AddVector(v)
	expected := Point{6, 2}
	assert.Equal(t, expected, *p2New)

	v = p2.VectorTo(p1)
	v = v.Multiply(2)
	p1New := p2.AddVector(v)
	expected = Point{-3, -1}
	assert.Equal(t, expected, *p1New)
}

func TestVectorAdd(t *testing.T) {
	c := NewVector(1, 2).Add(NewVector(3, 4))
	assert.Truef(t, c.equals(NewVector(4, 6)), "Expected Vector %v to be (4, 6)", c)
}

func TestVectorMinus(t *testing.T) {
	c := NewVector(1, 2).Minus(NewVector(3, 4))
	assert.Truef(t, c.equals(NewVector(-2, -2)), "Expected Vector %v to be (-2, -2)", c)
}

func TestVectorLength(t *testing.T) {
	assert.Equal(t, 5.0, NewVector(3, 4).Length())
}

func TestNewVectorFromAngle(t *testing.T) {
	a := NewVectorFromAngle(3, math.Pi/3)
	assert.Truef(t, a.equals(NewVector(1.5, 2.59807621135)), "got %v", a)

	b := NewVectorFromAngle(2, math.Pi)
	assert.Truef(t, b.equals(NewVector(-2, 0)), "got %v", b)
}

func TestVectorUnit(t *testing.T) {
	a := NewVector(3, 4).Unit()
	assert.Truef(t, a.equals(NewVector(3.0/5, 4.0/5)), "got %v", a)

	zero := NewVector(0, 0).Unit()
	assert.Truef(t, zero.equals(NewVector(0, 0)), "zero vector should stay zero, got %v", zero)
}

func TestVectorNormal(t *testing.T) {
	n := NewVector(1, 0).Normal()
	assert.Truef(t, n.equals(NewVector(0, 1)), "got %v", n)
}
