package geo

import (
	"math"
)

// A N-Dimensional Vector with components (x, y, z, ...) based on the origin
type Vector []float64

// New Vector from components
func NewVector(components ...float64) Vector {
	return components
}

// NewVectorFromAngle is a unit-length Vector scaled to length, pointing along angle.
func NewVectorFromAngle(length, angleInRadians float64) Vector {
	return NewVector(
		length*math.Cos(angleInRadians),
		length*math.Sin(angleInRadians),
	)
}

func (a Vector) Add(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]+b[i])
	}
	return c
}

func (a Vector) Minus(b Vector) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]-b[i])
	}
	return c
}

func (a Vector) Multiply(v float64) Vector {
	c := []float64{}
	for i := 0; i < len(a); i++ {
		c = append(c, a[i]*v)
	}
	return c
}

func (a Vector) Length() float64 {
	sum := 0.0
	for _, comp := range a {
		sum += comp * comp
	}
	return math.Sqrt(sum)
}

// Creates an unit Vector pointing in the same direction of this Vector.
// The zero Vector has no direction and is returned unchanged.
func (a Vector) Unit() Vector {
	l := a.Length()
	if l == 0 {
		return a.Multiply(0)
	}
	return a.Multiply(1 / l)
}

// Normal is a rotated 90 degrees counter-clockwise (left).
func (a Vector) Normal() Vector {
	return NewVector(-a[1], a[0])
}

func (a Vector) ToPoint() *Point {
	return &Point{a[0], a[1]}
}
