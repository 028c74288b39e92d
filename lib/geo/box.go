package geo

import (
	"fmt"
	"math"
)

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

// NewBoxAround returns the width x height box centered on center.
func NewBoxAround(center *Point, width, height float64) *Box {
	return NewBox(NewPoint(center.X-width/2, center.Y-height/2), width, height)
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Contains(p *Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.TopLeft.X+b.Width &&
		p.Y >= b.TopLeft.Y && p.Y <= b.TopLeft.Y+b.Height
}

// OnBoundary reports whether p lies on the edge of b, within precision e.
func (b *Box) OnBoundary(p *Point, e float64) bool {
	left, right := b.TopLeft.X, b.TopLeft.X+b.Width
	top, bottom := b.TopLeft.Y, b.TopLeft.Y+b.Height
	inX := p.X >= left-e && p.X <= right+e
	inY := p.Y >= top-e && p.Y <= bottom+e
	if !inX || !inY {
		return false
	}
	return math.Abs(p.X-left) < e || math.Abs(p.X-right) < e ||
		math.Abs(p.Y-top) < e || math.Abs(p.Y-bottom) < e
}

// ExitPoint is where a ray leaving the center of b at angle crosses its border.
// The ray leaves through whichever pair of sides it reaches first.
func (b *Box) ExitPoint(angle float64) *Point {
	c := b.Center()
	cos := math.Cos(angle)
	sin := math.Sin(angle)

	rx := math.Inf(1)
	if cos != 0 {
		rx = (b.Width / 2) / math.Abs(cos)
	}
	ry := math.Inf(1)
	if sin != 0 {
		ry = (b.Height / 2) / math.Abs(sin)
	}
	r := math.Min(rx, ry)
	if !IsFinite(r) {
		r = 0
	}
	return NewPoint(c.X+r*cos, c.Y+r*sin)
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}
