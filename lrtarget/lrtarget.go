// Package lrtarget is the plain render data of a view: what a renderer needs to
// draw one frame, detached from the layout engines that produced it.
package lrtarget

import (
	"fmt"
	"math"

	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/go2"
	"oss.terrastruct.com/lrviz/lib/svg"
)

type Kind string

const (
	KindAutomaton Kind = "automaton"
	KindTree      Kind = "tree"
)

const (
	ShapeRectangle = "rectangle"
	ShapePill      = "pill"
)

const (
	CurveQuadratic = "quadratic"
	CurveCubic     = "cubic"
)

const (
	MIN_ZOOM = 0.1
	MAX_ZOOM = 4.

	// BACKGROUND_FACTOR is how many viewports wide the background is.
	BACKGROUND_FACTOR = 5.
)

type Scene struct {
	Kind      Kind      `json:"kind"`
	Viewport  Viewport  `json:"viewport"`
	Transform Transform `json:"transform"`
	// Background covers BACKGROUND_FACTOR viewports in scene space.
	Background *geo.Box `json:"background"`

	Shapes      []Shape      `json:"shapes"`
	Connections []Connection `json:"connections"`
}

type Shape struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Classes []string `json:"classes,omitempty"`

	// Pos is the top left corner.
	Pos    geo.Point `json:"pos"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`

	BorderRadius float64 `json:"borderRadius"`

	Label string   `json:"label"`
	Lines []string `json:"lines,omitempty"`

	Root   bool `json:"root,omitempty"`
	Pinned bool `json:"pinned,omitempty"`
}

type Connection struct {
	ID      string   `json:"id"`
	Classes []string `json:"classes,omitempty"`

	Src string `json:"src"`
	Dst string `json:"dst"`

	// Route holds start, control point(s) and end of a Bézier curve of kind Curve.
	Route []*geo.Point `json:"route"`
	Curve string       `json:"curve"`

	Label         string     `json:"label,omitempty"`
	LabelPosition *geo.Point `json:"labelPosition,omitempty"`

	DstArrow bool `json:"dstArrow"`
	SelfLoop bool `json:"selfLoop,omitempty"`
}

func (s Shape) Center() *geo.Point {
	return geo.NewPoint(s.Pos.X+s.Width/2, s.Pos.Y+s.Height/2)
}

func (s Shape) Box() *geo.Box {
	return geo.NewBox(s.Pos.Copy(), s.Width, s.Height)
}

// Viewport is the size of the host container in screen units.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewViewport legalizes unusable sizes to 1.
func NewViewport(width, height float64) Viewport {
	return Viewport{
		Width:  legalize(width),
		Height: legalize(height),
	}
}

func legalize(v float64) float64 {
	if !geo.IsFinite(v) || v <= 0 {
		return 1
	}
	return v
}

func (v Viewport) Center() *geo.Point {
	return geo.NewPoint(v.Width/2, v.Height/2)
}

// Background is the box BACKGROUND_FACTOR times the viewport, centered on the
// viewport's origin corner so panning in any direction stays covered.
func (v Viewport) Background() *geo.Box {
	return geo.NewBox(
		geo.NewPoint(-v.Width*BACKGROUND_FACTOR/2, -v.Height*BACKGROUND_FACTOR/2),
		v.Width*BACKGROUND_FACTOR,
		v.Height*BACKGROUND_FACTOR,
	)
}

// Transform maps scene coordinates to screen coordinates: screen = scene*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

var Identity = Transform{K: 1}

func ClampZoom(k float64) float64 {
	if math.IsNaN(k) {
		return 1
	}
	return go2.Clamp(k, MIN_ZOOM, MAX_ZOOM)
}

func (t Transform) Apply(p *geo.Point) *geo.Point {
	return geo.NewPoint(p.X*t.K+t.X, p.Y*t.K+t.Y)
}

func (t Transform) Invert(p *geo.Point) *geo.Point {
	return geo.NewPoint((p.X-t.X)/t.K, (p.Y-t.Y)/t.K)
}

// ZoomTo scales to k (clamped) keeping the screen point (cx, cy) fixed.
func (t Transform) ZoomTo(k, cx, cy float64) Transform {
	k = ClampZoom(k)
	if !geo.IsFinite(cx) || !geo.IsFinite(cy) {
		cx, cy = 0, 0
	}
	anchor := t.Invert(geo.NewPoint(cx, cy))
	return Transform{
		X: cx - anchor.X*k,
		Y: cy - anchor.Y*k,
		K: k,
	}
}

func (t Transform) ZoomBy(factor, cx, cy float64) Transform {
	return t.ZoomTo(t.K*factor, cx, cy)
}

func (t Transform) Translate(dx, dy float64) Transform {
	if !geo.IsFinite(dx) || !geo.IsFinite(dy) {
		return t
	}
	return Transform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

// SVG is the value of a transform attribute.
func (t Transform) SVG() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", svg.Num(t.X), svg.Num(t.Y), svg.Num(t.K))
}

// BoundingBox encloses every shape, connection route point and label anchor.
func (s *Scene) BoundingBox() *geo.Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, sh := range s.Shapes {
		grow(sh.Pos.X, sh.Pos.Y)
		grow(sh.Pos.X+sh.Width, sh.Pos.Y+sh.Height)
	}
	for _, c := range s.Connections {
		for _, p := range c.Route {
			grow(p.X, p.Y)
		}
		if c.LabelPosition != nil {
			grow(c.LabelPosition.X, c.LabelPosition.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	return geo.NewBox(geo.NewPoint(minX, minY), maxX-minX, maxY-minY)
}
