package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"oss.terrastruct.com/lrviz/lib/geo"
)

// SvgPathContext accumulates the commands of an SVG path's d attribute.
type SvgPathContext struct {
	Commands []string
	Start    *geo.Point
	Current  *geo.Point
}

func chopPrecision(f float64) float64 {
	v := math.Round(f*10000) / 10000
	// avoid printing -0
	if v == 0 {
		return 0
	}
	return v
}

// Num formats f for an attribute value, rounded and without exponent.
func Num(f float64) string {
	return strconv.FormatFloat(chopPrecision(f), 'f', -1, 64)
}

func NewSVGPathContext() *SvgPathContext {
	return &SvgPathContext{}
}

func (c *SvgPathContext) StartAt(p *geo.Point) {
	c.Start = p.Copy()
	c.Commands = append(c.Commands, fmt.Sprintf("M %s %s", Num(p.X), Num(p.Y)))
	c.Current = p.Copy()
}

func (c *SvgPathContext) L(p *geo.Point) {
	c.Commands = append(c.Commands, fmt.Sprintf("L %s %s", Num(p.X), Num(p.Y)))
	c.Current = p.Copy()
}

// Q appends a quadratic Bézier segment through control point ctrl.
func (c *SvgPathContext) Q(ctrl, end *geo.Point) {
	c.Commands = append(c.Commands, fmt.Sprintf(
		"Q %s %s %s %s",
		Num(ctrl.X), Num(ctrl.Y),
		Num(end.X), Num(end.Y),
	))
	c.Current = end.Copy()
}

func (c *SvgPathContext) C(c1, c2, end *geo.Point) {
	c.Commands = append(c.Commands, fmt.Sprintf(
		"C %s %s %s %s %s %s",
		Num(c1.X), Num(c1.Y),
		Num(c2.X), Num(c2.Y),
		Num(end.X), Num(end.Y),
	))
	c.Current = end.Copy()
}

func (c *SvgPathContext) PathData() string {
	return strings.Join(c.Commands, " ")
}
