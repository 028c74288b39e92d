// Package lrsvg renders an lrtarget.Scene as a standalone SVG document.
package lrsvg

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"oss.terrastruct.com/lrviz/lib/color"
	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lib/svg"
	"oss.terrastruct.com/lrviz/lrtarget"
)

const (
	DEFAULT_PADDING = 50

	ROOT_DARKEN = 0.15

	ARROWHEAD_ID   = "arrowhead"
	DOTTED_GRID_ID = "dotted-grid"
)

//go:embed style.css
var BaseStylesheet string

type RenderOpts struct {
	Pad *int64
	// Accent is the fill of nodes, any CSS color. The root is drawn darker.
	Accent *string
	// Fit sizes the document to the scene's contents instead of its viewport and
	// ignores the scene transform. Used for static exports.
	Fit      *bool
	NoXMLTag *bool
}

type theme struct {
	fill      string
	rootFill  string
	labelFill string
	rootLabel string
}

func newTheme(accent string) (*theme, error) {
	rootFill, err := color.Darken(accent, ROOT_DARKEN)
	if err != nil {
		return nil, fmt.Errorf("invalid accent color %q: %w", accent, err)
	}
	labelFill, err := color.LabelColor(accent)
	if err != nil {
		return nil, err
	}
	rootLabel, err := color.LabelColor(rootFill)
	if err != nil {
		return nil, err
	}
	return &theme{
		fill:      accent,
		rootFill:  rootFill,
		labelFill: labelFill,
		rootLabel: rootLabel,
	}, nil
}

func (t *theme) css() string {
	return fmt.Sprintf(`
.automaton_node,.tree_node rect{fill:%[1]s;stroke:%[3]s;}
.automaton_state text,.tree_node text{fill:%[2]s;}
.root .automaton_node,.tree_node.root rect{fill:%[3]s;}
.root text{fill:%[4]s;}
.automaton_link-label{fill:%[3]s;}
`, t.fill, t.labelFill, t.rootFill, t.rootLabel)
}

// Render writes the scene as SVG.
func Render(scene *lrtarget.Scene, opts *RenderOpts) ([]byte, error) {
	pad := DEFAULT_PADDING
	accent := color.Accent
	fit := false
	if opts != nil {
		if opts.Pad != nil {
			pad = int(*opts.Pad)
		}
		if opts.Accent != nil && *opts.Accent != "" {
			accent = *opts.Accent
		}
		if opts.Fit != nil {
			fit = *opts.Fit
		}
	} else {
		opts = &RenderOpts{}
	}

	th, err := newTheme(accent)
	if err != nil {
		return nil, err
	}

	var viewBox *geo.Box
	transform := scene.Transform
	background := scene.Background
	if fit {
		bb := scene.BoundingBox()
		viewBox = geo.NewBox(
			geo.NewPoint(bb.TopLeft.X-float64(pad), bb.TopLeft.Y-float64(pad)),
			bb.Width+float64(pad*2),
			bb.Height+float64(pad*2),
		)
		transform = lrtarget.Identity
		background = viewBox
	} else {
		viewBox = geo.NewBox(geo.NewPoint(0, 0), scene.Viewport.Width, scene.Viewport.Height)
	}
	if background == nil {
		background = scene.Viewport.Background()
	}

	buf := &bytes.Buffer{}
	if opts.NoXMLTag == nil || !*opts.NoXMLTag {
		buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" class="lrviz lrviz-%s" width="%s" height="%s" viewBox="%s %s %s %s">`,
		scene.Kind,
		svg.Num(viewBox.Width), svg.Num(viewBox.Height),
		svg.Num(viewBox.TopLeft.X), svg.Num(viewBox.TopLeft.Y), svg.Num(viewBox.Width), svg.Num(viewBox.Height),
	)
	fmt.Fprintf(buf, `<style type="text/css"><![CDATA[%s%s]]></style>`, BaseStylesheet, th.css())
	defineMarkers(buf)

	groupClass := "automaton_graph"
	if scene.Kind == lrtarget.KindTree {
		groupClass = "tree_graph"
	}
	fmt.Fprintf(buf, `<g class="%s" transform="%s">`, groupClass, transform.SVG())
	fmt.Fprintf(buf, `<rect class="background-grid" x="%s" y="%s" width="%s" height="%s" fill="url(#%s)"></rect>`,
		svg.Num(background.TopLeft.X), svg.Num(background.TopLeft.Y),
		svg.Num(background.Width), svg.Num(background.Height),
		DOTTED_GRID_ID,
	)

	switch scene.Kind {
	case lrtarget.KindTree:
		for _, c := range scene.Connections {
			drawConnection(buf, c)
		}
		for _, s := range scene.Shapes {
			drawTreeNode(buf, s)
		}
	default:
		// Links under states, labels above them.
		for _, c := range scene.Connections {
			drawConnection(buf, c)
		}
		for _, s := range scene.Shapes {
			drawState(buf, s)
		}
		for _, c := range scene.Connections {
			drawConnectionLabel(buf, c)
		}
	}

	buf.WriteString(`</g></svg>`)
	return buf.Bytes(), nil
}

func defineMarkers(w io.Writer) {
	fmt.Fprint(w, `<defs>`)
	fmt.Fprintf(w, `<marker id="%s" viewBox="0 -5 10 10" refX="8" refY="0" markerWidth="6" markerHeight="6" orient="auto">`, ARROWHEAD_ID)
	fmt.Fprint(w, `<path class="arrowhead" d="M0,-5L10,0L0,5"></path></marker>`)
	fmt.Fprintf(w, `<pattern id="%s" width="20" height="20" patternUnits="userSpaceOnUse">`, DOTTED_GRID_ID)
	fmt.Fprint(w, `<circle class="dotted-grid-dot" cx="5" cy="5" r="1.5"></circle></pattern>`)
	fmt.Fprint(w, `</defs>`)
}

func pathData(c lrtarget.Connection) string {
	if len(c.Route) == 0 {
		return ""
	}
	pc := svg.NewSVGPathContext()
	pc.StartAt(c.Route[0])
	switch {
	case c.Curve == lrtarget.CurveQuadratic && len(c.Route) == 3:
		pc.Q(c.Route[1], c.Route[2])
	case c.Curve == lrtarget.CurveCubic && len(c.Route) == 4:
		pc.C(c.Route[1], c.Route[2], c.Route[3])
	default:
		for _, p := range c.Route[1:] {
			pc.L(p)
		}
	}
	return pc.PathData()
}

func classAttr(classes ...string) string {
	var out []string
	for _, c := range classes {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

func drawConnection(w io.Writer, c lrtarget.Connection) {
	marker := ""
	if c.DstArrow {
		marker = fmt.Sprintf(` marker-end="url(#%s)"`, ARROWHEAD_ID)
	}
	fmt.Fprintf(w, `<path id="%s" class="%s" d="%s"%s></path>`,
		svg.EscapeText(c.ID), classAttr(c.Classes...), pathData(c), marker)
}

func drawConnectionLabel(w io.Writer, c lrtarget.Connection) {
	if c.LabelPosition == nil {
		return
	}
	fmt.Fprintf(w, `<text class="automaton_link-label" transform="translate(%s,%s)">%s</text>`,
		svg.Num(c.LabelPosition.X), svg.Num(c.LabelPosition.Y), svg.EscapeText(c.Label))
}

func groupClasses(base string, s lrtarget.Shape) string {
	root := ""
	if s.Root {
		root = "root"
	}
	pinned := ""
	if s.Pinned {
		pinned = "pinned"
	}
	return classAttr(base, root, pinned)
}

func drawState(w io.Writer, s lrtarget.Shape) {
	c := s.Center()
	top := -s.Height / 2
	left := -s.Width / 2
	fmt.Fprintf(w, `<g class="%s" data-id="%s" transform="translate(%s,%s)">`,
		groupClasses("automaton_state", s), svg.EscapeText(s.ID), svg.Num(c.X), svg.Num(c.Y))
	fmt.Fprintf(w, `<rect class="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" stroke-width="2"></rect>`,
		classAttr(s.Classes...),
		svg.Num(left), svg.Num(top), svg.Num(s.Width), svg.Num(s.Height),
		svg.Num(s.BorderRadius), svg.Num(s.BorderRadius),
	)
	fmt.Fprintf(w, `<text class="automaton_state-label" text-anchor="middle" y="%s">%s</text>`,
		svg.Num(top+20), svg.EscapeText(s.Label))
	if len(s.Lines) > 0 {
		fmt.Fprintf(w, `<text class="automaton_state-info" text-anchor="start" x="%s" y="%s">`, svg.Num(left+10), svg.Num(top+40))
		for _, line := range s.Lines {
			fmt.Fprintf(w, `<tspan x="%s" dy="15">%s</tspan>`, svg.Num(left+10), svg.EscapeText(line))
		}
		fmt.Fprint(w, `</text>`)
	}
	fmt.Fprint(w, `</g>`)
}

func drawTreeNode(w io.Writer, s lrtarget.Shape) {
	c := s.Center()
	fmt.Fprintf(w, `<g class="%s" data-id="%s" transform="translate(%s,%s)">`,
		groupClasses("tree_node", s), svg.EscapeText(s.ID), svg.Num(c.X), svg.Num(c.Y))
	fmt.Fprintf(w, `<rect class="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s"></rect>`,
		classAttr(s.Classes...),
		svg.Num(-s.Width/2), svg.Num(-s.Height/2), svg.Num(s.Width), svg.Num(s.Height),
		svg.Num(s.BorderRadius), svg.Num(s.BorderRadius),
	)
	fmt.Fprintf(w, `<text dy="%s" text-anchor="middle">%s</text>`, svg.Num(s.Height/4-2), svg.EscapeText(s.Label))
	fmt.Fprint(w, `</g>`)
}
