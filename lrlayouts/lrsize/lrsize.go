// Package lrsize derives node footprints from their text content.
//
// Every function here is pure: the force simulation's collision radii and the tree
// layout's separation both assume a node's size never changes once computed.
package lrsize

import (
	"unicode/utf8"

	"oss.terrastruct.com/lrviz/lib/go2"
)

const (
	MIN_WIDTH   = 100.
	CHAR_WIDTH  = 8.
	BASE_HEIGHT = 50.
	LINE_HEIGHT = 16.

	TREE_CHAR_WIDTH = 10.
	TREE_PADDING    = 16.
	TREE_NODE_SIZE  = 30.
)

// Sizer holds the constants of the automaton node sizing rule.
type Sizer struct {
	MinWidth   float64
	CharWidth  float64
	BaseHeight float64
	LineHeight float64
}

var Default = Sizer{
	MinWidth:   MIN_WIDTH,
	CharWidth:  CHAR_WIDTH,
	BaseHeight: BASE_HEIGHT,
	LineHeight: LINE_HEIGHT,
}

// Width is the widest line's estimated width, never below MinWidth.
func (s Sizer) Width(lines []string) float64 {
	maxLen := 0
	for _, l := range lines {
		maxLen = go2.Max(maxLen, utf8.RuneCountInString(l))
	}
	return go2.Max(s.MinWidth, float64(maxLen)*s.CharWidth)
}

// Height leaves BaseHeight for the title and padding and stacks one LineHeight per line.
func (s Sizer) Height(lines []string) float64 {
	return s.BaseHeight + float64(len(lines))*s.LineHeight
}

func (s Sizer) Size(lines []string) (width, height float64) {
	return s.Width(lines), s.Height(lines)
}

// TreeNodeWidth is the pill width of a parse tree node labelled text.
// nodeSize is both the minimum width and the pill height.
func TreeNodeWidth(text string, nodeSize float64) float64 {
	return go2.Max(nodeSize, TextWidth(text))
}

// TextWidth is the unclamped width estimate of a tree node's text, used by the
// tree layout's separation function.
func TextWidth(text string) float64 {
	return float64(utf8.RuneCountInString(text))*TREE_CHAR_WIDTH + TREE_PADDING
}
