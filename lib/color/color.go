package color

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

const (
	// Accent is the default fill of automaton states and parse tree nodes.
	Accent = "#4A6FA5"
	// Ink and Paper are the label colors for dark and bright fills.
	Ink   = "#0A0F25"
	Paper = "#FFFFFF"
)

// Darken decreases the HSL luminance of a CSS color by amount.
func Darken(colorString string, amount float64) (string, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return "", err
	}
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return colorful.Hsl(h, s, l-amount).Clamped().Hex(), nil
}

func LuminanceCategory(colorString string) (string, error) {
	l, err := Luminance(colorString)
	if err != nil {
		return "", err
	}

	switch {
	case l >= .88:
		return "bright", nil
	case l >= .55:
		return "normal", nil
	case l >= .30:
		return "dark", nil
	default:
		return "darker", nil
	}
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}

// LabelColor picks a readable text color for labels drawn on fill.
func LabelColor(fill string) (string, error) {
	cat, err := LuminanceCategory(fill)
	if err != nil {
		return "", err
	}
	switch cat {
	case "bright", "normal":
		return Ink, nil
	default:
		return Paper, nil
	}
}
