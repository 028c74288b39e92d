package lrview

import (
	"oss.terrastruct.com/lrviz/lib/geo"
	"oss.terrastruct.com/lrviz/lrtarget"
)

// dimensions remembers the last usable container size.
type dimensions struct {
	width  float64
	height float64
}

// observe records w x h and reports whether it is a new size.
// Sizes with a zero or unusable side are ignored.
func (d *dimensions) observe(w, h float64) bool {
	if !geo.IsFinite(w) || !geo.IsFinite(h) || w <= 0 || h <= 0 {
		return false
	}
	if w == d.width && h == d.height {
		return false
	}
	d.width = w
	d.height = h
	return true
}

func (d *dimensions) viewport() lrtarget.Viewport {
	return lrtarget.NewViewport(d.width, d.height)
}
