package lrsize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/lrviz/lrlayouts/lrsize"
)

func TestSizeEmpty(t *testing.T) {
	t.Parallel()

	w, h := lrsize.Default.Size(nil)
	assert.Equal(t, 100., w)
	assert.Equal(t, 50., h)

	w, h = lrsize.Default.Size([]string{})
	assert.Equal(t, 100., w)
	assert.Equal(t, 50., h)
}

func TestSizePure(t *testing.T) {
	t.Parallel()

	l1 := []string{"E -> . E + T", "T -> . n"}
	l2 := []string{"E -> . E + T", "T -> . n"}
	w1, h1 := lrsize.Default.Size(l1)
	w2, h2 := lrsize.Default.Size(l2)
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 50.+2*16., h1)
}

func TestSizeMonotonic(t *testing.T) {
	t.Parallel()

	var lines []string
	prevW, prevH := lrsize.Default.Size(lines)
	for i := 1; i < 40; i++ {
		lines = append(lines, strings.Repeat("x", i))
		w, h := lrsize.Default.Size(lines)
		assert.GreaterOrEqual(t, w, prevW)
		assert.GreaterOrEqual(t, h, prevH)
		assert.GreaterOrEqual(t, w, lrsize.MIN_WIDTH)
		assert.GreaterOrEqual(t, h, lrsize.BASE_HEIGHT)
		prevW, prevH = w, h
	}
	// 39 chars * 8
	assert.Equal(t, 312., prevW)
}

func TestSizeCountsRunes(t *testing.T) {
	t.Parallel()

	ascii := lrsize.Default.Width([]string{strings.Repeat("a", 20)})
	greek := lrsize.Default.Width([]string{strings.Repeat("α", 20)})
	assert.Equal(t, ascii, greek)
}

func TestTreeNodeWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30., lrsize.TreeNodeWidth("", 30))
	assert.Equal(t, 30., lrsize.TreeNodeWidth("+", 30))
	assert.Equal(t, 36., lrsize.TreeNodeWidth("10", 30))
	assert.Equal(t, 60., lrsize.TreeNodeWidth("x", 60))
}
