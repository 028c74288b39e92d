package go2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 4.0, Clamp(10.0, 0.1, 4.0))
	assert.Equal(t, 0.1, Clamp(0.01, 0.1, 4.0))
	assert.Equal(t, 2.0, Clamp(2.0, 0.1, 4.0))
	assert.Equal(t, 3, Clamp(3, 1, 5))
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, "b", Max("a", "b"))
}
