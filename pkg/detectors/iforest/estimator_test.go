package iforest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedPathLength(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want float64
	}{
		{name: "negative", n: -3, want: 0},
		{name: "zero", n: 0, want: 0},
		{name: "one", n: 1, want: 0},
		{name: "two", n: 2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expectedPathLength(tt.n))
		})
	}
}

func TestExpectedPathLengthFormula(t *testing.T) {
	// c(256) = 2*(ln(255) + gamma) - 2*255/256
	assert.InDelta(t, 10.2448, expectedPathLength(256), 1e-3)
	assert.InDelta(t, 1.2074, expectedPathLength(3), 1e-3)
}

func TestExpectedPathLengthStrictlyIncreasing(t *testing.T) {
	prev := expectedPathLength(2)
	for n := 3; n <= 4096; n++ {
		cur := expectedPathLength(n)
		assert.Greater(t, cur, prev, "c(%d) must exceed c(%d)", n, n-1)
		prev = cur
	}
}
