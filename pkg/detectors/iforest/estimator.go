package iforest

import "math"

// eulerMascheroni approximates the Euler-Mascheroni constant used in the
// harmonic number estimate H(n) ~ ln(n) + gamma.
const eulerMascheroni = 0.5772156649

// expectedPathLength returns c(n), the expected path length to isolate one
// point among n via a random binary search structure:
//
//	c(n) = 2*H(n-1) - 2*(n-1)/n
//
// It bias-corrects leaves that stopped early at the height limit and
// normalizes the ensemble's average path length.
func expectedPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		nf := float64(n)
		return 2*(math.Log(nf-1)+eulerMascheroni) - 2*(nf-1)/nf
	}
}
