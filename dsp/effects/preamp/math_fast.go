//go:build fastmath

package preamp

import "github.com/meko-christian/algo-approx"

const exactMath = false

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
