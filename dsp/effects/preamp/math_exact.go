//go:build !fastmath

package preamp

import "math"

const exactMath = true

func mathExp(x float64) float64 {
	return math.Exp(x)
}
