package interp

import "math"

// thiranShift keeps the fractional part in [thiranShift, 1+thiranShift)
// whenever an integer sample can be borrowed. Small fractions push the
// all-pass pole towards the unit circle and ring on modulation.
const thiranShift = 0.618

// ThiranSplit divides delay into the integer and fractional parts used by
// [Thiran]. The integer part never drops below 1 through shifting, since a
// line read before it is written has nothing at delay 0; delays below 2
// keep their fraction unshifted.
func ThiranSplit(delay float64) (whole int, frac float64) {
	if delay < 0 {
		delay = 0
	}

	whole = int(math.Floor(delay))
	frac = delay - float64(whole)
	if frac < thiranShift && whole >= 2 {
		frac++
		whole--
	}
	return whole, frac
}

// ThiranCoefficient returns the all-pass coefficient for a fractional delay.
func ThiranCoefficient(frac float64) float64 {
	return (1 - frac) / (1 + frac)
}

// Thiran holds the one-sample state of a first-order Thiran interpolator.
type Thiran struct {
	prev float64
}

// Tick returns the interpolated sample between newer (delay whole) and
// older (delay whole+1) given the coefficient for frac.
//
//	y[n] = older + alpha*(newer - y[n-1])
func (t *Thiran) Tick(newer, older, frac, alpha float64) float64 {
	var out float64
	if frac == 0 {
		out = newer
	} else {
		out = older + alpha*(newer-t.prev)
	}
	t.prev = out
	return out
}

// Reset clears the interpolator state.
func (t *Thiran) Reset() {
	t.prev = 0
}
