package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates H at freq for the given sample rate.
func (c Coefficients) Response(freq, sampleRate float64) complex128 {
	z1 := cmplx.Rect(1, -2*math.Pi*freq/sampleRate)
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeSquared returns |H(freq)|^2.
func (c Coefficients) MagnitudeSquared(freq, sampleRate float64) float64 {
	h := c.Response(freq, sampleRate)
	return real(h)*real(h) + imag(h)*imag(h)
}

// MagnitudeDB returns the gain at freq in decibels.
func (c Coefficients) MagnitudeDB(freq, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freq, sampleRate))
}
