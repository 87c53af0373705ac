package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrFFTSize is returned for FFT sizes that are not a positive power of two.
var ErrFFTSize = errors.New("spectrum: fft size must be a positive power of two")

// Transform returns bins 0..fftSize/2 of the FFT of x. x is truncated or
// zero-padded to fftSize.
func Transform(x []float64, fftSize int) ([]complex128, error) {
	if fftSize <= 0 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, fftSize)
	}

	in := make([]complex128, fftSize)
	for i := range min(len(x), fftSize) {
		in[i] = complex(x[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: plan %d: %w", fftSize, err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("spectrum: forward: %w", err)
	}
	return out[:fftSize/2+1], nil
}

// BinFrequency returns the centre frequency in Hz of bin k.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(fftSize)
}

// Magnitude returns |X[k]| for each bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	re, im := split(in)
	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)
	return out
}

// Power returns |X[k]|^2 for each bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	re, im := split(in)
	out := make([]float64, len(in))
	vecmath.Power(out, re, im)
	return out
}

// MagnitudeDB returns 10*log10(|X[k]|^2) for each bin, floored at floorDB.
func MagnitudeDB(in []complex128, floorDB float64) []float64 {
	out := Power(in)
	for i, p := range out {
		if p <= 0 {
			out[i] = floorDB
			continue
		}
		out[i] = max(10*math.Log10(p), floorDB)
	}
	return out
}

// Phase returns arg(X[k]) for each bin in radians.
func Phase(in []complex128) []float64 {
	out := make([]float64, len(in))
	for i, c := range in {
		out[i] = cmplx.Phase(c)
	}
	return out
}

// Deviation returns the min and max of values.
func Deviation(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func split(in []complex128) (re, im []float64) {
	buf := make([]float64, 2*len(in))
	re, im = buf[:len(in)], buf[len(in):]
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im
}
