package design

import (
	"math"

	"github.com/cwbudde/tapdancer/dsp/filter/biquad"
)

const (
	minCutoffHz       = 1.0
	maxCutoffFraction = 0.499
)

// FirstOrderLowpass designs a one-pole/one-zero lowpass at freq (Hz).
// DC gain is 1, Nyquist gain is 0.
func FirstOrderLowpass(freq, sampleRate float64) biquad.Coefficients {
	n, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{B0: 1}
	}

	inv := 1 / (1 + n)
	return biquad.Coefficients{
		B0: n * inv,
		B1: n * inv,
		A1: (n - 1) * inv,
	}
}

// FirstOrderHighpass designs a one-pole/one-zero highpass at freq (Hz).
// DC gain is 0, Nyquist gain is 1.
func FirstOrderHighpass(freq, sampleRate float64) biquad.Coefficients {
	n, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{B0: 1}
	}

	inv := 1 / (1 + n)
	return biquad.Coefficients{
		B0: inv,
		B1: -inv,
		A1: (n - 1) * inv,
	}
}

// prewarp returns tan(pi*f/fs) for the clamped cutoff.
// ok is false when the sample rate is unusable; callers fall back to a
// passthrough.
func prewarp(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}
	if math.IsNaN(freq) {
		freq = minCutoffHz
	}

	maxFreq := maxCutoffFraction * sampleRate
	if freq > maxFreq {
		freq = maxFreq
	}
	if freq < minCutoffHz {
		freq = minCutoffHz
	}

	return math.Tan(math.Pi * freq / sampleRate), true
}
