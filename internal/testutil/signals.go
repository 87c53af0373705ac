// Package testutil holds deterministic signals and tolerance checks shared
// by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of amplitude*sin(2*pi*f*n/fs).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	w := 2 * math.Pi * freqHz / sampleRate

	out := make([]float64, length)
	for n := range out {
		out[n] = amplitude * math.Sin(w*float64(n))
	}

	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) from
// a seeded source, so every run sees the same samples.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))

	out := make([]float64, length)
	for n := range out {
		out[n] = amplitude * (2*rng.Float64() - 1)
	}

	return out
}

// NoiseChannels returns channels independent noise sequences seeded from
// seed, seed+1 and so on.
func NoiseChannels(seed int64, amplitude float64, channels, length int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = DeterministicNoise(seed+int64(ch), amplitude, length)
	}

	return out
}

// Impulse returns a unit impulse at pos, or silence if pos is out of range.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if uint(pos) < uint(length) {
		out[pos] = 1
	}

	return out
}

// Energy is the sum of squares.
func Energy(x []float64) float64 {
	e := 0.0
	for _, v := range x {
		e += v * v
	}

	return e
}

// PeakAbs is the largest magnitude in x.
func PeakAbs(x []float64) float64 {
	p := 0.0
	for _, v := range x {
		p = max(p, math.Abs(v))
	}

	return p
}
