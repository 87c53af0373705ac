// Package oscillator provides the low-frequency sine used as a modulation
// source by the all-pass and tap stages.
package oscillator

import "math"

const twoPi = 2 * math.Pi

// Sine is a phase-accumulating sine generator.
//
// Next returns sin(phase) and then advances the phase by 2*pi*f/fs,
// wrapping at 2*pi, so the first sample after Reset is always 0.
type Sine struct {
	sampleRate float64
	frequency  float64
	phase      float64
	increment  float64
}

// Prepare sets the sample rate and restarts the phase.
// The configured frequency is kept and its increment recomputed.
func (s *Sine) Prepare(sampleRate float64) {
	s.sampleRate = sampleRate
	s.phase = 0
	s.SetFrequency(s.frequency)
}

// SetFrequency sets the oscillation frequency in Hz.
// A frequency of 0 yields a constant stream.
func (s *Sine) SetFrequency(hz float64) {
	s.frequency = hz
	if s.sampleRate <= 0 {
		s.increment = 0
		return
	}
	s.increment = twoPi * hz / s.sampleRate
}

// Frequency returns the configured frequency in Hz.
func (s *Sine) Frequency() float64 { return s.frequency }

// Phase returns the current phase in radians, in [0, 2*pi).
func (s *Sine) Phase() float64 { return s.phase }

// Next returns the current sample and advances the phase.
func (s *Sine) Next() float64 {
	out := math.Sin(s.phase)
	s.phase += s.increment
	if s.phase >= twoPi {
		s.phase -= twoPi
	}
	return out
}

// Reset restarts the sequence at phase 0.
func (s *Sine) Reset() {
	s.phase = 0
}
