// Package allpass implements a Schroeder all-pass stage with an optional
// sine-modulated delay time.
package allpass

import (
	"fmt"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/delay"
	"github.com/cwbudde/tapdancer/dsp/oscillator"
	"github.com/cwbudde/tapdancer/internal/assert"
)

// DefaultFeedback is the feedback coefficient a new stage starts with.
const DefaultFeedback = 0.56

// Stage is a multichannel Schroeder all-pass:
//
//	delayed = line[n - delay]
//	w       = x - f*delayed
//	y       = delayed + f*w
//
// giving H(z) = (f + z^-D) / (1 + f*z^-D). With modulation enabled the delay
// is offset per sample by amount*lfo, with the LFO inverted on channel 1.
type Stage struct {
	line delay.Line
	osc  []oscillator.Sine

	delay     float64
	feedback  float64
	modulated bool
	modFreq   float64
	modAmount float64

	prepared bool
}

// New returns a stage with DefaultFeedback and a one-sample delay.
func New() *Stage {
	return &Stage{feedback: DefaultFeedback, delay: 1}
}

// Prepare allocates a delay line of maxDelay samples per channel and resets
// all state. The configured delay, feedback and modulation are kept.
func (s *Stage) Prepare(spec core.ProcessSpec, maxDelay int) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := s.line.Prepare(maxDelay, spec.Channels, spec.SampleRate); err != nil {
		return fmt.Errorf("allpass: %w", err)
	}

	s.osc = make([]oscillator.Sine, spec.Channels)
	for ch := range s.osc {
		s.osc[ch].SetFrequency(s.modFreq)
		s.osc[ch].Prepare(spec.SampleRate)
	}
	if s.delay < 1 {
		s.delay = 1
	}
	s.line.SetDelay(min(s.delay, float64(maxDelay-1)))
	s.prepared = true
	return nil
}

// SetDelay sets the base delay in samples. Repeating the current value is a no-op.
func (s *Stage) SetDelay(samples float64) {
	if samples == s.delay {
		return
	}
	s.delay = samples
	if s.prepared {
		s.line.SetDelay(samples)
	}
}

// Delay returns the base delay in samples.
func (s *Stage) Delay() float64 { return s.delay }

// SetFeedback sets the all-pass coefficient; |f| < 1 keeps the stage stable.
func (s *Stage) SetFeedback(f float64) { s.feedback = f }

// Feedback returns the all-pass coefficient.
func (s *Stage) Feedback() float64 { return s.feedback }

// SetModulation enables or disables delay modulation.
func (s *Stage) SetModulation(on bool) { s.modulated = on }

// SetModFrequency sets the LFO rate in Hz. Repeating the current value is a no-op.
func (s *Stage) SetModFrequency(hz float64) {
	if hz == s.modFreq {
		return
	}
	s.modFreq = hz
	for ch := range s.osc {
		s.osc[ch].SetFrequency(hz)
	}
}

// SetModAmount sets the modulation depth in samples. The base delay plus
// the depth must stay inside [1, maxDelay).
func (s *Stage) SetModAmount(samples float64) { s.modAmount = samples }

// ProcessSample runs one sample of channel ch through the stage.
func (s *Stage) ProcessSample(ch int, x float64) float64 {
	d := s.delay
	if s.modulated {
		m := s.osc[ch].Next() * s.modAmount
		if ch == 1 {
			m = -m
		}
		d += m
	}

	delayed := s.line.Pop(ch, d)
	w := x - s.feedback*delayed
	s.line.Push(ch, w)
	return delayed + s.feedback*w
}

// Process runs channel ch of block in place.
func (s *Stage) Process(block *buffer.Block, ch int) {
	s.ProcessSlice(block.Channel(ch), ch)
}

// ProcessSlice runs buf in place as channel ch.
func (s *Stage) ProcessSlice(buf []float64, ch int) {
	assert.That(s.prepared, "allpass: process before Prepare")
	if !s.prepared {
		return
	}
	for i, x := range buf {
		buf[i] = s.ProcessSample(ch, x)
	}
}

// Reset clears the delay history and restarts the LFOs.
func (s *Stage) Reset() {
	s.line.Reset()
	for ch := range s.osc {
		s.osc[ch].Reset()
	}
}
