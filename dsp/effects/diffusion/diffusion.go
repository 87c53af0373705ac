// Package diffusion implements the all-pass diffusion network used as the
// reverb tail of the chain.
//
// Per channel and block:
//
//	x += ramp(fbPrev, fb) * carry     // previous block's feedback path
//	x = ap2(ap1(x))
//	carry = tanh(-damp(apFeedback(x)))
//	y = lowpass(apMod(x))
//
// The tanh keeps |carry| <= 1, which bounds the loop for any decay.
package diffusion

import (
	"fmt"
	"math"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/effects/allpass"
	"github.com/cwbudde/tapdancer/dsp/filter/biquad"
	"github.com/cwbudde/tapdancer/dsp/filter/design"
	"github.com/cwbudde/tapdancer/internal/assert"
)

const (
	// MaxDelay is the delay line length of every all-pass in samples.
	MaxDelay = 6500

	// MaxDecay keeps the longest all-pass delay inside MaxDelay.
	MaxDecay = 3000.0

	// Delay ratios relative to decay.
	ratioSecond   = 1.39
	ratioMod      = 1.93
	ratioFeedback = 2.0

	feedbackStageCoefficient = 0.6
	feedbackPerDecay         = 1.0 / 4000
	dampingRatio             = 1.4

	defaultDecay = 600.0
	defaultDamp  = 20000.0
)

// Stage is a stereo-capable diffusion network. Create it with New.
type Stage struct {
	first, second *allpass.Stage
	modulated     *allpass.Stage
	loop          *allpass.Stage

	output  biquad.Bank
	damping biquad.Bank

	carry *buffer.Block

	spec     core.ProcessSpec
	prepared bool

	decay    float64
	damp     float64
	feedback float64
	applied  float64
}

// New returns a stage with decay 600 samples and damping at 20 kHz.
func New() *Stage {
	s := &Stage{
		first:     allpass.New(),
		second:    allpass.New(),
		modulated: allpass.New(),
		loop:      allpass.New(),
		decay:     defaultDecay,
		damp:      defaultDamp,
	}
	s.loop.SetFeedback(feedbackStageCoefficient)
	s.modulated.SetModulation(true)
	s.applyDecay()
	s.applied = s.feedback
	return s
}

// Prepare allocates all-pass lines, filters and the carryover block for
// spec and resets all state.
func (s *Stage) Prepare(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	for _, ap := range s.stages() {
		if err := ap.Prepare(spec, MaxDelay); err != nil {
			return fmt.Errorf("diffusion: %w", err)
		}
	}

	s.output.Prepare(spec.Channels)
	s.damping.Prepare(spec.Channels)
	s.carry = buffer.New(spec.Channels, spec.MaxBlockSize)
	s.carry.SetLen(0)

	s.spec = spec
	s.prepared = true
	s.applied = s.feedback
	s.applyDamp()
	return nil
}

// UpdateParams sets decay (samples), damp (Hz), modulation rate (Hz) and
// depth (samples). Delays and filters are only recomputed when decay or damp
// differ from the previous call.
func (s *Stage) UpdateParams(decay, damp, modRate, modAmount float64) {
	decay = core.Clamp(decay, 1, MaxDecay)
	if decay != s.decay {
		s.decay = decay
		s.applyDecay()
	}
	if damp != s.damp {
		s.damp = damp
		s.applyDamp()
	}

	s.modulated.SetModFrequency(modRate)
	s.modulated.SetModAmount(modAmount)
}

// Decay returns the current decay in samples.
func (s *Stage) Decay() float64 { return s.decay }

// Feedback returns the loop gain, decay/4000.
func (s *Stage) Feedback() float64 { return s.feedback }

// FilterUpdates returns how often the output low-pass was recomputed.
func (s *Stage) FilterUpdates() int { return s.output.Updates() }

// Carry returns the feedback signal of channel ch left by the last block.
func (s *Stage) Carry(ch int) []float64 { return s.carry.Channel(ch) }

// Process runs block through the network in place.
func (s *Stage) Process(block *buffer.Block) {
	assert.That(s.prepared, "diffusion: Process before Prepare")
	if !s.prepared {
		return
	}
	n := block.Len()
	assert.That(n <= s.spec.MaxBlockSize, "diffusion: block length %d exceeds prepared %d", n, s.spec.MaxBlockSize)
	n = min(n, s.spec.MaxBlockSize)
	channels := min(block.Channels(), s.spec.Channels)

	prevLen := s.carry.Len()
	for ch := 0; ch < channels; ch++ {
		buf := block.Channel(ch)[:n]

		s.carry.SetLen(prevLen)
		block.AddFromWithRamp(ch, s.carry.Channel(ch), s.applied, s.feedback)

		s.first.ProcessSlice(buf, ch)
		s.second.ProcessSlice(buf, ch)

		s.carry.SetLen(n)
		carry := s.carry.Channel(ch)
		copy(carry, buf)
		s.loop.ProcessSlice(carry, ch)
		s.damping.ProcessBlock(ch, carry)
		for i, v := range carry {
			carry[i] = core.FlushDenormals(math.Tanh(-v))
		}

		s.modulated.ProcessSlice(buf, ch)
		s.output.ProcessBlock(ch, buf)
	}
	s.carry.SetLen(n)
	s.applied = s.feedback
}

// Reset clears all delay, filter and carryover state.
func (s *Stage) Reset() {
	for _, ap := range s.stages() {
		ap.Reset()
	}
	s.output.Reset()
	s.damping.Reset()
	if s.carry != nil {
		s.carry.SetLen(0)
	}
	s.applied = s.feedback
}

func (s *Stage) applyDecay() {
	s.feedback = s.decay * feedbackPerDecay
	s.first.SetDelay(s.decay)
	s.second.SetDelay(ratioSecond * s.decay)
	s.modulated.SetDelay(ratioMod * s.decay)
	s.loop.SetDelay(ratioFeedback * s.decay)
}

func (s *Stage) applyDamp() {
	if !s.prepared {
		return
	}
	s.output.SetCoefficients(design.FirstOrderLowpass(s.damp, s.spec.SampleRate))
	s.damping.SetCoefficients(design.FirstOrderLowpass(s.damp/dampingRatio, s.spec.SampleRate))
}

func (s *Stage) stages() [4]*allpass.Stage {
	return [4]*allpass.Stage{s.first, s.second, s.modulated, s.loop}
}
