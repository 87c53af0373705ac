// Package preamp implements the input stage of the chain: a fixed
// saturating nonlinearity, a one-pole tone low-pass and an output gain.
package preamp

import (
	"math"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/filter/biquad"
	"github.com/cwbudde/tapdancer/dsp/filter/design"
	"github.com/cwbudde/tapdancer/internal/assert"
)

const (
	// MinTone and MaxTone bound the tone cutoff in Hz.
	MinTone = 800.0
	MaxTone = 20000.0

	defaultDrive = 1.0
	defaultGain  = 1.0
)

// Saturate returns tanh(x^3 + e^x - 1). Saturate(0) is 0 and the output
// is always inside (-1, 1).
func Saturate(x float64) float64 {
	return math.Tanh(x*x*x + mathExp(x) - 1)
}

// Preamp applies Saturate(drive*x), the tone low-pass and a linear gain.
type Preamp struct {
	tone  biquad.Bank
	drive float64
	cut   float64
	gain  float64

	sampleRate float64
	prepared   bool
}

// New returns a preamp with unity drive and gain and the tone fully open.
func New() *Preamp {
	return &Preamp{drive: defaultDrive, cut: MaxTone, gain: defaultGain}
}

// Prepare sizes the tone filter for spec and clears its state.
func (p *Preamp) Prepare(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	p.sampleRate = spec.SampleRate
	p.tone.Prepare(spec.Channels)
	p.tone.SetCoefficients(design.FirstOrderLowpass(p.cut, p.sampleRate))
	p.prepared = true
	return nil
}

// SetSaturation sets the drive applied before the nonlinearity.
func (p *Preamp) SetSaturation(drive float64) { p.drive = drive }

// SetTone sets the tone cutoff in Hz, clamped to [MinTone, MaxTone].
// Coefficients are only recomputed when the cutoff changes.
func (p *Preamp) SetTone(hz float64) {
	hz = core.Clamp(hz, MinTone, MaxTone)
	if hz == p.cut {
		return
	}
	p.cut = hz
	if p.prepared {
		p.tone.SetCoefficients(design.FirstOrderLowpass(hz, p.sampleRate))
	}
}

// Tone returns the tone cutoff in Hz.
func (p *Preamp) Tone() float64 { return p.cut }

// ToneUpdates returns how often the tone coefficients were recomputed.
func (p *Preamp) ToneUpdates() int { return p.tone.Updates() }

// SetGain sets the linear output gain.
func (p *Preamp) SetGain(g float64) { p.gain = g }

// Process runs block through the preamp in place.
func (p *Preamp) Process(block *buffer.Block) {
	assert.That(p.prepared, "preamp: Process before Prepare")
	if !p.prepared {
		return
	}
	channels := min(block.Channels(), p.tone.Channels())
	for ch := 0; ch < channels; ch++ {
		buf := block.Channel(ch)
		for i, x := range buf {
			buf[i] = Saturate(x * p.drive)
		}
		p.tone.ProcessBlock(ch, buf)
		block.ApplyChannelGain(ch, p.gain)
	}
}

// Reset clears the tone filter state.
func (p *Preamp) Reset() {
	p.tone.Reset()
}
