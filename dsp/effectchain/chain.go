// Package effectchain wires the preamp, multi-tap delay and diffusion stages
// into the complete effect and owns the shared parameter store.
//
// Order per block:
//
//	dry copy -> preamp -> multi-tap -> diffusion (when Diffuser > 0)
//	         -> low cut -> dry/wet mix -> output gain
//
// The diffusion section runs two stages. Stage 2's output from the previous
// block is fed back into stage 1's input, and stage 2 processes a copy of
// stage 1's output. The result is blended with the pre-diffusion signal.
package effectchain

import (
	"fmt"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
	"github.com/cwbudde/tapdancer/dsp/effects/diffusion"
	"github.com/cwbudde/tapdancer/dsp/effects/multitap"
	"github.com/cwbudde/tapdancer/dsp/effects/preamp"
	"github.com/cwbudde/tapdancer/dsp/filter/biquad"
	"github.com/cwbudde/tapdancer/dsp/filter/design"
	"github.com/cwbudde/tapdancer/dsp/mix"
	"github.com/cwbudde/tapdancer/internal/assert"
)

// Option configures a Chain.
type Option func(*Chain)

// WithParams makes the chain read from p instead of a private store.
func WithParams(p *Params) Option {
	return func(c *Chain) {
		if p != nil {
			c.params = p
		}
	}
}

// WithCrossfeed sets the gain of the stage 2 to stage 1 diffusion feedback.
func WithCrossfeed(g float64) Option {
	return func(c *Chain) { c.crossfeedGain = g }
}

// Chain is the complete effect. Prepare it once per stream, then call
// Process from the audio goroutine. Only Params is safe for concurrent use.
type Chain struct {
	params *Params

	pre     *preamp.Preamp
	taps    *multitap.Delay
	diffuse [2]*diffusion.Stage

	dry      mix.DryWet
	decayMix mix.DryWet
	lowCut   biquad.Bank

	crossfeed     *buffer.Block
	crossfeedGain float64
	view          *buffer.Block

	lowCutHz float64
	spec     core.ProcessSpec
	prepared bool
	last     Settings
}

// New returns an unprepared chain.
func New(opts ...Option) *Chain {
	c := &Chain{
		pre:           preamp.New(),
		taps:          multitap.NewDelay(multitap.DefaultTaps),
		diffuse:       [2]*diffusion.Stage{diffusion.New(), diffusion.New()},
		crossfeedGain: defaultCrossfeed,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.params == nil {
		c.params = NewParams()
	}

	return c
}

// Params returns the parameter store read at the start of every block.
func (c *Chain) Params() *Params { return c.params }

// Spec returns the spec of the last successful Prepare.
func (c *Chain) Spec() core.ProcessSpec { return c.spec }

// LastSettings returns the snapshot used by the most recent block.
func (c *Chain) LastSettings() Settings { return c.last }

// Prepare allocates every stage for spec and resets all state. Calling it
// again with the same spec yields the same output for the same input.
func (c *Chain) Prepare(spec core.ProcessSpec) error {
	err := spec.Validate()
	if err != nil {
		return fmt.Errorf("effectchain: %w", err)
	}

	err = c.pre.Prepare(spec)
	if err != nil {
		return fmt.Errorf("effectchain: preamp: %w", err)
	}

	err = c.taps.Prepare(spec)
	if err != nil {
		return fmt.Errorf("effectchain: taps: %w", err)
	}

	for i, stage := range c.diffuse {
		err = stage.Prepare(spec)
		if err != nil {
			return fmt.Errorf("effectchain: diffuser %d: %w", i+1, err)
		}
	}

	c.dry.Prepare(spec.Channels, spec.MaxBlockSize)
	c.decayMix.Prepare(spec.Channels, spec.MaxBlockSize)
	c.crossfeed = buffer.New(spec.Channels, spec.MaxBlockSize)
	c.crossfeed.SetLen(0)
	c.view = buffer.New(spec.Channels, 0)

	c.lowCut.Prepare(spec.Channels)
	c.lowCutHz = paramInfos[LowCut].Default
	c.lowCut.SetCoefficients(design.FirstOrderHighpass(c.lowCutHz, spec.SampleRate))

	c.spec = spec
	c.prepared = true

	return nil
}

// Process runs block through the chain in place. Blocks longer than the
// prepared maximum are a caller error; release builds split them.
func (c *Chain) Process(block *buffer.Block) {
	assert.That(c.prepared, "effectchain: Process before Prepare")

	if !c.prepared {
		return
	}

	n := block.Len()
	limit := c.spec.MaxBlockSize
	assert.That(n <= limit, "effectchain: block length %d exceeds prepared %d", n, limit)

	if n <= limit {
		c.processBlock(block)
		return
	}

	for start := 0; start < n; start += limit {
		block.View(c.view, start, min(start+limit, n))
		c.processBlock(c.view)
	}
}

// Reset clears every delay, filter and feedback state without reallocating.
func (c *Chain) Reset() {
	c.pre.Reset()
	c.taps.Reset()

	for _, stage := range c.diffuse {
		stage.Reset()
	}

	c.lowCut.Reset()

	if c.crossfeed != nil {
		c.crossfeed.SetLen(0)
	}
}

func (c *Chain) processBlock(block *buffer.Block) {
	s := c.params.Snapshot()
	c.last = s

	c.dry.PushDry(block)

	c.pre.SetSaturation(s.Saturate)
	c.pre.SetTone(s.Tone)
	c.pre.SetGain(s.Gain)
	c.pre.Process(block)

	c.applyTaps(s)
	c.taps.Process(block)

	if s.Diffuser > 0 {
		c.processDiffusion(block, s)
	} else {
		c.crossfeed.SetLen(0)
	}

	c.applyLowCut(s.LowCut)

	for ch := 0; ch < min(block.Channels(), c.spec.Channels); ch++ {
		c.lowCut.ProcessBlock(ch, block.Channel(ch))
	}

	c.dry.SetWet(s.DryWet)
	c.dry.MixWet(block)
	block.ApplyGain(s.OutputGain)
}

func (c *Chain) applyTaps(s Settings) {
	c.taps.SetTaps(s.Taps)
	c.taps.SetFeedback(s.Feedback)

	for i, on := range s.TapFeedback {
		c.taps.SetTapFeedback(i, on)
	}

	c.taps.SetWidth(s.Width)
	c.taps.SetTime(s.DelayTime)
	c.taps.SetSpread(s.DelaySpread)
	c.taps.SetModulation(s.TapModulation())
	c.taps.SetDamping(s.Damping)
}

func (c *Chain) processDiffusion(block *buffer.Block, s Settings) {
	decay := s.DiffuserDecay()
	rate, depth := s.DiffuserModulation()
	c.diffuse[0].UpdateParams(decay, s.Damping, rate, depth)
	c.diffuse[1].UpdateParams(decay, s.Damping, rate, -depth)

	c.decayMix.SetWet(s.DiffuserWet())
	c.decayMix.PushDry(block)

	channels := min(block.Channels(), c.spec.Channels)
	for ch := 0; ch < channels; ch++ {
		block.AddFrom(ch, c.crossfeed.Channel(ch), c.crossfeedGain)
	}

	c.diffuse[0].Process(block)
	c.crossfeed.CopyFrom(block)
	c.diffuse[1].Process(c.crossfeed)

	c.decayMix.MixWet(block)
}

func (c *Chain) applyLowCut(hz float64) {
	if hz == c.lowCutHz {
		return
	}

	c.lowCutHz = hz
	c.lowCut.SetCoefficients(design.FirstOrderHighpass(hz, c.spec.SampleRate))
}
