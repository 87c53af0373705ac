// Package mix provides dry/wet mixing and stereo panning for sample blocks.
//
// Both use the balanced rule: the centre position keeps both sides at unity
// and moving away attenuates only the opposite side, linearly to zero.
package mix

import (
	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
)

// BalancedGains returns the dry and wet gains for a wet proportion in [0, 1].
//
//	dry = 2*min(0.5, 1-wet), wet = 2*min(0.5, wet)
func BalancedGains(wet float64) (dryGain, wetGain float64) {
	wet = core.Clamp(wet, 0, 1)
	return 2 * min(0.5, 1-wet), 2 * min(0.5, wet)
}

// DryWet blends a stored dry copy into processed blocks.
type DryWet struct {
	dry     *buffer.Block
	wet     float64
	dryGain float64
	wetGain float64
}

// Prepare allocates the dry copy for channels x maxBlockSize.
func (m *DryWet) Prepare(channels, maxBlockSize int) {
	m.dry = buffer.New(channels, maxBlockSize)
	m.SetWet(m.wet)
}

// SetWet sets the wet proportion in [0, 1].
func (m *DryWet) SetWet(wet float64) {
	m.wet = core.Clamp(wet, 0, 1)
	m.dryGain, m.wetGain = BalancedGains(m.wet)
}

// Wet returns the wet proportion.
func (m *DryWet) Wet() float64 { return m.wet }

// PushDry stores a copy of block as the dry signal.
func (m *DryWet) PushDry(block *buffer.Block) {
	m.dry.CopyFrom(block)
}

// MixWet replaces block with wetGain*block + dryGain*dry.
func (m *DryWet) MixWet(block *buffer.Block) {
	channels := min(block.Channels(), m.dry.Channels())
	for ch := 0; ch < channels; ch++ {
		block.ApplyChannelGain(ch, m.wetGain)
		if m.dryGain != 0 {
			block.AddFrom(ch, m.dry.Channel(ch), m.dryGain)
		}
	}
}
