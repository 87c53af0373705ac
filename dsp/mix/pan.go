package mix

import (
	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/core"
)

// BalancedPan returns the left and right gains for pan in [-1, 1]
// (-1 hard left, 0 centre, 1 hard right).
func BalancedPan(pan float64) (left, right float64) {
	p := (core.Clamp(pan, -1, 1) + 1) / 2
	return 2 * min(0.5, 1-p), 2 * min(0.5, p)
}

// Pan applies a balanced pan to the first two channels of block.
// Mono blocks are left untouched.
func Pan(block *buffer.Block, pan float64) {
	if block.Channels() < 2 {
		return
	}
	left, right := BalancedPan(pan)
	block.ApplyChannelGain(0, left)
	block.ApplyChannelGain(1, right)
}
