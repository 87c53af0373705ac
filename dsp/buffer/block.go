package buffer

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/tapdancer/internal/assert"
)

// Block is a fixed-channel-count sequence of float64 samples per channel,
// addressed by (channel, sample index).
type Block struct {
	data   [][]float64
	length int
	max    int
}

// New returns a zero-filled block with the given channel count and
// maximum length. The current length starts at maxLength.
func New(channels, maxLength int) *Block {
	if channels < 0 {
		channels = 0
	}
	if maxLength < 0 {
		maxLength = 0
	}

	b := &Block{data: make([][]float64, channels), length: maxLength, max: maxLength}
	for ch := range b.data {
		b.data[ch] = make([]float64, maxLength)
	}
	return b
}

// FromChannels wraps caller-owned channel slices without copying.
// All channels must have the same length; the shortest one wins otherwise.
func FromChannels(channels [][]float64) *Block {
	n := 0
	for i, ch := range channels {
		if i == 0 || len(ch) < n {
			n = len(ch)
		}
	}

	data := make([][]float64, len(channels))
	for i, ch := range channels {
		data[i] = ch[:n]
	}
	return &Block{data: data, length: n, max: n}
}

// Channels returns the channel count.
func (b *Block) Channels() int { return len(b.data) }

// Len returns the current per-channel length.
func (b *Block) Len() int { return b.length }

// MaxLen returns the length the block was sized for.
func (b *Block) MaxLen() int { return b.max }

// Channel returns the samples of channel ch for the current length.
// Mutations are visible through the block.
func (b *Block) Channel(ch int) []float64 {
	return b.data[ch][:b.length]
}

// SetLen changes the current length. Lengths beyond MaxLen are a caller
// error; release builds clamp.
func (b *Block) SetLen(n int) {
	assert.That(n >= 0 && n <= b.max, "block length %d outside [0, %d]", n, b.max)
	if n < 0 {
		n = 0
	}
	if n > b.max {
		n = b.max
	}
	b.length = n
}

// Zero clears the current length of every channel.
func (b *Block) Zero() {
	for ch := range b.data {
		clear(b.data[ch][:b.length])
	}
}

// CopyFrom makes b a copy of src: the length follows src (clamped to
// MaxLen) and the overlapping channels are copied.
func (b *Block) CopyFrom(src *Block) {
	b.SetLen(src.length)

	channels := min(len(b.data), len(src.data))
	for ch := 0; ch < channels; ch++ {
		copy(b.data[ch][:b.length], src.data[ch][:b.length])
	}
}

// ApplyGain multiplies every sample by g.
func (b *Block) ApplyGain(g float64) {
	if g == 1 {
		return
	}
	for ch := range b.data {
		b.ApplyChannelGain(ch, g)
	}
}

// ApplyChannelGain multiplies channel ch by g.
func (b *Block) ApplyChannelGain(ch int, g float64) {
	samples := b.data[ch][:b.length]
	if g == 0 {
		clear(samples)
		return
	}
	vecmath.ScaleBlock(samples, samples, g)
}

// AddFrom adds src scaled by gain into channel ch.
// Only min(len(src), Len()) samples are touched.
func (b *Block) AddFrom(ch int, src []float64, gain float64) {
	n := min(len(src), b.length)
	dst := b.data[ch][:n]

	if gain == 1 {
		vecmath.AddBlockInPlace(dst, src[:n])
		return
	}
	for i := range dst {
		dst[i] += src[i] * gain
	}
}

// AddFromWithRamp adds src into channel ch with a gain moving linearly from
// startGain towards endGain across the touched samples.
func (b *Block) AddFromWithRamp(ch int, src []float64, startGain, endGain float64) {
	if startGain == endGain {
		b.AddFrom(ch, src, startGain)
		return
	}

	n := min(len(src), b.length)
	if n == 0 {
		return
	}

	dst := b.data[ch][:n]
	gain := startGain
	step := (endGain - startGain) / float64(n)
	for i := range dst {
		dst[i] += src[i] * gain
		gain += step
	}
}

// View points dst at samples [start, end) of b without copying. dst keeps
// its channel slice header array, so a view prepared once with New(ch, 0)
// can be re-pointed every block without allocating.
func (b *Block) View(dst *Block, start, end int) {
	assert.That(start >= 0 && start <= end && end <= b.length, "view [%d, %d) outside [0, %d)", start, end, b.length)
	start = max(0, min(start, b.length))
	end = max(start, min(end, b.length))

	if cap(dst.data) < len(b.data) {
		dst.data = make([][]float64, len(b.data))
	}
	dst.data = dst.data[:len(b.data)]
	for ch := range b.data {
		dst.data[ch] = b.data[ch][start:end]
	}
	dst.length = end - start
	dst.max = end - start
}
