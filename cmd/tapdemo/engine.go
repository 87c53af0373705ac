package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/tapdancer/dsp/buffer"
	"github.com/cwbudde/tapdancer/dsp/effectchain"
)

const bytesPerSample = 4

// engine renders the chain into interleaved float32 little-endian frames.
// Read runs on the audio goroutine; only the chain's Params and the peak
// meter are shared with other goroutines.
type engine struct {
	chain *effectchain.Chain
	src   source
	block *buffer.Block

	pending int // rendered frames in block not yet delivered
	offset  int

	peakBits atomic.Uint64
}

func newEngine(chain *effectchain.Chain, src source) *engine {
	spec := chain.Spec()

	return &engine{
		chain: chain,
		src:   src,
		block: buffer.New(spec.Channels, spec.MaxBlockSize),
	}
}

// Read fills p with whole frames. Trailing bytes that do not form a whole
// frame are left untouched and not counted.
func (e *engine) Read(p []byte) (int, error) {
	channels := e.block.Channels()
	frameSize := channels * bytesPerSample
	frames := len(p) / frameSize

	peak := 0.0

	for f := 0; f < frames; f++ {
		if e.pending == 0 {
			e.render()
		}

		for ch := range channels {
			v := e.block.Channel(ch)[e.offset]
			peak = max(peak, math.Abs(v))
			pos := f*frameSize + ch*bytesPerSample
			binary.LittleEndian.PutUint32(p[pos:], math.Float32bits(float32(v)))
		}

		e.offset++
		e.pending--
	}

	e.peakBits.Store(math.Float64bits(peak))

	return frames * frameSize, nil
}

// Peak returns the largest magnitude delivered by the last Read.
func (e *engine) Peak() float64 {
	return math.Float64frombits(e.peakBits.Load())
}

func (e *engine) render() {
	b := e.block
	for i := range b.Len() {
		x := e.src.Next()
		for ch := range b.Channels() {
			b.Channel(ch)[i] = x
		}
	}

	e.chain.Process(b)
	e.pending = b.Len()
	e.offset = 0
}
