// Package delay provides the multichannel fractional delay line shared by
// the all-pass and tap stages.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/tapdancer/dsp/interp"
	"github.com/cwbudde/tapdancer/internal/assert"
)

// Line is a per-channel circular delay line with Thiran interpolation.
//
// Each channel owns its own buffer and write cursor. Pop reads delay samples
// behind the cursor; Push writes at the cursor and advances it. Calling Pop
// before Push for a sample yields a delay of exactly delay samples.
type Line struct {
	buffers    [][]float64
	cursors    []int
	interps    []interp.Thiran
	maxLength  int
	sampleRate float64

	delay float64
	whole int
	frac  float64
	alpha float64
}

// Prepare allocates maxLength+1 samples per channel and resets all state.
// The extra slot holds the older interpolation neighbor of the longest delay.
func (d *Line) Prepare(maxLength, channels int, sampleRate float64) error {
	if maxLength < 2 {
		return fmt.Errorf("delay max length must be >= 2: %d", maxLength)
	}
	if channels <= 0 {
		return fmt.Errorf("delay channel count must be > 0: %d", channels)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}

	d.maxLength = maxLength
	d.sampleRate = sampleRate
	d.buffers = make([][]float64, channels)
	for ch := range d.buffers {
		d.buffers[ch] = make([]float64, maxLength+1)
	}
	d.cursors = make([]int, channels)
	d.interps = make([]interp.Thiran, channels)
	d.SetDelay(1)
	return nil
}

// MaxLength returns the configured maximum delay in samples.
func (d *Line) MaxLength() int { return d.maxLength }

// Channels returns the prepared channel count.
func (d *Line) Channels() int { return len(d.buffers) }

// SampleRate returns the prepared sample rate.
func (d *Line) SampleRate() float64 { return d.sampleRate }

// Delay returns the current delay in samples.
func (d *Line) Delay() float64 { return d.delay }

// SetDelay sets the delay used by subsequent pops, in samples.
// The valid range is [1, MaxLength); values outside it are a caller error
// and are clamped in release builds.
func (d *Line) SetDelay(samples float64) {
	upper := float64(d.maxLength)
	assert.That(samples >= 1 && samples < upper, "delay %f outside [1, %d)", samples, d.maxLength)
	if !(samples >= 1) {
		samples = 1
	}
	if samples >= upper {
		samples = math.Nextafter(upper, 0)
	}

	d.delay = samples
	d.whole, d.frac = interp.ThiranSplit(samples)
	d.alpha = interp.ThiranCoefficient(d.frac)
}

// Push writes one sample for channel ch and advances its cursor.
func (d *Line) Push(ch int, sample float64) {
	buf := d.buffers[ch]
	pos := d.cursors[ch]
	buf[pos] = sample
	pos++
	if pos >= len(buf) {
		pos = 0
	}
	d.cursors[ch] = pos
}

// Pop reads channel ch at the given delay in samples. The delay becomes
// the line's current delay.
func (d *Line) Pop(ch int, delay float64) float64 {
	if delay != d.delay {
		d.SetDelay(delay)
	}
	return d.read(ch)
}

func (d *Line) read(ch int) float64 {
	buf := d.buffers[ch]
	size := len(buf)

	newer := d.cursors[ch] - d.whole
	if newer < 0 {
		newer += size
	}
	older := newer - 1
	if older < 0 {
		older += size
	}

	return d.interps[ch].Tick(buf[newer], buf[older], d.frac, d.alpha)
}

// Reset clears every channel's history, cursor and interpolator state.
// The configured delay is kept.
func (d *Line) Reset() {
	for ch := range d.buffers {
		clear(d.buffers[ch])
		d.cursors[ch] = 0
		d.interps[ch].Reset()
	}
}
