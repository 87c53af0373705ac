package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// source produces the dry test signal fed into the chain.
type source interface {
	Next() float64
}

func newSource(kind string, sampleRate float64) (source, error) {
	switch kind {
	case "pluck":
		return &pluck{period: int(sampleRate), decay: math.Exp(-1 / (0.03 * sampleRate)), rng: rand.New(rand.NewSource(1))}, nil
	case "click":
		return &click{period: int(sampleRate)}, nil
	case "tone":
		return &toneBurst{period: int(sampleRate), length: int(0.2 * sampleRate), inc: 2 * math.Pi * 440 / sampleRate}, nil
	default:
		return nil, fmt.Errorf("unknown source %q (pluck, click, tone)", kind)
	}
}

// pluck is an exponentially decaying noise burst once per period.
type pluck struct {
	period int
	pos    int
	env    float64
	decay  float64
	rng    *rand.Rand
}

func (p *pluck) Next() float64 {
	if p.pos == 0 {
		p.env = 0.8
	}

	p.pos++
	if p.pos >= p.period {
		p.pos = 0
	}

	p.env *= p.decay

	return p.env * (2*p.rng.Float64() - 1)
}

// click is a single full-scale sample once per period.
type click struct {
	period int
	pos    int
}

func (c *click) Next() float64 {
	out := 0.0
	if c.pos == 0 {
		out = 1
	}

	c.pos++
	if c.pos >= c.period {
		c.pos = 0
	}

	return out
}

// toneBurst is a Hann-windowed 440 Hz burst once per period.
type toneBurst struct {
	period int
	length int
	pos    int
	phase  float64
	inc    float64
}

func (t *toneBurst) Next() float64 {
	out := 0.0
	if t.pos < t.length {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(t.pos)/float64(t.length))
		out = 0.5 * w * math.Sin(t.phase)
		t.phase += t.inc
	}

	t.pos++
	if t.pos >= t.period {
		t.pos = 0
		t.phase = 0
	}

	return out
}

// loop replays a mono mixdown of a file forever.
type loop struct {
	samples []float64
	pos     int
}

// newLoop mixes channels down to mono. It fails on empty input.
func newLoop(channels [][]float64) (*loop, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, errors.New("input file has no samples")
	}

	mono := make([]float64, len(channels[0]))
	scale := 1 / float64(len(channels))

	for _, ch := range channels {
		for i, v := range ch[:min(len(ch), len(mono))] {
			mono[i] += v * scale
		}
	}

	return &loop{samples: mono}, nil
}

func (l *loop) Next() float64 {
	v := l.samples[l.pos]

	l.pos++
	if l.pos == len(l.samples) {
		l.pos = 0
	}

	return v
}
