package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpec is returned when a ProcessSpec cannot be prepared.
var ErrInvalidSpec = errors.New("core: invalid process spec")

// ProcessSpec describes the stream a component is prepared for.
// It is immutable for the lifetime of a prepared component; changing any
// field requires calling Prepare again.
type ProcessSpec struct {
	SampleRate   float64
	Channels     int
	MaxBlockSize int
}

// ProcessorOption mutates a ProcessSpec under construction.
type ProcessorOption func(*ProcessSpec)

// DefaultProcessSpec returns a stereo 48 kHz spec with 512-sample blocks.
func DefaultProcessSpec() ProcessSpec {
	return ProcessSpec{
		SampleRate:   48000,
		Channels:     2,
		MaxBlockSize: 512,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(spec *ProcessSpec) {
		if sampleRate > 0 {
			spec.SampleRate = sampleRate
		}
	}
}

// WithChannels sets the channel count.
func WithChannels(channels int) ProcessorOption {
	return func(spec *ProcessSpec) {
		if channels > 0 {
			spec.Channels = channels
		}
	}
}

// WithBlockSize sets the maximum block length.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(spec *ProcessSpec) {
		if blockSize > 0 {
			spec.MaxBlockSize = blockSize
		}
	}
}

// NewProcessSpec applies zero or more options to the default spec.
func NewProcessSpec(opts ...ProcessorOption) ProcessSpec {
	spec := DefaultProcessSpec()
	for _, opt := range opts {
		if opt != nil {
			opt(&spec)
		}
	}
	return spec
}

// Validate reports whether the spec can be used to prepare a component.
func (s ProcessSpec) Validate() error {
	if s.SampleRate <= 0 || math.IsNaN(s.SampleRate) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidSpec, s.SampleRate)
	}
	if s.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidSpec, s.Channels)
	}
	if s.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: max block size must be > 0: %d", ErrInvalidSpec, s.MaxBlockSize)
	}
	return nil
}
