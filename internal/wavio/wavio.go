// Package wavio reads and writes multichannel float64 audio as WAV files.
package wavio

import (
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ErrInvalidFile is returned for files that do not decode as WAV.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

// Write stores channels as 16-bit PCM, clipped to [-1, 1]. All channels
// must have the same length.
func Write(path string, sampleRate int, channels [][]float64) (err error) {
	if len(channels) == 0 {
		return errors.New("wavio: no channels")
	}

	frames := len(channels[0])
	for ch := range channels {
		if len(channels[ch]) != frames {
			return fmt.Errorf("wavio: channel %d has %d frames, want %d", ch, len(channels[ch]), frames)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	data := Interleave(channels)
	for i, v := range data {
		data[i] = min(max(v, -1), 1)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, len(channels), 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: len(channels),
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: write %s: %w", path, err)
	}

	return enc.Close()
}

// Read loads a WAV file and returns its channels and sample rate.
func Read(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decode %s: %w", path, err)
	}

	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	return Deinterleave(buf.Data, buf.Format.NumChannels), buf.Format.SampleRate, nil
}

// Interleave packs planar channels into frame order.
func Interleave(channels [][]float64) []float32 {
	if len(channels) == 0 {
		return nil
	}

	n := len(channels)
	out := make([]float32, len(channels[0])*n)

	for ch, samples := range channels {
		for i, v := range samples {
			out[i*n+ch] = float32(v)
		}
	}

	return out
}

// Deinterleave splits frame-ordered samples into n planar channels.
// A trailing partial frame is dropped.
func Deinterleave(data []float32, n int) [][]float64 {
	frames := len(data) / n
	out := make([][]float64, n)

	for ch := range out {
		out[ch] = make([]float64, frames)
		for i := range frames {
			out[ch][i] = float64(data[i*n+ch])
		}
	}

	return out
}
