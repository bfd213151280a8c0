// Package pcm defines the sample buffer passed between synthesis, mixing
// and export.
package pcm

import (
	"errors"
	"math"
)

const (
	// SampleRate is the fixed rate of every buffer produced by the synthesis core.
	SampleRate = 44100
	// BitDepth is the bit depth of exported samples.
	BitDepth = 16
	// MaxAmplitude is full scale for a signed 16-bit sample.
	MaxAmplitude = 32767.0
)

// ErrFormatMismatch is returned when buffers with different sample rates are combined.
var ErrFormatMismatch = errors.New("pcm: sample rate mismatch")

// Buffer holds interleaved audio frames. Samples are kept as float64 in the
// signed 16-bit range and only quantized by Int16.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// New allocates a silent buffer.
func New(sampleRate, channels, frames int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	if frames < 0 {
		frames = 0
	}
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([]float64, frames*channels),
	}
}

// Silence returns a mono silent buffer of the given duration at SampleRate.
func Silence(durationMs float64) *Buffer {
	return New(SampleRate, 1, FrameCount(durationMs, SampleRate))
}

// FrameCount converts a duration to a frame count, rounding to the nearest frame.
func FrameCount(durationMs float64, sampleRate int) int {
	if durationMs <= 0 {
		return 0
	}
	return int(math.Round(durationMs * float64(sampleRate) / 1000))
}

func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b *Buffer) DurationMs() float64 {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) * 1000 / float64(b.SampleRate)
}

func (b *Buffer) Clone() *Buffer {
	out := &Buffer{SampleRate: b.SampleRate, Channels: b.Channels, Samples: make([]float64, len(b.Samples))}
	copy(out.Samples, b.Samples)
	return out
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// IsSilent reports whether every sample is exactly zero.
func (b *Buffer) IsSilent() bool {
	for _, s := range b.Samples {
		if s != 0 {
			return false
		}
	}
	return true
}

// ApplyGain scales the buffer in place by db decibels.
func (b *Buffer) ApplyGain(db float64) *Buffer {
	g := DBToLinear(db)
	for i := range b.Samples {
		b.Samples[i] *= g
	}
	return b
}

// Stereo returns b unchanged if it already has two channels, otherwise a copy
// with every mono sample duplicated to both sides.
func (b *Buffer) Stereo() *Buffer {
	if b.Channels == 2 {
		return b
	}
	out := New(b.SampleRate, 2, b.Frames())
	for i := 0; i < b.Frames(); i++ {
		s := b.Samples[i*b.Channels]
		out.Samples[i*2] = s
		out.Samples[i*2+1] = s
	}
	return out
}

// Pan places the buffer in the stereo field. pan is in [-1, 1]; negative
// values favour the left channel. With b = |pan|·6 dB, the favoured side is
// boosted by b/2 and the other side scaled by 2 - 10^(b/20).
func (b *Buffer) Pan(pan float64) *Buffer {
	pan = max(-1, min(1, pan))
	maxBoostDB := LinearToDB(2)
	boostDB := math.Abs(pan) * maxBoostDB
	reduceGain := max(0, DBToLinear(maxBoostDB)-DBToLinear(boostDB))
	boostGain := DBToLinear(boostDB / 2)
	left, right := reduceGain, boostGain
	if pan < 0 {
		left, right = boostGain, reduceGain
	}
	src := b.Stereo()
	out := New(src.SampleRate, 2, src.Frames())
	for i := 0; i < src.Frames(); i++ {
		out.Samples[i*2] = src.Samples[i*2] * left
		out.Samples[i*2+1] = src.Samples[i*2+1] * right
	}
	return out
}

// Overlay adds src into b starting at frame offset. Samples that would fall
// past the end of b are dropped. A mono src is spread to both channels of a
// stereo b; a stereo src is averaged into a mono b.
func (b *Buffer) Overlay(src *Buffer, offset int) error {
	if src == nil {
		return nil
	}
	if src.SampleRate != b.SampleRate {
		return ErrFormatMismatch
	}
	if offset < 0 {
		offset = 0
	}
	n := src.Frames()
	if offset+n > b.Frames() {
		n = b.Frames() - offset
	}
	for i := 0; i < n; i++ {
		dst := (offset + i) * b.Channels
		switch {
		case src.Channels == b.Channels:
			for c := 0; c < b.Channels; c++ {
				b.Samples[dst+c] += src.Samples[i*src.Channels+c]
			}
		case src.Channels == 1:
			s := src.Samples[i]
			for c := 0; c < b.Channels; c++ {
				b.Samples[dst+c] += s
			}
		default:
			var sum float64
			for c := 0; c < src.Channels; c++ {
				sum += src.Samples[i*src.Channels+c]
			}
			b.Samples[dst] += sum / float64(src.Channels)
		}
	}
	return nil
}

// PadTo returns a copy extended with trailing silence to frames. Longer
// buffers are returned unchanged.
func (b *Buffer) PadTo(frames int) *Buffer {
	if b.Frames() >= frames {
		return b
	}
	out := New(b.SampleRate, b.Channels, frames)
	copy(out.Samples, b.Samples)
	return out
}

// FadeOut ramps the last frames of the buffer linearly down to silence.
func (b *Buffer) FadeOut(frames int) {
	total := b.Frames()
	if frames > total {
		frames = total
	}
	if frames <= 0 {
		return
	}
	start := total - frames
	for i := 0; i < frames; i++ {
		g := 1 - float64(i+1)/float64(frames)
		for c := 0; c < b.Channels; c++ {
			b.Samples[(start+i)*b.Channels+c] *= g
		}
	}
}

// Int16 quantizes the buffer, saturating at the 16-bit limits.
func (b *Buffer) Int16() []int16 {
	out := make([]int16, len(b.Samples))
	for i, s := range b.Samples {
		out[i] = Quantize(s)
	}
	return out
}

// Quantize rounds a sample to int16, saturating at the limits.
func Quantize(s float64) int16 {
	if math.IsNaN(s) {
		return 0
	}
	s = math.Round(s)
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}

func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func LinearToDB(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(ratio)
}
