// Package mixer sums aligned buffers with pan spread, gain staging and a
// static soft-knee compressor.
package mixer

import (
	"math"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// Compression configures the static soft-knee compressor run after summing.
type Compression struct {
	Enabled   bool
	Threshold float64 // fraction of the mix peak where compression starts
	Ratio     float64 // excess above threshold is divided by Ratio
}

// Params controls how buffers are combined.
type Params struct {
	StereoWidth float64 // pan spread for inputs cycling left/centre/right; 0 keeps channels as-is
	Crossfade   bool    // fade the tail of padded inputs instead of hard-cutting to silence
	CrossfadeMs float64
	GainStepDB  float64 // attenuation step, multiplied by log2(input count), applied after each added input
	Compression Compression
}

// DefaultParams returns the settings used for chords and score-level mixes.
func DefaultParams() Params {
	return Params{
		StereoWidth: 0.3,
		Crossfade:   true,
		CrossfadeMs: 100,
		GainStepDB:  2,
		Compression: Compression{Enabled: true, Threshold: 0.7, Ratio: 2.0},
	}
}

// VoiceParams returns mono settings for layering oscillators of a single voice.
func VoiceParams() Params {
	p := DefaultParams()
	p.StereoWidth = 0
	p.Crossfade = false
	return p
}

type Mixer struct {
	params Params
}

func New(params Params) *Mixer {
	return &Mixer{params: params}
}

func (m *Mixer) Params() Params { return m.params }

// Mix combines buffers into one whose length is the longest input. No inputs
// yields an empty mono buffer; a single input is returned as an untouched copy.
func (m *Mixer) Mix(buffers ...*pcm.Buffer) (*pcm.Buffer, error) {
	inputs := make([]*pcm.Buffer, 0, len(buffers))
	for _, b := range buffers {
		if b != nil {
			inputs = append(inputs, b)
		}
	}
	if len(inputs) == 0 {
		return pcm.New(pcm.SampleRate, 1, 0), nil
	}
	rate := inputs[0].SampleRate
	maxFrames, channels := 0, 1
	for _, b := range inputs {
		if b.SampleRate != rate {
			return nil, pcm.ErrFormatMismatch
		}
		if b.Frames() > maxFrames {
			maxFrames = b.Frames()
		}
		if b.Channels > channels {
			channels = b.Channels
		}
	}
	if len(inputs) == 1 {
		return inputs[0].Clone(), nil
	}

	aligned := make([]*pcm.Buffer, len(inputs))
	for i, b := range inputs {
		aligned[i] = m.align(b, maxFrames, i, channels)
	}

	mixed := aligned[0].Clone()
	step := -m.params.GainStepDB * math.Log2(float64(len(aligned)))
	for _, b := range aligned[1:] {
		if err := mixed.Overlay(b, 0); err != nil {
			return nil, err
		}
		mixed.ApplyGain(step)
	}
	if m.params.Compression.Enabled {
		Compress(mixed, m.params.Compression)
	}
	return mixed, nil
}

// align pads b to frames and places it in the stereo field.
func (m *Mixer) align(b *pcm.Buffer, frames int, index int, channels int) *pcm.Buffer {
	if b.Frames() < frames {
		if m.params.Crossfade {
			b = b.Clone()
			b.FadeOut(pcm.FrameCount(m.params.CrossfadeMs, b.SampleRate))
		}
		b = b.PadTo(frames)
	}
	if m.params.StereoWidth != 0 {
		return b.Pan(float64(index%3-1) * m.params.StereoWidth)
	}
	if channels == 2 {
		return b.Stereo()
	}
	return b
}

// Compress attenuates samples above Threshold times the buffer peak, dividing
// the excess by Ratio. Quieter samples are left untouched.
func Compress(b *pcm.Buffer, c Compression) {
	peak := b.Peak()
	if peak == 0 {
		return
	}
	ratio := c.Ratio
	if ratio < 1 {
		ratio = 1
	}
	threshold := c.Threshold * peak
	for i, s := range b.Samples {
		a := math.Abs(s)
		if a == 0 || a <= threshold {
			continue
		}
		b.Samples[i] = math.Copysign(threshold+(a-threshold)/ratio, s)
	}
}
