// Package synth renders a single instrument voice: layered oscillators with
// the instrument's resonance and attack effects, the percussion models, or
// the additive piano. Output is mono at pcm.SampleRate.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/sheetsynth-go/internal/effects"
	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/mixer"
	"github.com/cbegin/sheetsynth-go/internal/oscillator"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

const (
	baseGainDB    = -12.0
	volumeRangeDB = 20.0
	detuneLayerDB = -3.0
)

// Synth renders voices. It holds no per-note state and is safe for
// concurrent use as long as each goroutine passes its own rand.Rand.
type Synth struct {
	voices *mixer.Mixer
}

// New returns a Synth that layers oscillators with a mono mixer built from p.
// Stereo placement and crossfading are disabled regardless of p.
func New(p mixer.Params) *Synth {
	p.StereoWidth = 0
	p.Crossfade = false
	return &Synth{voices: mixer.New(p)}
}

// Default returns a Synth using mixer.VoiceParams.
func Default() *Synth {
	return New(mixer.VoiceParams())
}

// VolumeDB maps a linear note volume in [0, 1] to gain: -12 dB at full
// volume down to -32 dB at zero.
func VolumeDB(volume float64) float64 {
	return baseGainDB - volumeRangeDB*(1-volume)
}

// Tone synthesizes freqHz on in for durationMs. rng drives every random
// component so equal seeds give equal output.
func (s *Synth) Tone(freqHz float64, in *instrument.Instrument, durationMs, volume float64, rng *rand.Rand) *pcm.Buffer {
	if in.Silent {
		return pcm.Silence(durationMs)
	}
	gain := VolumeDB(volume)

	var out *pcm.Buffer
	switch {
	case in.HasWave(oscillator.Noise):
		return s.percussion(freqHz, in, durationMs, gain, rng)
	case in.IsComplex():
		return s.piano(freqHz, in, durationMs, volume, gain, rng)
	case len(in.Waves) > 1:
		out = s.layered(freqHz, in, durationMs, gain)
	default:
		out = single(firstWave(in), freqHz, durationMs, gain)
	}
	return colour(out, freqHz, in, rng)
}

// colour applies the instrument's resonance and attack effects in place.
// The percussion and piano models carry their own body and transients and
// skip this stage.
func colour(buf *pcm.Buffer, freqHz float64, in *instrument.Instrument, rng *rand.Rand) *pcm.Buffer {
	if in.BodyResonance {
		effects.BodyResonance(buf)
	}
	if in.StringResonance {
		effects.StringResonance(buf, freqHz, rng)
	}
	if in.BrightAttack {
		effects.BrightAttack(buf, rng)
	}
	return buf
}

// layered renders one oscillator per configured wave at its mix weight. Every
// oscillator after the first is thickened with a detuned sine 3 dB below it.
func (s *Synth) layered(freqHz float64, in *instrument.Instrument, durationMs, gain float64) *pcm.Buffer {
	detuned := freqHz * math.Pow(2, in.DetuneCents/1200)
	layers := make([]*pcm.Buffer, 0, len(in.Waves))
	for i, w := range in.Waves {
		weight := in.Weight(i)
		if weight <= 0 {
			continue
		}
		buf, ok := oscillator.Generate(w, freqHz, durationMs)
		if !ok {
			continue
		}
		layerGain := gain + 20*math.Log10(weight)
		buf.ApplyGain(layerGain)
		if i > 0 {
			chorus, _ := oscillator.Generate(oscillator.Sine, detuned, durationMs)
			// Both oscillators render at pcm.SampleRate, so Overlay cannot fail.
			_ = buf.Overlay(chorus.ApplyGain(layerGain+detuneLayerDB), 0)
		}
		layers = append(layers, buf)
	}
	if len(layers) == 0 {
		return single(oscillator.Sine, freqHz, durationMs, gain)
	}
	return s.mix(layers, durationMs)
}

// mix layers voice buffers. All layers share pcm.SampleRate, so a format
// error cannot occur; silence is returned if it ever does.
func (s *Synth) mix(layers []*pcm.Buffer, durationMs float64) *pcm.Buffer {
	out, err := s.voices.Mix(layers...)
	if err != nil {
		return pcm.Silence(durationMs)
	}
	return out
}

func single(w oscillator.Wave, freqHz, durationMs, gain float64) *pcm.Buffer {
	buf, ok := oscillator.Generate(w, freqHz, durationMs)
	if !ok {
		buf, _ = oscillator.Generate(oscillator.Sine, freqHz, durationMs)
	}
	return buf.ApplyGain(gain)
}

func firstWave(in *instrument.Instrument) oscillator.Wave {
	if len(in.Waves) == 0 {
		return oscillator.Sine
	}
	return in.Waves[0]
}

// unit maps i onto an inclusive 0..1 ramp of n points.
func unit(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
