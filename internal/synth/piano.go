package synth

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/oscillator"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

var pianoInharmonics = []float64{2.002, 1.998, 2.015}

const (
	harmonicRolloff   = 0.5    // exp(-0.5·i) weighting of harmonic i
	harmonicDetune    = 0.0001 // per-harmonic jitter, scaled by harmonic number
	maxHarmonicDetune = 0.0002
	inharmonicAboveHz = 500.0
	inharmonicDB      = -15.0
	velocityKnee      = 0.7
	velocityBoostDB   = 3.0
	hammerMs          = 20
	hammerSigma       = 0.1
	hammerDecay       = 20.0
)

// piano renders the additive harmonic model: one slightly detuned sine per
// configured harmonic strength, inharmonic partials for upper notes and a
// hammer noise transient at onset. Volumes above 0.7 brighten every harmonic.
func (s *Synth) piano(freqHz float64, in *instrument.Instrument, durationMs, volume, gain float64, rng *rand.Rand) *pcm.Buffer {
	boost := 0.0
	if volume > velocityKnee {
		boost = velocityBoostDB * (volume - velocityKnee)
	}

	layers := make([]*pcm.Buffer, 0, len(in.Harmonics)+len(pianoInharmonics))
	for i, strength := range in.Harmonics {
		weight := strength * math.Exp(-harmonicRolloff*float64(i))
		if weight <= 0 {
			continue
		}
		jitter := (rng.Float64()*2 - 1) * harmonicDetune * float64(i+1)
		jitter = math.Max(-maxHarmonicDetune, math.Min(maxHarmonicDetune, jitter))
		h, _ := oscillator.Generate(oscillator.Sine, freqHz*float64(i+1)*(1+jitter), durationMs)
		layers = append(layers, h.ApplyGain(gain+20*math.Log10(weight)+boost))
	}
	if freqHz > inharmonicAboveHz {
		for _, ratio := range pianoInharmonics {
			p, _ := oscillator.Generate(oscillator.Sine, freqHz*ratio, durationMs)
			layers = append(layers, p.ApplyGain(gain+inharmonicDB))
		}
	}
	if len(layers) == 0 {
		return single(oscillator.Sine, freqHz, durationMs, gain)
	}

	out := s.mix(layers, durationMs)
	n := min(pcm.FrameCount(hammerMs, pcm.SampleRate), out.Frames())
	hammer := pcm.New(pcm.SampleRate, 1, n)
	for i := range hammer.Samples {
		v := rng.NormFloat64() * hammerSigma * math.Exp(-hammerDecay*unit(i, n))
		hammer.Samples[i] = float64(pcm.Quantize(v * pcm.MaxAmplitude))
	}
	// The hammer is built at pcm.SampleRate like the mix.
	_ = out.Overlay(hammer.ApplyGain(gain), 0)
	return out
}
