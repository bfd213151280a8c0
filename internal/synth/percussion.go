package synth

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/oscillator"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

var (
	membraneOvertones = []float64{2.1, 3.2, 4.7}

	clavePartials = []struct{ freq, amp, decay float64 }{
		{2500, 1.0, 50},
		{5200, 0.3, 60},
		{7800, 0.1, 70},
	}
)

const (
	membraneDecay    = 8.0
	membraneWobbleHz = 2.0
	strikeMs         = 5
	strikeDecay      = 100.0
	strikeLevel      = 0.5
	membraneNoise    = 0.2

	claveMaxMs    = 80.0
	clickMs       = 2
	clickDecay    = 200.0
	woodToneHz    = 1200.0
	woodToneDecay = 30.0
	woodToneLevel = 0.1
)

// percussion dispatches to the instrument's percussion model. Noise
// instruments without one fall back to a plain sine at freqHz.
func (s *Synth) percussion(freqHz float64, in *instrument.Instrument, durationMs, gain float64, rng *rand.Rand) *pcm.Buffer {
	switch in.Percussion {
	case instrument.PercussionMembrane:
		return membrane(in.ResonanceFreqs, durationMs, gain, rng)
	case instrument.PercussionClave:
		return clave(in.ClickEmphasis, durationMs, gain, rng)
	}
	return single(oscillator.Sine, freqHz, durationMs, gain)
}

// membrane models a struck skin. Each resonance frequency yields a layer with
// a wobbling exponential decay, inharmonic overtones, a strike transient and
// a noise floor that follows the decay.
func membrane(freqs []float64, durationMs, gain float64, rng *rand.Rand) *pcm.Buffer {
	out := pcm.Silence(durationMs)
	n := out.Frames()
	strikeN := min(pcm.FrameCount(strikeMs, pcm.SampleRate), n)
	wave := make([]float64, n)
	for _, f := range freqs {
		for i := range wave {
			t := seconds(i)
			decay := math.Exp(-membraneDecay*t) * (1 + math.Sin(2*math.Pi*membraneWobbleHz*t)) * 0.5
			v := math.Sin(2*math.Pi*f*t) * decay
			for _, ov := range membraneOvertones {
				v += math.Sin(2*math.Pi*f*ov*t) * decay / (ov * 2)
			}
			v += (rng.Float64()*2 - 1) * decay * membraneNoise
			wave[i] = v
		}
		for i := 0; i < strikeN; i++ {
			wave[i] += rng.NormFloat64() * math.Exp(-strikeDecay*unit(i, strikeN)) * strikeLevel
		}
		addQuantized(out, wave)
	}
	return out.ApplyGain(gain)
}

// clave models a wooden click: three fast-decaying partials, a short one-sided
// noise click and a faint wood-cavity tone. Output never exceeds 80 ms.
func clave(emphasis bool, durationMs, gain float64, rng *rand.Rand) *pcm.Buffer {
	out := pcm.Silence(math.Min(durationMs, claveMaxMs))
	n := out.Frames()
	wave := make([]float64, n)
	for i := range wave {
		t := seconds(i)
		var v float64
		for _, p := range clavePartials {
			v += p.amp * math.Sin(2*math.Pi*p.freq*t) * math.Exp(-p.decay*t)
		}
		v += math.Sin(2*math.Pi*woodToneHz*t) * math.Exp(-woodToneDecay*t) * woodToneLevel
		wave[i] = v
	}
	clickLevel := 1.0
	if emphasis {
		clickLevel = 2.0
	}
	clickN := min(pcm.FrameCount(clickMs, pcm.SampleRate), n)
	for i := 0; i < clickN; i++ {
		wave[i] += rng.Float64() * math.Exp(-clickDecay*unit(i, clickN)) * clickLevel
	}
	addQuantized(out, wave)
	return out.ApplyGain(gain)
}

// addQuantized adds a full-scale-relative layer to out after rounding it to
// 16-bit sample values.
func addQuantized(out *pcm.Buffer, wave []float64) {
	for i, v := range wave {
		out.Samples[i] += float64(pcm.Quantize(v * pcm.MaxAmplitude))
	}
}

func seconds(i int) float64 {
	return float64(i) / pcm.SampleRate
}
