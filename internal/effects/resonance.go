package effects

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/sheetsynth-go/internal/lfo"
	"github.com/cbegin/sheetsynth-go/internal/oscillator"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

type mode struct {
	freq  float64
	amp   float64
	decay float64 // exponential decay rate per second
}

var (
	woodModes = []mode{
		{100, 0.15, 3},
		{200, 0.12, 4},
		{400, 0.08, 5},
		{800, 0.04, 6},
	}
	cavityModes = []mode{
		{150, 0.1, 2},
		{300, 0.05, 3},
	}
	longitudinalModes = []float64{1.5, 2.5, 3.5}
)

const (
	bodyLevel       = 0.2
	bodyNonlinear   = 0.1
	stringPartials  = 7
	stringLevel     = 0.15
	stringDrive     = 1.5
	stringDetune    = 0.0002
	stringNoiseFrom = 200.0 // Hz; longitudinal modes and hiss start above this
)

// BodyResonance adds decaying wood and air-cavity modes of an acoustic body
// to buf in place. The wood modes carry a slow 3 Hz vibrato.
func BodyResonance(buf *pcm.Buffer) *pcm.Buffer {
	frames := buf.Frames()
	if frames == 0 {
		return buf
	}
	sr := float64(buf.SampleRate)
	res := make([]float64, frames)
	vibrato := lfo.New(0.001, 3, oscillator.Sine)
	for i := range res {
		t := float64(i) / sr
		mod := vibrato.Factor(sr)
		var v float64
		for _, m := range woodModes {
			v += m.amp * math.Sin(2*math.Pi*m.freq*t*mod) * math.Exp(-m.decay*t)
		}
		for _, m := range cavityModes {
			v += m.amp * math.Sin(2*math.Pi*m.freq*t) * math.Exp(-m.decay*t)
		}
		res[i] = v + bodyNonlinear*v*v*sign(v)
	}
	normalize(res, bodyLevel)
	mixIn(buf, res)
	return buf
}

// StringResonance adds sympathetic partials of freqHz to buf in place. Each
// partial decays faster and sits lower than the one below it, and notes above
// 200 Hz also get inharmonic longitudinal modes and a short hiss.
func StringResonance(buf *pcm.Buffer, freqHz float64, rng *rand.Rand) *pcm.Buffer {
	frames := buf.Frames()
	if frames == 0 || freqHz <= 0 {
		return buf
	}
	sr := float64(buf.SampleRate)
	res := make([]float64, frames)

	for h := 1; h <= stringPartials; h++ {
		harmonic := float64(h)
		decay := 3 + harmonic*2
		amp := 1.0 / math.Pow(harmonic, 1.5)
		detune := 1.0 + (rng.Float64()*2-1)*stringDetune*harmonic
		f := freqHz * harmonic * detune
		drift := lfo.New(0.0001, 0.5, oscillator.Sine)
		curve := drift.Curve(frames, sr)
		for i := range res {
			t := float64(i) / sr
			res[i] += amp * math.Sin(2*math.Pi*f*curve[i]*t) * math.Exp(-decay*t)
		}
	}
	if freqHz > stringNoiseFrom {
		for _, m := range longitudinalModes {
			f := freqHz * m
			amp := 0.05 / m
			for i := range res {
				t := float64(i) / sr
				res[i] += amp * math.Sin(2*math.Pi*f*t) * math.Exp(-8*t)
			}
		}
	}

	normalize(res, 1)
	for i, v := range res {
		res[i] = math.Tanh(v*stringDrive) * stringLevel
	}
	if freqHz > stringNoiseFrom {
		for i := range res {
			t := float64(i) / sr
			res[i] += rng.NormFloat64() * 0.005 * math.Exp(-15*t) * 0.02
		}
	}
	mixIn(buf, res)
	return buf
}

// normalize scales v so its peak equals level. All-zero input is left alone.
func normalize(v []float64, level float64) {
	var peak float64
	for _, s := range v {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak == 0 {
		return
	}
	g := level / peak
	for i := range v {
		v[i] *= g
	}
}

// mixIn adds a full-scale-relative signal to the leading frames of buf on every channel.
func mixIn(buf *pcm.Buffer, sig []float64) {
	n := min(len(sig), buf.Frames())
	for i := 0; i < n; i++ {
		s := sig[i] * pcm.MaxAmplitude
		for c := 0; c < buf.Channels; c++ {
			buf.Samples[i*buf.Channels+c] += s
		}
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
