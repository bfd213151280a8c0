package envelope

import (
	"math"

	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

const (
	attackCurve  = 0.7
	decayCurve   = 0.5
	releaseCurve = 0.3
	sustainTaper = 0.95
	smoothWindow = 32
)

// ADSR holds envelope timing. SustainLevel is a 0-1 gain.
type ADSR struct {
	AttackMs     float64
	DecayMs      float64
	SustainLevel float64
	ReleaseMs    float64
}

func FromInstrument(in *instrument.Instrument) ADSR {
	return ADSR{
		AttackMs:     in.AttackMs,
		DecayMs:      in.DecayMs,
		SustainLevel: in.SustainLevel,
		ReleaseMs:    in.ReleaseMs,
	}
}

// Apply multiplies buf in place by the instrument's envelope and returns it.
func Apply(buf *pcm.Buffer, in *instrument.Instrument) *pcm.Buffer {
	return FromInstrument(in).Apply(buf)
}

func (e ADSR) Apply(buf *pcm.Buffer) *pcm.Buffer {
	curve := e.Curve(buf.Frames(), buf.SampleRate)
	for i, g := range curve {
		for c := 0; c < buf.Channels; c++ {
			buf.Samples[i*buf.Channels+c] *= g
		}
	}
	return buf
}

// Curve builds the smoothed per-frame gain for a note of the given length.
// When the configured phases do not fit, attack, decay and release take 10%,
// 20% and 30% of the note and sustain gets the remainder.
func (e ADSR) Curve(frames, sampleRate int) []float64 {
	toFrames := func(ms float64) int {
		if ms <= 0 {
			return 0
		}
		return int(ms * float64(sampleRate) / 1000)
	}
	a, d, r := toFrames(e.AttackMs), toFrames(e.DecayMs), toFrames(e.ReleaseMs)
	s := frames - a - d - r
	if s < 0 {
		a = int(float64(frames) * 0.1)
		d = int(float64(frames) * 0.2)
		r = int(float64(frames) * 0.3)
		s = frames - a - d - r
	}
	level := clamp01(e.SustainLevel)

	env := make([]float64, frames)
	pos := 0
	for i := 0; i < a; i++ {
		env[pos] = math.Pow(ramp(i, a), attackCurve)
		pos++
	}
	for i := 0; i < d; i++ {
		env[pos] = 1 - (1-level)*math.Pow(ramp(i, d), decayCurve)
		pos++
	}
	tail := level
	for i := 0; i < s; i++ {
		tail = level + (level*sustainTaper-level)*ramp(i, s)
		env[pos] = tail
		pos++
	}
	for i := 0; i < r; i++ {
		env[pos] = tail * (1 - math.Pow(ramp(i, r), releaseCurve))
		pos++
	}
	return smooth(env, smoothWindow)
}

// ramp returns position i of an inclusive 0..1 ramp with n points.
func ramp(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// smooth is a centred moving average that treats samples outside the curve as zero.
func smooth(env []float64, window int) []float64 {
	out := make([]float64, len(env))
	if len(env) == 0 {
		return out
	}
	half := window / 2
	var sum float64
	// the window for index i covers [i-half, i+window-half-1]
	for j := 0; j < window-half-1 && j < len(env); j++ {
		sum += env[j]
	}
	for i := range env {
		if add := i + window - half - 1; add < len(env) {
			sum += env[add]
		}
		if drop := i - half - 1; drop >= 0 {
			sum -= env[drop]
		}
		out[i] = sum / float64(window)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
