package oscillator

import (
	"math"
	"strings"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

const twoPi = math.Pi * 2

// Wave names an oscillator shape.
type Wave string

const (
	Sine     Wave = "sine"
	Square   Wave = "square"
	Triangle Wave = "triangle"
	Sawtooth Wave = "sawtooth"
	Noise    Wave = "noise"
	// Complex selects the additive harmonic model instead of a single oscillator.
	Complex Wave = "complex"
)

// ParseWave normalizes a wave name. Unrecognized names map to Sine.
func ParseWave(name string) Wave {
	switch w := Wave(strings.ToLower(strings.TrimSpace(name))); w {
	case Sine, Square, Triangle, Sawtooth, Noise, Complex:
		return w
	default:
		return Sine
	}
}

// Periodic reports whether Generate can render the wave directly.
func (w Wave) Periodic() bool {
	return w != Noise && w != Complex
}

// Generate renders a full-scale mono waveform at pcm.SampleRate. Noise has no
// periodic rendering and returns ok=false so the caller can switch to a
// percussion model. Unknown shapes render as sine.
func Generate(w Wave, freqHz float64, durationMs float64) (buf *pcm.Buffer, ok bool) {
	if w == Noise {
		return nil, false
	}
	buf = pcm.Silence(durationMs)
	if freqHz <= 0 {
		return buf, true
	}
	cyclesPerSample := freqHz / float64(pcm.SampleRate)
	for i := range buf.Samples {
		phase := math.Mod(float64(i)*cyclesPerSample, 1)
		buf.Samples[i] = Sample(w, phase) * pcm.MaxAmplitude
	}
	return buf, true
}

// Sample evaluates one period of the waveform at phase in [0, 1).
func Sample(w Wave, phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case Sawtooth:
		return 2*phase - 1
	default:
		return math.Sin(twoPi * phase)
	}
}
