package effects

import (
	"math"
	"math/rand/v2"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

var brightPartials = []float64{5000, 7000, 9000}

const (
	brightAttackMs = 30
	brightLevel    = 0.3
	brightDecay    = 12
	clickMs        = 10
	clickLevel     = 0.2
	clickDecay     = 25
)

// BrightAttack adds a mallet strike to the first 30 ms of buf in place: high
// partials with random phase under a steep decay, plus a 10 ms noise click.
func BrightAttack(buf *pcm.Buffer, rng *rand.Rand) *pcm.Buffer {
	frames := buf.Frames()
	if frames == 0 {
		return buf
	}
	sr := float64(buf.SampleRate)
	n := min(pcm.FrameCount(brightAttackMs, buf.SampleRate), frames)
	attack := make([]float64, n)
	for _, f := range brightPartials {
		phase := rng.Float64() * 2 * math.Pi
		for i := range attack {
			attack[i] += math.Sin(2*math.Pi*f*float64(i)/sr + phase)
		}
	}
	for i := range attack {
		attack[i] *= math.Exp(-brightDecay * unit(i, n))
	}
	normalize(attack, brightLevel)

	clickN := min(pcm.FrameCount(clickMs, buf.SampleRate), frames)
	click := make([]float64, clickN)
	for i := range click {
		click[i] = rng.NormFloat64() * clickLevel * math.Exp(-clickDecay*unit(i, clickN))
	}

	mixIn(buf, attack)
	mixIn(buf, click)
	return buf
}

// unit maps i onto an inclusive 0..1 ramp of n points.
func unit(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
