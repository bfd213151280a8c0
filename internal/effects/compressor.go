package effects

import (
	"math"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// CompressorParams configures the master-bus compressor. Unlike the mixer's
// static soft knee this one follows the signal envelope over time.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64 // at least 1
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64
}

func DefaultCompressorParams() CompressorParams {
	return CompressorParams{ThresholdDB: -20, Ratio: 4, AttackMs: 5, ReleaseMs: 100, MakeupDB: 6}
}

func (p *CompressorParams) fields() []*float64 {
	return []*float64{&p.ThresholdDB, &p.Ratio, &p.AttackMs, &p.ReleaseMs, &p.MakeupDB}
}

type Compressor struct {
	threshold       float64
	slope           float64 // 1/ratio - 1
	attack, release float64 // follower coefficients
	makeup          float64
	env             [2]float64
}

func NewCompressor(sampleRate int, p CompressorParams) *Compressor {
	return &Compressor{
		threshold: pcm.DBToLinear(p.ThresholdDB),
		slope:     1/math.Max(p.Ratio, 1) - 1,
		attack:    follower(sampleRate, p.AttackMs),
		release:   follower(sampleRate, p.ReleaseMs),
		makeup:    pcm.DBToLinear(p.MakeupDB),
	}
}

// follower returns the one-pole coefficient reaching 63% of a step in ms.
func follower(sampleRate int, ms float64) float64 {
	if ms <= 0 {
		return 1
	}
	return 1 - math.Exp(-1000/(ms*float64(sampleRate)))
}

func (c *Compressor) Process(l, r float64) (float64, float64) {
	return c.channel(0, l), c.channel(1, r)
}

func (c *Compressor) channel(ch int, x float64) float64 {
	level := math.Abs(x)
	coef := c.release
	if level > c.env[ch] {
		coef = c.attack
	}
	c.env[ch] += coef * (level - c.env[ch])

	gain := c.makeup
	if c.env[ch] > c.threshold && c.threshold > 0 {
		gain *= math.Pow(c.env[ch]/c.threshold, c.slope)
	}
	return x * gain
}

func (c *Compressor) Reset() {
	c.env = [2]float64{}
}
