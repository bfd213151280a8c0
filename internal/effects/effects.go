// Package effects holds the voice-level resonance processors applied during
// synthesis and the stereo master-bus effects applied to a finished mix.
package effects

import (
	"math"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// Effector processes one stereo frame with samples normalized to [-1, 1].
type Effector interface {
	Process(l, r float64) (float64, float64)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float64) (float64, float64) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int { return len(c.effects) }

// Apply runs the chain over buf and returns a stereo result. The chain is
// reset first so repeated calls are independent.
func (c *Chain) Apply(buf *pcm.Buffer) *pcm.Buffer {
	out := buf.Stereo().Clone()
	if c == nil || len(c.effects) == 0 {
		return out
	}
	c.Reset()
	const scale = pcm.MaxAmplitude
	for i := 0; i+1 < len(out.Samples); i += 2 {
		l, r := c.Process(out.Samples[i]/scale, out.Samples[i+1]/scale)
		out.Samples[i], out.Samples[i+1] = l*scale, r*scale
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// blend crossfades dry into wet.
func blend(dry, wet, amount float64) float64 {
	return dry*(1-amount) + wet*amount
}

// onePole is a stereo RC lowpass.
type onePole struct {
	alpha float64
	l, r  float64
}

func newOnePole(sampleRate int, cutoffHz float64) *onePole {
	rc := 1 / (2 * math.Pi * cutoffHz)
	dt := 1 / float64(sampleRate)
	return &onePole{alpha: dt / (rc + dt)}
}

func (f *onePole) process(l, r float64) (float64, float64) {
	f.l += f.alpha * (l - f.l)
	f.r += f.alpha * (r - f.r)
	return f.l, f.r
}

func (f *onePole) reset() {
	f.l, f.r = 0, 0
}
