package effects

import (
	"github.com/cbegin/sheetsynth-go/internal/lfo"
	"github.com/cbegin/sheetsynth-go/internal/oscillator"
)

// ChorusParams configures a modulated delay. Short delays with high
// feedback turn it into a flanger.
type ChorusParams struct {
	DelayMs  float64
	Feedback float64 // clamped to [0, 0.9]
	DepthMs  float64
	RateHz   float64
	Wet      float64
}

func DefaultChorusParams() ChorusParams {
	return ChorusParams{DelayMs: 15, Feedback: 0.3, DepthMs: 3, RateHz: 1.5, Wet: 0.4}
}

func (p *ChorusParams) fields() []*float64 {
	return []*float64{&p.DelayMs, &p.Feedback, &p.DepthMs, &p.RateHz, &p.Wet}
}

type Chorus struct {
	line       [2][]float64
	pos        int
	depth      float64 // in samples
	sweep      lfo.LFO
	sampleRate float64
	feedback   float64
	wet        float64
}

func NewChorus(sampleRate int, p ChorusParams) *Chorus {
	sr := float64(sampleRate)
	base := int(p.DelayMs * sr / 1000)
	depth := p.DepthMs * sr / 1000
	size := max(base+int(depth)+2, 4)
	return &Chorus{
		line:       [2][]float64{make([]float64, size), make([]float64, size)},
		depth:      depth,
		sweep:      lfo.New(1, p.RateHz, oscillator.Sine),
		sampleRate: sr,
		feedback:   clamp(p.Feedback, 0, 0.9),
		wet:        clamp(p.Wet, 0, 1),
	}
}

func (c *Chorus) Process(l, r float64) (float64, float64) {
	size := len(c.line[0])
	c.line[0][c.pos] = l
	c.line[1][c.pos] = r

	read := float64(c.pos) - float64(size/2) - c.sweep.Sample(c.sampleRate)*c.depth
	for read < 0 {
		read += float64(size)
	}
	dl := c.tap(0, read)
	dr := c.tap(1, read)

	c.line[0][c.pos] += dl * c.feedback
	c.line[1][c.pos] += dr * c.feedback
	c.pos = (c.pos + 1) % size
	return blend(l, dl, c.wet), blend(r, dr, c.wet)
}

// tap reads channel ch at a fractional position with linear interpolation.
func (c *Chorus) tap(ch int, at float64) float64 {
	line := c.line[ch]
	i := int(at) % len(line)
	frac := at - float64(int(at))
	return line[i]*(1-frac) + line[(i+1)%len(line)]*frac
}

func (c *Chorus) Reset() {
	clear(c.line[0])
	clear(c.line[1])
	c.pos = 0
	c.sweep.Reset()
}
