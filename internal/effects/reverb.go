package effects

// ReverbParams configures the Schroeder room.
type ReverbParams struct {
	Room     float64 // 0..1, scales every delay length
	Feedback float64 // comb decay, clamped to [0, 0.95]
	Wet      float64
}

func DefaultReverbParams() ReverbParams {
	return ReverbParams{Room: 0.5, Feedback: 0.7, Wet: 0.25}
}

func (p *ReverbParams) fields() []*float64 {
	return []*float64{&p.Room, &p.Feedback, &p.Wet}
}

// Comb and allpass lengths relative to the base length, in thousandths.
var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

// Reverb sums four parallel combs on the mono downmix, diffuses the result
// through two allpasses and returns it on both channels.
type Reverb struct {
	combs   [4]delayLine
	allpass [2]delayLine
	wet     float64
}

type delayLine struct {
	buf []float64
	pos int
	fb  float64
}

func NewReverb(sampleRate int, p ReverbParams) *Reverb {
	base := max(int(float64(sampleRate)*p.Room*0.05), 10)
	fb := clamp(p.Feedback, 0, 0.95)
	r := &Reverb{wet: clamp(p.Wet, 0, 1)}
	for i, ratio := range combRatios {
		r.combs[i] = newDelayLine(base*ratio/1000, fb)
	}
	for i, ratio := range allpassRatios {
		r.allpass[i] = newDelayLine(base*ratio/1000, 0.5)
	}
	return r
}

func newDelayLine(n int, fb float64) delayLine {
	return delayLine{buf: make([]float64, max(n, 1)), fb: fb}
}

func (r *Reverb) Process(l, rt float64) (float64, float64) {
	mono := (l + rt) / 2
	var tail float64
	for i := range r.combs {
		tail += r.combs[i].comb(mono)
	}
	tail /= float64(len(r.combs))
	for i := range r.allpass {
		tail = r.allpass[i].diffuse(tail)
	}
	return blend(l, tail, r.wet), blend(rt, tail, r.wet)
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float64) float64 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.pos = (d.pos + 1) % len(d.buf)
	return out
}

func (d *delayLine) diffuse(in float64) float64 {
	return d.comb(in) - in
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
