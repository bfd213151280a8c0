package effects

// DelayParams configures a stereo feedback echo.
type DelayParams struct {
	TimeMs   float64
	Feedback float64 // clamped to [0, 0.95]
	Cross    float64 // share of the feedback sent to the opposite channel
	Wet      float64
}

func DefaultDelayParams() DelayParams {
	return DelayParams{TimeMs: 250, Feedback: 0.4, Cross: 0.2, Wet: 0.3}
}

func (p *DelayParams) fields() []*float64 {
	return []*float64{&p.TimeMs, &p.Feedback, &p.Cross, &p.Wet}
}

// Delay is a ping-pong capable echo: each tap feeds back into its own
// channel and, scaled by Cross, into the other one.
type Delay struct {
	line     [2][]float64
	pos      int
	straight float64
	crossed  float64
	wet      float64
}

func NewDelay(sampleRate int, p DelayParams) *Delay {
	n := max(int(p.TimeMs*float64(sampleRate)/1000), 1)
	fb := clamp(p.Feedback, 0, 0.95)
	cross := clamp(p.Cross, 0, 1)
	return &Delay{
		line:     [2][]float64{make([]float64, n), make([]float64, n)},
		straight: fb * (1 - cross),
		crossed:  fb * cross,
		wet:      clamp(p.Wet, 0, 1),
	}
}

func (d *Delay) Process(l, r float64) (float64, float64) {
	tapL, tapR := d.line[0][d.pos], d.line[1][d.pos]
	d.line[0][d.pos] = l + tapL*d.straight + tapR*d.crossed
	d.line[1][d.pos] = r + tapR*d.straight + tapL*d.crossed
	d.pos = (d.pos + 1) % len(d.line[0])
	return blend(l, tapL, d.wet), blend(r, tapR, d.wet)
}

func (d *Delay) Reset() {
	clear(d.line[0])
	clear(d.line[1])
	d.pos = 0
}
