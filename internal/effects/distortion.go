package effects

import "math"

// DistortionParams configures tanh saturation of the master bus.
type DistortionParams struct {
	Drive  float64 // input gain into the shaper
	Level  float64 // output gain
	ToneHz float64 // lowpass after the shaper; 0 or >= Nyquist disables it
}

func DefaultDistortionParams() DistortionParams {
	return DistortionParams{Drive: 4, Level: 0.5, ToneHz: 8000}
}

func (p *DistortionParams) fields() []*float64 {
	return []*float64{&p.Drive, &p.Level, &p.ToneHz}
}

type Distortion struct {
	drive, level float64
	tone         *onePole
}

func NewDistortion(sampleRate int, p DistortionParams) *Distortion {
	d := &Distortion{drive: p.Drive, level: p.Level}
	if p.ToneHz > 0 && p.ToneHz < float64(sampleRate)/2 {
		d.tone = newOnePole(sampleRate, p.ToneHz)
	}
	return d
}

func (d *Distortion) Process(l, r float64) (float64, float64) {
	l = math.Tanh(l*d.drive) * d.level
	r = math.Tanh(r*d.drive) * d.level
	if d.tone != nil {
		return d.tone.process(l, r)
	}
	return l, r
}

func (d *Distortion) Reset() {
	if d.tone != nil {
		d.tone.reset()
	}
}
