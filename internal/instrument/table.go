package instrument

import "github.com/cbegin/sheetsynth-go/internal/oscillator"

const (
	sine     = oscillator.Sine
	square   = oscillator.Square
	triangle = oscillator.Triangle
	noise    = oscillator.Noise
	additive = oscillator.Complex
)

var table = map[string]func(*Instrument){
	"sine": func(in *Instrument) {},
	"none": func(in *Instrument) {
		in.Silent = true
	},
	"electric_bass": func(in *Instrument) {
		in.Waves = []oscillator.Wave{sine, triangle, sine}
		in.Mix = []float64{0.5, 0.3, 0.2}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 25, 200, 0.6, 300
		in.OctaveShift = -1
		in.DetuneCents = 3
		in.Harmonics = []float64{1.0, 0.5, 0.25, 0.125}
		in.BodyResonance = true
	},
	"acoustic_guitar": func(in *Instrument) {
		in.Waves = []oscillator.Wave{triangle, sine, sine, square}
		in.Mix = []float64{0.45, 0.3, 0.2, 0.05}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 15, 180, 0.4, 250
		in.BodyResonance = true
		in.Harmonics = []float64{1.0, 0.6, 0.3, 0.15}
		in.DetuneCents = 2
	},
	"piano": func(in *Instrument) {
		in.Waves = []oscillator.Wave{additive}
		in.Harmonics = []float64{1.0, 0.6, 0.4, 0.25, 0.15, 0.1, 0.08}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 8, 200, 0.35, 300
		in.StringResonance = true
		in.ResonanceFreqs = []float64{220, 440, 880}
		in.DetuneCents = 1
	},
	"xylophone": func(in *Instrument) {
		in.Waves = []oscillator.Wave{sine, triangle, sine}
		in.Mix = []float64{0.5, 0.3, 0.2}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 3, 300, 0.15, 150
		in.OctaveShift = 1
		in.BrightAttack = true
		in.Harmonics = []float64{1.0, 0.7, 0.4, 0.2}
		in.ResonanceFreqs = []float64{1200, 2400, 3600}
	},
	"bongos": func(in *Instrument) {
		in.Waves = []oscillator.Wave{noise, sine, sine}
		in.Mix = []float64{0.6, 0.25, 0.15}
		in.ResonanceFreqs = []float64{180, 360, 540}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 3, 200, 0.08, 180
		in.FilterQ = 3.5
		in.BodyResonance = true
		in.Percussion = PercussionMembrane
	},
	"claves": func(in *Instrument) {
		in.Waves = []oscillator.Wave{sine, noise, sine}
		in.Mix = []float64{0.7, 0.15, 0.15}
		in.AttackMs, in.DecayMs, in.SustainLevel, in.ReleaseMs = 2, 80, 0.04, 80
		in.ClickEmphasis = true
		in.ResonanceFreqs = []float64{2400, 4800}
		in.FilterQ = 4.0
		in.Percussion = PercussionClave
	},
}
