package instrument

import (
	"sort"
	"strings"

	"github.com/cbegin/sheetsynth-go/internal/oscillator"
)

// Percussion selects a dedicated percussion model for noise-based instruments.
type Percussion int

const (
	PercussionNone Percussion = iota
	// PercussionMembrane models a struck skin (hand drums).
	PercussionMembrane
	// PercussionClave models a short wood-block click.
	PercussionClave
)

// Instrument is read-only synthesis configuration shared by every note that
// references it. Values come from the table in this package; callers must not
// modify a returned Instrument.
type Instrument struct {
	Name            string
	Waves           []oscillator.Wave
	Mix             []float64 // per-oscillator linear weights
	DetuneCents     float64
	AttackMs        float64
	DecayMs         float64
	SustainLevel    float64
	ReleaseMs       float64
	OctaveShift     int
	BodyResonance   bool
	StringResonance bool
	BrightAttack    bool
	ClickEmphasis   bool
	Harmonics       []float64
	ResonanceFreqs  []float64
	FilterQ         float64 // carried from the table; not used by any model
	Percussion      Percussion
	Silent          bool
}

// HasWave reports whether w is one of the instrument's oscillators.
func (in *Instrument) HasWave(w oscillator.Wave) bool {
	for _, v := range in.Waves {
		if v == w {
			return true
		}
	}
	return false
}

// IsComplex reports whether the instrument uses the additive harmonic model.
func (in *Instrument) IsComplex() bool {
	return len(in.Waves) == 1 && in.Waves[0] == oscillator.Complex
}

// Weight returns the mix weight of oscillator i, or 1 when none is configured.
func (in *Instrument) Weight(i int) float64 {
	if i < len(in.Mix) {
		return in.Mix[i]
	}
	return 1
}

// Default returns the base parameter set applied to every instrument before
// its table entry.
func Default(name string) Instrument {
	return Instrument{
		Name:           name,
		Waves:          []oscillator.Wave{oscillator.Sine},
		Mix:            []float64{1},
		AttackMs:       10,
		DecayMs:        10,
		SustainLevel:   0.7,
		ReleaseMs:      10,
		Harmonics:      []float64{1},
		ResonanceFreqs: []float64{200},
		FilterQ:        1,
	}
}

var aliases = map[string]string{
	"bass":   "electric_bass",
	"guitar": "acoustic_guitar",
}

var registry = buildRegistry()

func buildRegistry() map[string]*Instrument {
	reg := make(map[string]*Instrument, len(table))
	for name, patch := range table {
		in := Default(name)
		patch(&in)
		reg[name] = &in
	}
	return reg
}

// Lookup resolves an instrument by table name or alias.
func Lookup(name string) (*Instrument, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if full, ok := aliases[key]; ok {
		key = full
	}
	in, ok := registry[key]
	return in, ok
}

// Names lists the names accepted by Lookup, aliases included, sorted.
func Names() []string {
	names := make([]string, 0, len(registry)+len(aliases))
	for name := range registry {
		names = append(names, name)
	}
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}
