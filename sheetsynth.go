// Package sheetsynth renders declarative sheet music to audio. A score of
// tracks, each a timeline of notes and chords, is synthesized per instrument,
// shaped by ADSR envelopes, mixed to stereo and optionally run through
// master-bus effects. The result can be written as WAV, exported as MIDI or
// played in a loop.
package sheetsynth

import (
	"log"

	"github.com/cbegin/sheetsynth-go/internal/effects"
	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/mixer"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
	"github.com/cbegin/sheetsynth-go/internal/score"
	"github.com/cbegin/sheetsynth-go/internal/sequencer"
)

type (
	Score      = score.Score
	Track      = score.Track
	Note       = score.Note
	Chord      = score.Chord
	Buffer     = pcm.Buffer
	Instrument = instrument.Instrument
	Effect     = effects.Spec
)

// SampleRate is the rate of every rendered buffer.
const SampleRate = pcm.SampleRate

// ErrCancelled is returned by Render when its context ends first.
var ErrCancelled = sequencer.ErrCancelled

type config struct {
	seq     sequencer.Options
	effects []effects.Spec
	fxSet   bool
}

func defaultConfig() config {
	return config{seq: sequencer.DefaultOptions()}
}

// Option configures Render.
type Option func(*config)

// WithWorkers caps the number of tracks rendered at once.
func WithWorkers(n int) Option {
	return func(c *config) { c.seq.Workers = n }
}

// WithSeed seeds the per-track random streams. Equal seeds render identical audio.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seq.Seed = seed }
}

// WithLogger receives skipped-note warnings and per-track timings.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.seq.Logger = l }
}

// WithCompression toggles the soft-knee compressor of every internal mix.
func WithCompression(enabled bool) Option {
	return func(c *config) { c.seq.Mixer.Compression.Enabled = enabled }
}

// WithOctaveShift transposes notes by their instrument's octave shift
// (electric bass down one octave, xylophone up one). Off by default.
func WithOctaveShift(enabled bool) Option {
	return func(c *config) { c.seq.OctaveShift = enabled }
}

// WithPitchTable replaces the equal-tempered pitch table.
func WithPitchTable(p map[string]float64) Option {
	return func(c *config) { c.seq.Pitches = score.Pitches(p) }
}

// WithMasterEffects replaces the score's metadata effects. Passing none
// disables master-bus processing.
func WithMasterEffects(specs ...Effect) Option {
	return func(c *config) {
		c.effects = specs
		c.fxSet = true
	}
}

// WithProgress receives a callback as each track finishes rendering. It is
// called from worker goroutines.
func WithProgress(fn func(track int)) Option {
	return func(c *config) {
		c.seq.OnEvent = func(e sequencer.Event) {
			if e.Kind == sequencer.EventTrackRendered {
				fn(e.Track)
			}
		}
	}
}

// LoadScore reads a sheet-music JSON file. loops > 0 overrides metadata.loops.
func LoadScore(path string, loops int) (*Score, error) {
	return score.Load(path, score.WithLoops(loops))
}

// ParseScore decodes sheet-music JSON. loops > 0 overrides metadata.loops.
func ParseScore(data []byte, loops int) (*Score, error) {
	return score.Parse(data, score.WithLoops(loops))
}

// LookupInstrument resolves an instrument by name or alias.
func LookupInstrument(name string) (*Instrument, bool) {
	return instrument.Lookup(name)
}

// Instruments lists every accepted instrument name, aliases included.
func Instruments() []string {
	return instrument.Names()
}

// DefaultMixerParams exposes the chord and score mixing settings.
func DefaultMixerParams() mixer.Params {
	return mixer.DefaultParams()
}
