// Package score holds the sheet-music model consumed by the renderer: tracks
// of notes and chords, the pitch table, the JSON loader and MIDI export.
package score

import (
	"strings"

	"github.com/cbegin/sheetsynth-go/internal/effects"
	"github.com/cbegin/sheetsynth-go/internal/instrument"
)

// Rest is the pitch name of a silent note.
const Rest = "REST"

// Item is an entry on a track timeline. It is implemented by Note and Chord
// only.
type Item interface {
	// Duration is how far the item advances the playhead, in milliseconds.
	Duration() float64
	item()
}

// Note is a single pitched (or rest) event.
type Note struct {
	Pitch      string
	DurationMs float64
	Volume     float64 // 0..1
	Instrument *instrument.Instrument
}

func (n Note) Duration() float64 { return n.DurationMs }
func (Note) item() {}

// IsRest reports whether the note is a rest.
func (n Note) IsRest() bool {
	return strings.EqualFold(strings.TrimSpace(n.Pitch), Rest)
}

// Chord is a set of notes starting together.
type Chord struct {
	Notes []Note
}

// Duration is the longest note in the chord.
func (c Chord) Duration() float64 {
	var d float64
	for _, n := range c.Notes {
		d = max(d, n.DurationMs)
	}
	return d
}

func (Chord) item() {}

// Track is a timeline played from start to end without overlap between items.
type Track struct {
	Instrument string
	Items      []Item
}

// DurationMs is the sum of the item durations.
func (t Track) DurationMs() float64 {
	var d float64
	for _, it := range t.Items {
		d += it.Duration()
	}
	return d
}

// Metadata carries score-level settings.
type Metadata struct {
	Title   string
	Loops   int
	Tempo   float64 // beats per minute; only used for MIDI export
	Effects []effects.Spec
}

// Score is a set of tracks rendered independently and summed.
type Score struct {
	Metadata Metadata
	Tracks   []Track
}

// DurationMs is the length of the longest track.
func (s *Score) DurationMs() float64 {
	var d float64
	for _, t := range s.Tracks {
		d = max(d, t.DurationMs())
	}
	return d
}

// NoteCount counts sounding notes, chord members included.
func (s *Score) NoteCount() int {
	n := 0
	for _, t := range s.Tracks {
		for _, it := range t.Items {
			switch v := it.(type) {
			case Note:
				if !v.IsRest() {
					n++
				}
			case Chord:
				for _, cn := range v.Notes {
					if !cn.IsRest() {
						n++
					}
				}
			}
		}
	}
	return n
}
