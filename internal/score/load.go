package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cbegin/sheetsynth-go/internal/effects"
	"github.com/cbegin/sheetsynth-go/internal/instrument"
)

var (
	// ErrInvalidScore reports malformed sheet-music JSON.
	ErrInvalidScore = errors.New("score: invalid sheet music")
	// ErrUnknownInstrument reports a track naming an instrument that is not in the table.
	ErrUnknownInstrument = errors.New("score: unknown instrument")
)

// DefaultVolume applies to notes that omit "volume".
const DefaultVolume = 0.7

const defaultTempo = 120

type config struct {
	loops  int // 0 keeps metadata.loops
	lookup func(string) (*instrument.Instrument, bool)
}

// Option configures Load and Parse.
type Option func(*config)

// WithLoops overrides metadata.loops.
func WithLoops(n int) Option {
	return func(c *config) { c.loops = n }
}

// WithInstruments replaces the instrument table lookup.
func WithInstruments(lookup func(string) (*instrument.Instrument, bool)) Option {
	return func(c *config) { c.lookup = lookup }
}

type fileScore struct {
	Metadata *fileMetadata `json:"metadata"`
	Tracks   []fileTrack   `json:"tracks"`
	Sections []fileSection `json:"sections"`
}

type fileMetadata struct {
	Title   string         `json:"title"`
	Loops   *int           `json:"loops"`
	Tempo   float64        `json:"tempo"`
	Effects []effects.Spec `json:"effects"`
}

type fileSection struct {
	Repeat bool        `json:"repeat"`
	Tracks []fileTrack `json:"tracks"`
}

type fileTrack struct {
	Instrument *string           `json:"instrument"`
	Notes      []json.RawMessage `json:"notes"`
}

type fileItem struct {
	Type     string     `json:"type"`
	Pitch    *string    `json:"pitch"`
	Duration *float64   `json:"duration"`
	Volume   *float64   `json:"volume"`
	Notes    []fileItem `json:"notes"`
}

// Load reads and parses a sheet-music file.
func Load(path string, opts ...Option) (*Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("score: read %s: %w", path, err)
	}
	s, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes sheet music in either layout:
//
//	{"metadata": {...}, "tracks": [{"instrument": ..., "notes": [...]}]}
//	{"metadata": {...}, "sections": [{"repeat": true, "tracks": [...]}]}
//
// With "tracks", each track is repeated metadata.loops times and any
// malformed entry is an error. With "sections", sections marked repeat play
// metadata.loops times, section tracks are appended by index, and malformed
// tracks or notes are skipped.
func Parse(data []byte, opts ...Option) (*Score, error) {
	cfg := config{lookup: instrument.Lookup}
	for _, o := range opts {
		o(&cfg)
	}

	var raw fileScore
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScore, err)
	}

	meta := Metadata{Loops: 1, Tempo: defaultTempo}
	if m := raw.Metadata; m != nil {
		meta.Title = m.Title
		meta.Effects = m.Effects
		if m.Loops != nil {
			meta.Loops = *m.Loops
		}
		if m.Tempo > 0 {
			meta.Tempo = m.Tempo
		}
	}
	if cfg.loops > 0 {
		meta.Loops = cfg.loops
	}
	meta.Loops = max(meta.Loops, 1)

	s := &Score{Metadata: meta}
	switch {
	case raw.Tracks != nil:
		for i, ft := range raw.Tracks {
			tr, err := cfg.strictTrack(ft)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			items := tr.Items
			for l := 1; l < meta.Loops; l++ {
				tr.Items = append(tr.Items, items...)
			}
			s.Tracks = append(s.Tracks, tr)
		}
	case raw.Sections != nil:
		for _, sec := range raw.Sections {
			var tracks []Track
			for _, ft := range sec.Tracks {
				if tr, ok := cfg.lenientTrack(ft); ok {
					tracks = append(tracks, tr)
				}
			}
			repeat := 1
			if sec.Repeat {
				repeat = meta.Loops
			}
			for r := 0; r < repeat; r++ {
				for i, tr := range tracks {
					if i == len(s.Tracks) {
						s.Tracks = append(s.Tracks, Track{Instrument: tr.Instrument})
					}
					s.Tracks[i].Items = append(s.Tracks[i].Items, tr.Items...)
				}
			}
		}
		if len(s.Tracks) == 0 {
			return nil, fmt.Errorf("%w: no playable tracks in sections", ErrInvalidScore)
		}
	default:
		return nil, fmt.Errorf("%w: need either \"tracks\" or \"sections\"", ErrInvalidScore)
	}
	return s, nil
}

func (c *config) strictTrack(ft fileTrack) (Track, error) {
	if ft.Instrument == nil || ft.Notes == nil {
		return Track{}, fmt.Errorf("%w: track must specify \"instrument\" and \"notes\"", ErrInvalidScore)
	}
	in, ok := c.lookup(*ft.Instrument)
	if !ok {
		return Track{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, *ft.Instrument)
	}
	tr := Track{Instrument: in.Name}
	for j, rawItem := range ft.Notes {
		var fi fileItem
		if err := json.Unmarshal(rawItem, &fi); err != nil {
			return Track{}, fmt.Errorf("%w: note %d: %w", ErrInvalidScore, j, err)
		}
		it, err := fi.toItem(in)
		if err != nil {
			return Track{}, fmt.Errorf("note %d: %w", j, err)
		}
		tr.Items = append(tr.Items, it)
	}
	return tr, nil
}

func (c *config) lenientTrack(ft fileTrack) (Track, bool) {
	if ft.Instrument == nil || ft.Notes == nil {
		return Track{}, false
	}
	in, ok := c.lookup(*ft.Instrument)
	if !ok {
		return Track{}, false
	}
	tr := Track{Instrument: in.Name}
	for _, rawItem := range ft.Notes {
		var fi fileItem
		if err := json.Unmarshal(rawItem, &fi); err != nil {
			continue
		}
		if it, err := fi.toItem(in); err == nil {
			tr.Items = append(tr.Items, it)
		}
	}
	return tr, true
}

func (fi fileItem) toItem(in *instrument.Instrument) (Item, error) {
	if fi.Type != "chord" {
		return fi.toNote(in)
	}
	if fi.Notes == nil {
		return nil, fmt.Errorf("%w: chord must contain \"notes\"", ErrInvalidScore)
	}
	ch := Chord{Notes: make([]Note, 0, len(fi.Notes))}
	for _, cn := range fi.Notes {
		n, err := cn.toNote(in)
		if err != nil {
			return nil, err
		}
		ch.Notes = append(ch.Notes, n)
	}
	return ch, nil
}

func (fi fileItem) toNote(in *instrument.Instrument) (Note, error) {
	switch {
	case fi.Pitch == nil:
		return Note{}, fmt.Errorf("%w: note missing \"pitch\"", ErrInvalidScore)
	case fi.Duration == nil:
		return Note{}, fmt.Errorf("%w: note missing \"duration\"", ErrInvalidScore)
	case *fi.Duration < 0:
		return Note{}, fmt.Errorf("%w: negative duration %v", ErrInvalidScore, *fi.Duration)
	}
	vol := DefaultVolume
	if fi.Volume != nil {
		vol = min(max(*fi.Volume, 0), 1)
	}
	return Note{
		Pitch:      *fi.Pitch,
		DurationMs: *fi.Duration,
		Volume:     vol,
		Instrument: in,
	}, nil
}
