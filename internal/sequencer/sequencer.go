// Package sequencer renders a score: each track's notes and chords are
// synthesized, enveloped, panned and placed at their playhead offsets, and
// the track buffers are overlaid into the final stereo mix.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/sheetsynth-go/internal/envelope"
	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/mixer"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
	"github.com/cbegin/sheetsynth-go/internal/score"
	"github.com/cbegin/sheetsynth-go/internal/synth"
)

// ErrCancelled is returned when the render context is done before every
// track has finished. It wraps the context's error.
var ErrCancelled = errors.New("sequencer: render cancelled")

const (
	// DefaultWorkers caps concurrent track workers.
	DefaultWorkers = 4
	// DefaultTrackPan is the pan of even tracks; odd tracks take the negation.
	DefaultTrackPan = 0.2
)

// EventKind identifies render progress events.
type EventKind int

const (
	EventTrackRendered EventKind = iota
	EventNoteSkipped
)

// Event reports render progress. Track is the score track index.
type Event struct {
	Kind    EventKind
	Track   int
	Pitch   string        // EventNoteSkipped only
	Frames  int           // EventTrackRendered only
	Elapsed time.Duration // EventTrackRendered only
}

type Options struct {
	Pitches  score.Pitches // nil uses score.DefaultPitches
	Workers  int           // <= 0 uses DefaultWorkers
	Seed     uint64        // seeds one generator per track
	TrackPan float64
	Mixer    mixer.Params // chord mixing; voice layering uses a mono copy
	Logger   *log.Logger  // nil discards
	OnEvent  func(Event)  // called from worker goroutines

	// OctaveShift transposes each note by its instrument's OctaveShift.
	// Off by default: notes sound at their written pitch.
	OctaveShift bool
}

// DefaultOptions returns the standard render settings.
func DefaultOptions() Options {
	return Options{
		Pitches:  score.DefaultPitches(),
		Workers:  DefaultWorkers,
		TrackPan: DefaultTrackPan,
		Mixer:    mixer.DefaultParams(),
	}
}

// Renderer turns scores into audio. It holds no per-render state and may be
// used from several goroutines.
type Renderer struct {
	opts   Options
	voices *synth.Synth
	chords *mixer.Mixer
	logger *log.Logger
}

func New(opts Options) *Renderer {
	if opts.Pitches == nil {
		opts.Pitches = score.DefaultPitches()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Renderer{
		opts:   opts,
		voices: synth.New(opts.Mixer),
		chords: mixer.New(opts.Mixer),
		logger: logger,
	}
}

// Render renders every track on a bounded pool of workers and overlays the
// results in track order. Output is identical to RenderSequential.
func (r *Renderer) Render(ctx context.Context, sc *score.Score) (*pcm.Buffer, error) {
	tracks := make([]*pcm.Buffer, len(sc.Tracks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(len(sc.Tracks), r.opts.Workers)))
	for i, t := range sc.Tracks {
		g.Go(func() error {
			buf, err := r.RenderTrack(gctx, i, t)
			if err != nil {
				return err
			}
			tracks[i] = buf
			return nil
		})
	}
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		// Workers stop at their next note; their partial tracks are dropped.
		return nil, cancelled(ctx)
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}
	return overlayTracks(tracks)
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}

// RenderSequential renders tracks one after another on the calling goroutine.
func (r *Renderer) RenderSequential(ctx context.Context, sc *score.Score) (*pcm.Buffer, error) {
	tracks := make([]*pcm.Buffer, len(sc.Tracks))
	for i, t := range sc.Tracks {
		buf, err := r.RenderTrack(ctx, i, t)
		if err != nil {
			return nil, err
		}
		tracks[i] = buf
	}
	return overlayTracks(tracks)
}

// overlayTracks sums track buffers, in index order, into a silent stereo
// buffer as long as the longest track.
func overlayTracks(tracks []*pcm.Buffer) (*pcm.Buffer, error) {
	frames := 0
	for _, t := range tracks {
		frames = max(frames, t.Frames())
	}
	out := pcm.New(pcm.SampleRate, 2, frames)
	for i, t := range tracks {
		if err := out.Overlay(t, 0); err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
	}
	return out, nil
}

// RenderTrack renders track index of a score into a stereo buffer sized to the
// track's duration. The index selects the pan side and the random stream.
func (r *Renderer) RenderTrack(ctx context.Context, index int, t score.Track) (*pcm.Buffer, error) {
	start := time.Now()
	rng := rand.New(rand.NewPCG(r.opts.Seed, uint64(index)))
	pan := r.opts.TrackPan
	if index%2 == 1 {
		pan = -pan
	}

	out := pcm.New(pcm.SampleRate, 2, pcm.FrameCount(t.DurationMs(), pcm.SampleRate))
	var playhead float64
	for _, it := range t.Items {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		var voice *pcm.Buffer
		switch v := it.(type) {
		case score.Note:
			voice = r.note(index, v, rng)
		case score.Chord:
			var err error
			if voice, err = r.chord(ctx, index, v, rng); err != nil {
				return nil, err
			}
		default:
			panic(fmt.Sprintf("sequencer: unexpected track item %T", it))
		}
		if voice != nil {
			if err := out.Overlay(voice.Pan(pan), pcm.FrameCount(playhead, pcm.SampleRate)); err != nil {
				return nil, fmt.Errorf("track %d at %.0f ms: %w", index, playhead, err)
			}
		}
		playhead += it.Duration()
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	elapsed := time.Since(start)
	r.logger.Printf("track %d (%s): %d items, %.0f ms of audio in %s", index, t.Instrument, len(t.Items), t.DurationMs(), elapsed)
	r.emit(Event{Kind: EventTrackRendered, Track: index, Frames: out.Frames(), Elapsed: elapsed})
	return out, nil
}

// note returns the enveloped mono voice for n, or nil for rests and pitches
// that do not resolve to a positive frequency.
func (r *Renderer) note(track int, n score.Note, rng *rand.Rand) *pcm.Buffer {
	if n.IsRest() {
		return nil
	}
	freq, ok := r.opts.Pitches.Frequency(n.Pitch)
	if !ok || freq <= 0 {
		r.logger.Printf("track %d: skipping unresolvable pitch %q", track, n.Pitch)
		r.emit(Event{Kind: EventNoteSkipped, Track: track, Pitch: n.Pitch})
		return nil
	}
	in := n.Instrument
	if in == nil {
		in, _ = instrument.Lookup("sine")
	}
	if r.opts.OctaveShift && in.OctaveShift != 0 {
		freq *= math.Pow(2, float64(in.OctaveShift))
	}
	voice := r.voices.Tone(freq, in, n.DurationMs, n.Volume, rng)
	return envelope.Apply(voice, in)
}

// chord mixes the chord's sounding notes, or returns nil if none sound.
func (r *Renderer) chord(ctx context.Context, track int, c score.Chord, rng *rand.Rand) (*pcm.Buffer, error) {
	voices := make([]*pcm.Buffer, 0, len(c.Notes))
	for _, n := range c.Notes {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		if v := r.note(track, n, rng); v != nil {
			voices = append(voices, v)
		}
	}
	if len(voices) == 0 {
		return nil, nil
	}
	mixed, err := r.chords.Mix(voices...)
	if err != nil {
		return nil, fmt.Errorf("track %d chord: %w", track, err)
	}
	return mixed, nil
}

func (r *Renderer) emit(e Event) {
	if r.opts.OnEvent != nil {
		r.opts.OnEvent(e)
	}
}
