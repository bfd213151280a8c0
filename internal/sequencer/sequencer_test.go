package sequencer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
	"github.com/cbegin/sheetsynth-go/internal/score"
	"github.com/cbegin/sheetsynth-go/internal/spectrum"
)

func lookup(t *testing.T, name string) *instrument.Instrument {
	t.Helper()
	in, ok := instrument.Lookup(name)
	if !ok {
		t.Fatalf("instrument %q not found", name)
	}
	return in
}

func note(in *instrument.Instrument, pitch string, ms, vol float64) score.Note {
	return score.Note{Pitch: pitch, DurationMs: ms, Volume: vol, Instrument: in}
}

func single(items ...score.Item) *score.Score {
	return &score.Score{Tracks: []score.Track{{Instrument: "test", Items: items}}}
}

func TestSingleNotePitch(t *testing.T) {
	sine := lookup(t, "sine")
	out, err := New(DefaultOptions()).Render(context.Background(), single(note(sine, "A4", 500, 0.8)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.SampleRate != pcm.SampleRate || out.Channels != 2 {
		t.Fatalf("format = %d Hz x%d, want %d Hz stereo", out.SampleRate, out.Channels, pcm.SampleRate)
	}
	if math.Abs(out.DurationMs()-500) > 1 {
		t.Fatalf("duration = %v ms, want ~500", out.DurationMs())
	}
	if f := spectrum.DominantFrequency(out); math.Abs(f-440) > 3 {
		t.Fatalf("dominant = %v Hz, want ~440", f)
	}
}

func TestRestDelaysOnset(t *testing.T) {
	sine := lookup(t, "sine")
	out, err := New(DefaultOptions()).Render(context.Background(),
		single(note(sine, "REST", 200, 0.7), note(sine, "C4", 300, 0.7)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if math.Abs(out.DurationMs()-500) > 1 {
		t.Fatalf("duration = %v ms, want ~500", out.DurationMs())
	}
	onset := pcm.FrameCount(200, pcm.SampleRate)
	for i := 0; i < onset*2; i++ {
		if out.Samples[i] != 0 {
			t.Fatalf("sample %d = %v inside the rest", i, out.Samples[i])
		}
	}
	var early float64
	for i := onset * 2; i < (onset+pcm.FrameCount(20, pcm.SampleRate))*2; i++ {
		early = math.Max(early, math.Abs(out.Samples[i]))
	}
	if early == 0 {
		t.Fatal("no sound in the first 20 ms after the rest")
	}
}

func TestChordContainsBothPitches(t *testing.T) {
	sine := lookup(t, "sine")
	chord := score.Chord{Notes: []score.Note{
		note(sine, "A4", 500, 0.8),
		note(sine, "C5", 500, 0.8),
	}}
	out, err := New(DefaultOptions()).Render(context.Background(), single(chord))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if math.Abs(out.DurationMs()-500) > 1 {
		t.Fatalf("duration = %v ms, want ~500", out.DurationMs())
	}
	s := spectrum.Analyze(out)
	low, high := s.BandEnergy(430, 450), s.BandEnergy(513, 533)
	if low < 0.2 || high < 0.2 {
		t.Fatalf("band energy 440=%v 523=%v, want both >= 0.2", low, high)
	}
}

func TestChordAdvancesByLongestNote(t *testing.T) {
	sine := lookup(t, "sine")
	chord := score.Chord{Notes: []score.Note{note(sine, "C4", 100, 0.7), note(sine, "E4", 300, 0.7)}}
	out, err := New(DefaultOptions()).Render(context.Background(), single(chord, note(sine, "G4", 100, 0.7)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if math.Abs(out.DurationMs()-400) > 1 {
		t.Fatalf("duration = %v ms, want ~400", out.DurationMs())
	}
}

func fourTrackScore(t *testing.T) *score.Score {
	piano, bongos := lookup(t, "piano"), lookup(t, "bongos")
	guitar, xylo := lookup(t, "guitar"), lookup(t, "xylophone")
	return &score.Score{Tracks: []score.Track{
		{Instrument: "piano", Items: []score.Item{
			note(piano, "C4", 300, 0.9),
			score.Chord{Notes: []score.Note{note(piano, "E4", 300, 0.7), note(piano, "G4", 250, 0.7)}},
		}},
		{Instrument: "bongos", Items: []score.Item{note(bongos, "C4", 200, 0.8), note(bongos, "REST", 100, 0.8), note(bongos, "C4", 200, 0.8)}},
		{Instrument: "guitar", Items: []score.Item{note(guitar, "E3", 400, 0.6), note(guitar, "B3", 200, 0.6)}},
		{Instrument: "xylophone", Items: []score.Item{note(xylo, "C5", 150, 0.7), note(xylo, "D5", 150, 0.7), note(xylo, "E5", 150, 0.7)}},
	}}
}

func TestConcurrentMatchesSequential(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	r := New(opts)
	sc := fourTrackScore(t)

	concurrent, err := r.Render(context.Background(), sc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	sequential, err := r.RenderSequential(context.Background(), sc)
	if err != nil {
		t.Fatalf("RenderSequential: %v", err)
	}
	if concurrent.Frames() != sequential.Frames() || concurrent.Channels != sequential.Channels {
		t.Fatalf("shape %dx%d vs %dx%d", concurrent.Frames(), concurrent.Channels, sequential.Frames(), sequential.Channels)
	}
	for i := range concurrent.Samples {
		if concurrent.Samples[i] != sequential.Samples[i] {
			t.Fatalf("sample %d: concurrent %v, sequential %v", i, concurrent.Samples[i], sequential.Samples[i])
		}
	}
	if concurrent.IsSilent() {
		t.Fatal("mix is silent")
	}
}

func TestSeedChangesNoise(t *testing.T) {
	sc := single(note(lookup(t, "bongos"), "C4", 100, 0.8))
	a, _ := New(Options{Seed: 1}).Render(context.Background(), sc)
	b, _ := New(Options{Seed: 2}).Render(context.Background(), sc)
	same := true
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds rendered identical percussion")
	}
}

func TestCancelledRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := New(DefaultOptions()).Render(ctx, fourTrackScore(t))
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want ErrCancelled wrapping context.Canceled", err)
	}
	if out != nil {
		t.Fatal("expected no buffer on cancellation")
	}
	_, err = New(DefaultOptions()).RenderSequential(ctx, fourTrackScore(t))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("sequential err = %v, want ErrCancelled", err)
	}
}

func TestUnresolvablePitchIsSkipped(t *testing.T) {
	var logs bytes.Buffer
	var mu sync.Mutex
	var skipped []string
	opts := DefaultOptions()
	opts.Logger = log.New(&logs, "", 0)
	opts.OnEvent = func(e Event) {
		if e.Kind == EventNoteSkipped {
			mu.Lock()
			skipped = append(skipped, e.Pitch)
			mu.Unlock()
		}
	}
	sine := lookup(t, "sine")
	out, err := New(opts).Render(context.Background(), single(note(sine, "H9", 100, 0.7), note(sine, "A4", 100, 0.7)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if math.Abs(out.DurationMs()-200) > 1 {
		t.Fatalf("duration = %v ms, want ~200", out.DurationMs())
	}
	for i := 0; i < pcm.FrameCount(100, pcm.SampleRate)*2; i++ {
		if out.Samples[i] != 0 {
			t.Fatalf("sample %d = %v where the bad note was", i, out.Samples[i])
		}
	}
	if len(skipped) != 1 || skipped[0] != "H9" {
		t.Fatalf("skipped = %v, want [H9]", skipped)
	}
	if !strings.Contains(logs.String(), `"H9"`) {
		t.Fatalf("log missing skipped pitch: %q", logs.String())
	}
}

func TestTrackPanAlternates(t *testing.T) {
	sine := lookup(t, "sine")
	r := New(DefaultOptions())
	track := score.Track{Items: []score.Item{note(sine, "A4", 200, 1)}}
	even, err := r.RenderTrack(context.Background(), 0, track)
	if err != nil {
		t.Fatalf("RenderTrack: %v", err)
	}
	odd, _ := r.RenderTrack(context.Background(), 1, track)
	energy := func(b *pcm.Buffer, ch int) float64 {
		var e float64
		for i := ch; i < len(b.Samples); i += 2 {
			e += b.Samples[i] * b.Samples[i]
		}
		return e
	}
	if energy(even, 1) <= energy(even, 0) {
		t.Error("even track should lean right")
	}
	if energy(odd, 0) <= energy(odd, 1) {
		t.Error("odd track should lean left")
	}
}

func TestOctaveShiftIsOptIn(t *testing.T) {
	bass := lookup(t, "bass")
	sc := single(note(bass, "A3", 800, 0.8))

	out, err := New(DefaultOptions()).Render(context.Background(), sc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := spectrum.Analyze(out)
	if written, below := s.BandEnergy(215, 225), s.BandEnergy(105, 115); written <= below {
		t.Fatalf("default: energy near 220 Hz = %v, near 110 Hz = %v; want the written pitch to dominate", written, below)
	}

	opts := DefaultOptions()
	opts.OctaveShift = true
	out, err = New(opts).Render(context.Background(), sc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s = spectrum.Analyze(out)
	shifted, unshifted := s.BandEnergy(105, 115), s.BandEnergy(215, 225)
	if shifted <= 10*unshifted {
		t.Fatalf("shifted: energy near 110 Hz = %v, near 220 Hz = %v; want the octave-down fundamental to dominate", shifted, unshifted)
	}
}

func TestCancelMidRender(t *testing.T) {
	piano := lookup(t, "piano")
	sc := &score.Score{}
	for i := 0; i < 4; i++ {
		var items []score.Item
		for j := 0; j < 40; j++ {
			items = append(items, score.Chord{Notes: []score.Note{
				note(piano, "C4", 1000, 0.7), note(piano, "E4", 1000, 0.7), note(piano, "G4", 1000, 0.7),
			}})
		}
		sc.Tracks = append(sc.Tracks, score.Track{Instrument: "piano", Items: items})
	}

	for name, render := range map[string]func(*Renderer, context.Context, *score.Score) (*pcm.Buffer, error){
		"concurrent": (*Renderer).Render,
		"sequential": (*Renderer).RenderSequential,
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			time.AfterFunc(20*time.Millisecond, cancel)

			start := time.Now()
			out, err := render(New(DefaultOptions()), ctx, sc)
			elapsed := time.Since(start)
			if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
				t.Fatalf("err = %v, want ErrCancelled wrapping context.Canceled", err)
			}
			if out != nil {
				t.Fatal("expected no buffer on cancellation")
			}
			if elapsed > 2*time.Second {
				t.Fatalf("cancelled render returned after %s", elapsed)
			}
		})
	}
}

func TestOverlayRejectsMismatchedTrack(t *testing.T) {
	tracks := []*pcm.Buffer{
		pcm.New(pcm.SampleRate, 2, 10),
		pcm.New(pcm.SampleRate/2, 2, 10),
	}
	if _, err := overlayTracks(tracks); !errors.Is(err, pcm.ErrFormatMismatch) {
		t.Fatalf("err = %v, want ErrFormatMismatch", err)
	}
}

func TestEmptyScore(t *testing.T) {
	out, err := New(DefaultOptions()).Render(context.Background(), &score.Score{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Frames() != 0 {
		t.Fatalf("Frames = %d, want 0", out.Frames())
	}
}

func BenchmarkRender(b *testing.B) {
	piano, _ := instrument.Lookup("piano")
	sc := &score.Score{}
	for i := 0; i < 4; i++ {
		sc.Tracks = append(sc.Tracks, score.Track{Items: []score.Item{
			note(piano, "C4", 250, 0.8), note(piano, "E4", 250, 0.8), note(piano, "G4", 250, 0.8),
		}})
	}
	r := New(DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render(context.Background(), sc); err != nil {
			b.Fatal(err)
		}
	}
}
