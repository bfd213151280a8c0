package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// ramp returns a mono buffer whose frame i holds (i+1)*1000.
func ramp(frames int) *pcm.Buffer {
	buf := pcm.New(pcm.SampleRate, 1, frames)
	for i := range buf.Samples {
		buf.Samples[i] = float64(i+1) * 1000
	}
	return buf
}

// level undoes the normalization of a ramp sample.
func level(v float32) float64 {
	return math.Round(float64(v) * pcm.MaxAmplitude / 1000)
}

func TestLoopSourceConvertsToStereo(t *testing.T) {
	src := NewLoopSource(ramp(3), false)
	dst := make([]float32, 6)
	if n := src.Fill(dst); n != 6 {
		t.Fatalf("Fill = %d, want 6", n)
	}
	for i := 0; i < 3; i++ {
		want := float32(float64(i+1) * 1000 / pcm.MaxAmplitude)
		if dst[i*2] != want || dst[i*2+1] != want {
			t.Fatalf("frame %d = %v,%v want %v", i, dst[i*2], dst[i*2+1], want)
		}
	}
}

func TestLoopSourceClamps(t *testing.T) {
	buf := pcm.New(pcm.SampleRate, 2, 1)
	buf.Samples[0], buf.Samples[1] = 2*pcm.MaxAmplitude, -2*pcm.MaxAmplitude
	dst := make([]float32, 2)
	NewLoopSource(buf, false).Fill(dst)
	if dst[0] != 1 || dst[1] != -1 {
		t.Fatalf("got %v, want [1 -1]", dst)
	}
}

func TestLoopSourceShortFillAtEnd(t *testing.T) {
	src := NewLoopSource(ramp(3), false)
	ends := 0
	src.OnEnd = func() { ends++ }
	dst := make([]float32, 10)
	if n := src.Fill(dst); n != 6 {
		t.Fatalf("first Fill = %d, want 6", n)
	}
	if !src.Finished() {
		t.Fatal("expected finished")
	}
	if n := src.Fill(dst); n != 0 {
		t.Fatalf("Fill after end = %d, want 0", n)
	}
	if ends != 1 {
		t.Fatalf("OnEnd called %d times, want 1", ends)
	}

	src.Restart()
	if src.Finished() {
		t.Fatal("Restart should clear finished")
	}
	if n := src.Fill(dst[:2]); n != 2 || level(dst[0]) != 1 {
		t.Fatalf("after Restart: n=%d first=%v", n, level(dst[0]))
	}
}

func TestLoopSourceWraps(t *testing.T) {
	src := NewLoopSource(ramp(2), true)
	var loops []int
	src.OnLoop = func(n int) { loops = append(loops, n) }
	dst := make([]float32, 10) // five frames: 1 2 | 1 2 | 1
	if n := src.Fill(dst); n != 10 {
		t.Fatalf("looping Fill = %d, want 10", n)
	}
	for i, want := range []float64{1, 2, 1, 2, 1} {
		if got := level(dst[i*2]); got != want {
			t.Fatalf("frame %d = %v, want %v", i, got, want)
		}
	}
	if len(loops) != 2 || loops[0] != 1 || loops[1] != 2 {
		t.Fatalf("loops = %v, want [1 2]", loops)
	}
	frame, n := src.Position()
	if frame != 1 || n != 2 {
		t.Fatalf("Position = %d,%d want 1,2", frame, n)
	}
	if src.Finished() {
		t.Fatal("looping source should never finish")
	}
}

func TestEmptyLoopingSourceEnds(t *testing.T) {
	src := NewLoopSource(pcm.New(pcm.SampleRate, 1, 0), true)
	if n := src.Fill(make([]float32, 4)); n != 0 {
		t.Fatalf("Fill = %d, want 0", n)
	}
	if !src.Finished() || src.Frames() != 0 {
		t.Fatal("an empty buffer cannot loop")
	}
}

func TestLoopSourceTapSeesWrittenSamples(t *testing.T) {
	src := NewLoopSource(ramp(3), false)
	var tapped []int
	src.Tap = func(b []float32) { tapped = append(tapped, len(b)) }
	src.Fill(make([]float32, 4))
	src.Fill(make([]float32, 4))
	src.Fill(make([]float32, 4))
	if len(tapped) != 2 || tapped[0] != 4 || tapped[1] != 2 {
		t.Fatalf("tap lengths = %v, want [4 2]", tapped)
	}
}

func TestStreamReaderEncodesFloat32(t *testing.T) {
	r := NewStreamReader(NewLoopSource(ramp(3), false))
	p := make([]byte, 16)
	n, err := r.Read(p)
	if err != nil || n != 16 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	got := math.Float32frombits(binary.LittleEndian.Uint32(p[8:]))
	if want := float32(2000 / pcm.MaxAmplitude); got != want {
		t.Fatalf("second frame = %v, want %v", got, want)
	}
	if n, err := r.Read(p); err != nil || n != 8 {
		t.Fatalf("final short Read = %d, %v; want 8, nil", n, err)
	}
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestStreamReaderIgnoresPartialFrames(t *testing.T) {
	r := NewStreamReader(NewLoopSource(ramp(3), false))
	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("Read of less than a frame = %d, %v", n, err)
	}
	if n, _ := r.Read(make([]byte, 12)); n != 8 {
		t.Fatalf("Read of 1.5 frames = %d, want 8", n)
	}
}
