package oscillator

import (
	"math"
	"testing"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

func TestGenerateLengthMatchesDuration(t *testing.T) {
	for _, w := range []Wave{Sine, Square, Triangle, Sawtooth} {
		for _, ms := range []float64{1, 10, 333, 500, 1234.5} {
			buf, ok := Generate(w, 440, ms)
			if !ok {
				t.Fatalf("%s: expected periodic buffer", w)
			}
			want := ms * pcm.SampleRate / 1000
			if math.Abs(float64(buf.Frames())-want) > 1 {
				t.Fatalf("%s %vms: frames = %d, want %.1f", w, ms, buf.Frames(), want)
			}
		}
	}
}

func TestGenerateNoiseSignalsPercussion(t *testing.T) {
	buf, ok := Generate(Noise, 440, 100)
	if ok || buf != nil {
		t.Fatalf("noise should not produce a periodic buffer")
	}
}

func TestUnknownWaveFallsBackToSine(t *testing.T) {
	if got := ParseWave("organ"); got != Sine {
		t.Fatalf("ParseWave(organ) = %q, want sine", got)
	}
	a, _ := Generate(Wave("organ"), 440, 20)
	b, _ := Generate(Sine, 440, 20)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %f vs %f", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestGenerateIsFullScale(t *testing.T) {
	buf, _ := Generate(Square, 100, 100)
	if buf.Peak() != pcm.MaxAmplitude {
		t.Fatalf("square peak = %f, want %f", buf.Peak(), pcm.MaxAmplitude)
	}
	buf, _ = Generate(Sine, 441, 100)
	if math.Abs(buf.Peak()-pcm.MaxAmplitude) > 1 {
		t.Fatalf("sine peak = %f", buf.Peak())
	}
}

func TestSampleShapes(t *testing.T) {
	if got := Sample(Triangle, 0.25); math.Abs(got) > 1e-9 {
		t.Errorf("triangle at 0.25 = %f, want 0", got)
	}
	if got := Sample(Triangle, 0.5); math.Abs(got-1) > 1e-9 {
		t.Errorf("triangle at 0.5 = %f, want 1", got)
	}
	if got := Sample(Sawtooth, 0); got != -1 {
		t.Errorf("saw at 0 = %f, want -1", got)
	}
	if got := Sample(Square, 0.75); got != -1 {
		t.Errorf("square at 0.75 = %f, want -1", got)
	}
}
