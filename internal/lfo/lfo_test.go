package lfo

import (
	"math"
	"testing"

	"github.com/cbegin/sheetsynth-go/internal/oscillator"
)

// sample100 returns one cycle of a 1 Hz LFO at 100 samples per second.
func sample100(depth float64, shape oscillator.Wave) []float64 {
	l := New(depth, 1, shape)
	out := make([]float64, 100)
	for i := range out {
		out[i] = l.Sample(100)
	}
	return out
}

func TestShapes(t *testing.T) {
	cases := []struct {
		shape oscillator.Wave
		at    int
		want  float64
	}{
		{oscillator.Sine, 0, 0},
		{oscillator.Sine, 25, 0.5},
		{oscillator.Sine, 75, -0.5},
		{oscillator.Triangle, 0, -0.5},
		{oscillator.Triangle, 50, 0.5},
		{oscillator.Square, 10, 0.5},
		{oscillator.Square, 60, -0.5},
		{oscillator.Sawtooth, 0, -0.5},
	}
	for _, c := range cases {
		got := sample100(0.5, c.shape)[c.at]
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("%s at sample %d: got %f, want %f", c.shape, c.at, got, c.want)
		}
	}
}

func TestNonPeriodicShapeFallsBackToSine(t *testing.T) {
	for _, shape := range []oscillator.Wave{oscillator.Noise, oscillator.Complex} {
		got := sample100(1, shape)[25]
		if math.Abs(got-1) > 1e-9 {
			t.Fatalf("%s quarter cycle: got %f, want 1", shape, got)
		}
	}
}

func TestInactive(t *testing.T) {
	var idle LFO
	if idle.Active() {
		t.Fatal("zero value should be inactive")
	}
	if got := idle.Factor(44100); got != 1 {
		t.Fatalf("inactive factor: got %f, want 1", got)
	}
	for _, l := range []LFO{New(0, 5, oscillator.Sine), New(1, 0, oscillator.Sine)} {
		if l.Active() || l.Sample(44100) != 0 {
			t.Fatalf("zero depth or rate should be silent")
		}
	}
	l := New(1, 5, oscillator.Sine)
	if got := l.Sample(0); got != 0 {
		t.Fatalf("zero sample rate: got %f, want 0", got)
	}
}

func TestCurveStaysWithinDepth(t *testing.T) {
	l := New(0.001, 3, oscillator.Sine)
	curve := l.Curve(44100, 44100)
	if len(curve) != 44100 {
		t.Fatalf("curve length: got %d", len(curve))
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, f := range curve {
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if lo < 0.999-1e-12 || hi > 1.001+1e-12 {
		t.Fatalf("curve range [%f, %f] exceeds depth", lo, hi)
	}
	if hi-lo < 0.0019 {
		t.Fatalf("three full cycles should span the depth, got %f", hi-lo)
	}
}

func TestResetRestartsCycle(t *testing.T) {
	l := New(1, 1, oscillator.Sawtooth)
	first := l.Sample(100)
	for i := 0; i < 37; i++ {
		l.Sample(100)
	}
	l.Reset()
	if got := l.Sample(100); got != first {
		t.Fatalf("after reset: got %f, want %f", got, first)
	}
}
