package envelope

import (
	"math"
	"testing"

	"github.com/cbegin/sheetsynth-go/internal/instrument"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

func TestApplyToSilenceStaysSilent(t *testing.T) {
	in, _ := instrument.Lookup("piano")
	buf := pcm.Silence(300)
	Apply(buf, in)
	if !buf.IsSilent() {
		t.Fatalf("enveloped silence should be all zero")
	}
}

func TestCurveShape(t *testing.T) {
	e := ADSR{AttackMs: 10, DecayMs: 50, SustainLevel: 0.5, ReleaseMs: 100}
	frames := pcm.FrameCount(500, pcm.SampleRate)
	curve := e.Curve(frames, pcm.SampleRate)
	if len(curve) != frames {
		t.Fatalf("len = %d, want %d", len(curve), frames)
	}
	var peak float64
	for i, g := range curve {
		if g < 0 || g > 1+1e-9 || math.IsNaN(g) {
			t.Fatalf("gain[%d] = %f out of range", i, g)
		}
		peak = math.Max(peak, g)
	}
	if peak < 0.9 {
		t.Fatalf("peak gain = %f, attack should approach 1", peak)
	}
	if curve[0] > 0.1 {
		t.Fatalf("curve should start near zero, got %f", curve[0])
	}
	if curve[frames-1] > 0.05 {
		t.Fatalf("curve should end near zero, got %f", curve[frames-1])
	}
	// middle of the sustain phase sits between 0.95*S and S
	mid := curve[pcm.FrameCount(250, pcm.SampleRate)]
	if mid < 0.47 || mid > 0.51 {
		t.Fatalf("sustain gain = %f, want ~0.49", mid)
	}
}

func TestShortNoteFallsBackToProportionalEnvelope(t *testing.T) {
	e := ADSR{AttackMs: 100, DecayMs: 200, SustainLevel: 0.6, ReleaseMs: 300}
	frames := pcm.FrameCount(50, pcm.SampleRate)
	curve := e.Curve(frames, pcm.SampleRate)
	if len(curve) != frames {
		t.Fatalf("len = %d, want %d", len(curve), frames)
	}
	var peak float64
	for _, g := range curve {
		peak = math.Max(peak, g)
	}
	if peak < 0.5 {
		t.Fatalf("fallback envelope peak = %f", peak)
	}
}

func TestCurveEmpty(t *testing.T) {
	if got := (ADSR{AttackMs: 5}).Curve(0, pcm.SampleRate); len(got) != 0 {
		t.Fatalf("expected empty curve, got %d", len(got))
	}
}

func TestSmoothPreservesConstantInterior(t *testing.T) {
	env := make([]float64, 200)
	for i := range env {
		env[i] = 1
	}
	out := smooth(env, smoothWindow)
	if math.Abs(out[100]-1) > 1e-12 {
		t.Fatalf("interior = %f, want 1", out[100])
	}
	if out[0] >= 1 || out[199] >= 1 {
		t.Fatalf("edges should taper: %f %f", out[0], out[199])
	}
}
