package instrument

import (
	"testing"

	"github.com/cbegin/sheetsynth-go/internal/oscillator"
)

func TestLookupResolvesAliases(t *testing.T) {
	bass, ok := Lookup("bass")
	if !ok {
		t.Fatalf("bass alias not found")
	}
	if bass.Name != "electric_bass" {
		t.Fatalf("bass resolved to %q", bass.Name)
	}
	same, _ := Lookup("Electric_Bass")
	if same != bass {
		t.Fatalf("expected the shared instrument instance")
	}
	if _, ok := Lookup("theremin"); ok {
		t.Fatalf("unexpected instrument theremin")
	}
}

func TestTableAppliesDefaults(t *testing.T) {
	s, _ := Lookup("sine")
	if len(s.Waves) != 1 || s.Waves[0] != oscillator.Sine {
		t.Fatalf("sine waves = %v", s.Waves)
	}
	if s.SustainLevel != 0.7 || s.AttackMs != 10 {
		t.Fatalf("sine should carry default ADSR, got %+v", s)
	}
	p, _ := Lookup("piano")
	if !p.IsComplex() || !p.StringResonance {
		t.Fatalf("piano should be complex with string resonance")
	}
	if p.FilterQ != 1 {
		t.Fatalf("piano FilterQ = %v, want default 1", p.FilterQ)
	}
}

func TestPercussionInstruments(t *testing.T) {
	for name, want := range map[string]Percussion{"bongos": PercussionMembrane, "claves": PercussionClave} {
		in, _ := Lookup(name)
		if !in.HasWave(oscillator.Noise) {
			t.Errorf("%s should include a noise oscillator", name)
		}
		if in.Percussion != want {
			t.Errorf("%s percussion = %v, want %v", name, in.Percussion, want)
		}
	}
}

func TestWeightDefaultsToUnity(t *testing.T) {
	g, _ := Lookup("guitar")
	if g.Weight(0) != 0.45 {
		t.Fatalf("weight(0) = %v", g.Weight(0))
	}
	if g.Weight(10) != 1 {
		t.Fatalf("weight beyond table = %v, want 1", g.Weight(10))
	}
}

func TestNamesIncludesAliases(t *testing.T) {
	names := Names()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"bass", "guitar", "piano", "claves", "electric_bass", "none"} {
		if !seen[want] {
			t.Errorf("Names missing %q", want)
		}
	}
}
