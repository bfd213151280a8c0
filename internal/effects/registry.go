package effects

import (
	"fmt"
	"strings"
)

// Spec names a master-bus effect and its positional parameters, in the
// field order of the effect's Params struct. Missing trailing parameters
// keep their defaults.
type Spec struct {
	Type   string    `json:"type"`
	Params []float64 `json:"params,omitempty"`
}

// Build creates a chain from specs. It returns nil when specs is empty.
// Supported types: delay, reverb, chorus, dist/distortion, eq, comp/compressor.
func Build(specs []Spec, sampleRate int) (*Chain, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	chain := NewChain()
	for i, s := range specs {
		eff, err := create(s, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("effects: spec %d: %w", i, err)
		}
		chain.Add(eff)
	}
	return chain, nil
}

func create(s Spec, sampleRate int) (Effector, error) {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "delay":
		p := DefaultDelayParams()
		return build(s, p.fields(), func() Effector { return NewDelay(sampleRate, p) })
	case "reverb":
		p := DefaultReverbParams()
		return build(s, p.fields(), func() Effector { return NewReverb(sampleRate, p) })
	case "chorus":
		p := DefaultChorusParams()
		return build(s, p.fields(), func() Effector { return NewChorus(sampleRate, p) })
	case "dist", "distortion":
		p := DefaultDistortionParams()
		return build(s, p.fields(), func() Effector { return NewDistortion(sampleRate, p) })
	case "eq":
		p := DefaultEQParams()
		return build(s, p.fields(), func() Effector { return NewEQ3Band(sampleRate, p) })
	case "comp", "compressor":
		p := DefaultCompressorParams()
		return build(s, p.fields(), func() Effector { return NewCompressor(sampleRate, p) })
	}
	return nil, fmt.Errorf("unknown effect type %q", s.Type)
}

// build overwrites fields with the spec's positional params, then constructs.
func build(s Spec, fields []*float64, construct func() Effector) (Effector, error) {
	if len(s.Params) > len(fields) {
		return nil, fmt.Errorf("%s takes at most %d params, got %d", s.Type, len(fields), len(s.Params))
	}
	for i, v := range s.Params {
		*fields[i] = v
	}
	return construct(), nil
}
