// Package lfo provides slow modulators: the vibrato and pitch drift of the
// resonance effects and the sweep of the master-bus chorus.
package lfo

import (
	"math"

	"github.com/cbegin/sheetsynth-go/internal/oscillator"
)

// LFO is a low-frequency oscillator advanced one sample at a time. The zero
// value is inactive.
type LFO struct {
	depth  float64 // peak deviation; units are up to the caller
	rateHz float64
	shape  oscillator.Wave
	phase  float64 // [0, 1)
}

// New returns an LFO swinging ±depth at rateHz.
func New(depth, rateHz float64, shape oscillator.Wave) LFO {
	var l LFO
	l.Set(depth, rateHz, shape)
	return l
}

// Set reconfigures the LFO without touching its phase. Shapes without a
// periodic rendering select a sine.
func (l *LFO) Set(depth, rateHz float64, shape oscillator.Wave) {
	l.depth = depth
	l.rateHz = rateHz
	if !shape.Periodic() {
		shape = oscillator.Sine
	}
	l.shape = shape
}

// Sample returns the current value in [-depth, +depth] and advances one sample.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	v := oscillator.Sample(l.shape, l.phase)
	l.phase += l.rateHz / sampleRate
	l.phase -= math.Floor(l.phase)
	return v * l.depth
}

// Factor returns 1 + Sample, a multiplier for frequency or phase modulation.
func (l *LFO) Factor(sampleRate float64) float64 {
	return 1 + l.Sample(sampleRate)
}

// Curve returns the next n Factor values.
func (l *LFO) Curve(n int, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = l.Factor(sampleRate)
	}
	return out
}

// Active reports whether the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

func (l *LFO) Reset() {
	l.phase = 0
}
