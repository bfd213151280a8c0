// Package spectrum measures the frequency content of rendered buffers.
package spectrum

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/cbegin/sheetsynth-go/internal/pcm"
)

// Spectrum is the single-sided magnitude spectrum of a buffer.
type Spectrum struct {
	Magnitudes []float64 // bin k covers k*Resolution Hz
	Resolution float64   // Hz per bin
}

// Peak is a local maximum of the spectrum.
type Peak struct {
	FreqHz    float64
	Magnitude float64
}

// Analyze downmixes buf to mono, applies a Hann window, zero-pads to a power
// of two and returns its magnitude spectrum. Empty buffers give an empty
// Spectrum.
func Analyze(buf *pcm.Buffer) Spectrum {
	frames := buf.Frames()
	if frames == 0 {
		return Spectrum{}
	}
	mono := make([]float64, frames)
	for i := range mono {
		var sum float64
		for c := 0; c < buf.Channels; c++ {
			sum += buf.Samples[i*buf.Channels+c]
		}
		mono[i] = sum / float64(buf.Channels)
	}
	if frames > 1 {
		for i, w := range window.Hann(frames) {
			mono[i] *= w
		}
	}
	size := 1
	for size < frames {
		size <<= 1
	}
	padded := make([]float64, size)
	copy(padded, mono)

	bins := fft.FFTReal(padded)
	mags := make([]float64, size/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i])
	}
	return Spectrum{
		Magnitudes: mags,
		Resolution: float64(buf.SampleRate) / float64(size),
	}
}

// Dominant returns the frequency of the strongest bin, ignoring DC.
func (s Spectrum) Dominant() float64 {
	best, idx := 0.0, 0
	for k := 1; k < len(s.Magnitudes); k++ {
		if s.Magnitudes[k] > best {
			best, idx = s.Magnitudes[k], k
		}
	}
	return float64(idx) * s.Resolution
}

// BandEnergy returns the fraction of total energy between loHz and hiHz
// inclusive. A silent spectrum reports 0.
func (s Spectrum) BandEnergy(loHz, hiHz float64) float64 {
	var band, total float64
	for k, m := range s.Magnitudes {
		e := m * m
		total += e
		f := float64(k) * s.Resolution
		if f >= loHz && f <= hiHz {
			band += e
		}
	}
	if total == 0 {
		return 0
	}
	return band / total
}

// Peaks returns up to n local maxima, strongest first. Peaks closer than
// minSpacingHz to a stronger one are dropped.
func (s Spectrum) Peaks(n int, minSpacingHz float64) []Peak {
	var cands []Peak
	for k := 1; k+1 < len(s.Magnitudes); k++ {
		m := s.Magnitudes[k]
		if m > 0 && m >= s.Magnitudes[k-1] && m > s.Magnitudes[k+1] {
			cands = append(cands, Peak{FreqHz: float64(k) * s.Resolution, Magnitude: m})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].Magnitude > cands[j].Magnitude })

	var out []Peak
	for _, c := range cands {
		if len(out) == n {
			break
		}
		near := false
		for _, p := range out {
			if math.Abs(p.FreqHz-c.FreqHz) < minSpacingHz {
				near = true
				break
			}
		}
		if !near {
			out = append(out, c)
		}
	}
	return out
}

// DominantFrequency is shorthand for Analyze(buf).Dominant().
func DominantFrequency(buf *pcm.Buffer) float64 {
	return Analyze(buf).Dominant()
}
