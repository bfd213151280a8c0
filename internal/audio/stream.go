// Package audio streams rendered buffers to the sound card through ebiten's
// audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

const bytesPerSample = 4 // float32

// Source produces interleaved stereo float32 samples on the audio thread.
// Fill writes up to len(dst) samples and returns how many it wrote; a
// source with nothing left returns 0.
type Source interface {
	Fill(dst []float32) int
}

// StreamReader adapts a Source to the little-endian float32 byte stream
// read by ebiten's NewPlayerF32. It reports io.EOF once Fill returns 0.
type StreamReader struct {
	mu      sync.Mutex
	source  Source
	scratch []float32
}

func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := len(p) / bytesPerSample
	want -= want % 2
	if want == 0 {
		return 0, nil
	}
	r.scratch = slices.Grow(r.scratch[:0], want)[:want]
	n := r.source.Fill(r.scratch)
	n -= n % 2
	if n == 0 {
		return 0, io.EOF
	}
	for i, v := range r.scratch[:n] {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}
	return n * bytesPerSample, nil
}

var (
	deviceOnce sync.Once
	device     *ebitaudio.Context
	deviceRate int
)

// sharedContext returns the process-wide ebiten audio context, which can
// only be created once and only at one sample rate.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	deviceOnce.Do(func() {
		deviceRate = sampleRate
		device = ebitaudio.NewContext(sampleRate)
	})
	if deviceRate != sampleRate {
		return nil, fmt.Errorf("audio: device open at %d Hz, buffer is %d Hz", deviceRate, sampleRate)
	}
	return device, nil
}

// Output is one Source playing on the default device.
type Output struct {
	player *ebitaudio.Player
}

func NewOutput(sampleRate int, source Source) (*Output, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(NewStreamReader(source))
	if err != nil {
		return nil, err
	}
	return &Output{player: pl}, nil
}

func (o *Output) Play()           { o.player.Play() }
func (o *Output) Pause()          { o.player.Pause() }
func (o *Output) IsPlaying() bool { return o.player.IsPlaying() }

// SetVolume sets the output gain, 1 being unity.
func (o *Output) SetVolume(v float64) { o.player.SetVolume(v) }

// Position is what the listener hears now, behind the source by the
// device's buffering.
func (o *Output) Position() time.Duration {
	return o.player.Position()
}

func (o *Output) Close() error {
	o.player.Pause()
	return o.player.Close()
}
