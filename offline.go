package sheetsynth

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/sheetsynth-go/internal/effects"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
	"github.com/cbegin/sheetsynth-go/internal/sequencer"
)

const wavPCMFormat = 1

// Render synthesizes sc into a stereo buffer. Tracks render concurrently; the
// result does not depend on scheduling. Master effects from the score
// metadata, or from WithMasterEffects, are applied last.
func Render(ctx context.Context, sc *Score, opts ...Option) (*Buffer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out, err := sequencer.New(cfg.seq).Render(ctx, sc)
	if err != nil {
		return nil, err
	}
	specs := sc.Metadata.Effects
	if cfg.fxSet {
		specs = cfg.effects
	}
	chain, err := effects.Build(specs, out.SampleRate)
	if err != nil {
		return nil, err
	}
	if chain != nil {
		out = chain.Apply(out)
	}
	return out, nil
}

// EncodeWAV writes buf as 16-bit PCM WAV, saturating samples at full scale.
func EncodeWAV(w io.WriteSeeker, buf *Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate, pcm.BitDepth, buf.Channels, wavPCMFormat)
	samples := buf.Int16()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: pcm.BitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("sheetsynth: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("sheetsynth: finish wav: %w", err)
	}
	return nil
}

// WriteWAV creates path and encodes buf into it.
func WriteWAV(path string, buf *Buffer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return EncodeWAV(f, buf)
}

// WriteMIDI exports the score timeline as a Standard MIDI File.
func WriteMIDI(path string, sc *Score) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return sc.WriteSMF(f)
}
