package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
)

func newRenderCmd(flags *renderFlags) *cobra.Command {
	var (
		output string
		midi   bool
		play   bool
	)
	cmd := &cobra.Command{
		Use:   "render <score.json>...",
		Short: "Render scores to 16-bit WAV files",
		Long: `Render one or more JSON scores to WAV. Each input is written next to
itself with a .wav extension unless --output names the file (single input only).
Several inputs are rendered concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return errors.New("--output needs exactly one input")
			}
			if play && len(args) > 1 {
				return errors.New("--play needs exactly one input")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var (
				mu      sync.Mutex
				errs    []error
				buffers = make([]*sheetsynth.Buffer, len(args))
			)
			swg := sizedwaitgroup.New(runtime.NumCPU())
			for i, path := range args {
				swg.Add()
				go func() {
					defer swg.Done()
					dst := output
					if dst == "" {
						dst = withExt(path, ".wav")
					}
					buf, err := renderFile(ctx, out, &mu, path, dst, midi, flags)
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", path, err))
						return
					}
					buffers[i] = buf
				}()
			}
			swg.Wait()
			if err := errors.Join(errs...); err != nil {
				return err
			}
			if play {
				return playBuffer(cmd, filepath.Base(args[0]), buffers[0], true, 1)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output WAV path")
	cmd.Flags().BoolVar(&midi, "midi", false, "also export a .mid file beside the WAV")
	cmd.Flags().BoolVar(&play, "play", false, "play the result in a loop after rendering")
	return cmd
}

// renderFile renders src to dst and reports to out, serialized by mu.
func renderFile(ctx context.Context, out io.Writer, mu *sync.Mutex, src, dst string, midi bool, flags *renderFlags) (*sheetsynth.Buffer, error) {
	sc, err := sheetsynth.LoadScore(src, flags.loops)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	buf, err := sheetsynth.Render(ctx, sc, flags.options()...)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	if err := sheetsynth.WriteWAV(dst, buf); err != nil {
		return nil, err
	}
	info, err := os.Stat(dst)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	fmt.Fprintf(out, "%s: %d tracks, %s of audio, %s, rendered in %s\n",
		dst, len(sc.Tracks), formatDuration(audioDuration(buf)), humanize.Bytes(uint64(info.Size())), formatDuration(elapsed))
	mu.Unlock()

	if midi {
		midiPath := withExt(dst, ".mid")
		if err := sheetsynth.WriteMIDI(midiPath, sc); err != nil {
			return nil, err
		}
		mu.Lock()
		fmt.Fprintf(out, "%s: MIDI export\n", midiPath)
		mu.Unlock()
	}
	return buf, nil
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
