package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
	"github.com/cbegin/sheetsynth-go/internal/pcm"
	"github.com/cbegin/sheetsynth-go/internal/spectrum"
)

var bands = []struct {
	name   string
	lo, hi float64
}{
	{"sub", 0, 60},
	{"bass", 60, 250},
	{"low-mid", 250, 2000},
	{"high-mid", 2000, 6000},
	{"air", 6000, float64(sheetsynth.SampleRate) / 2},
}

func newInspectCmd(flags *renderFlags) *cobra.Command {
	var peaks int
	cmd := &cobra.Command{
		Use:   "inspect <score.json>",
		Short: "Render a score and print level and spectrum statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sheetsynth.LoadScore(args[0], flags.loops)
			if err != nil {
				return err
			}
			buf, err := sheetsynth.Render(cmd.Context(), sc, flags.options()...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title:     %s\n", sc.Metadata.Title)
			fmt.Fprintf(out, "tracks:    %d (%d notes)\n", len(sc.Tracks), sc.NoteCount())
			fmt.Fprintf(out, "duration:  %s (%d frames, %d ch)\n", formatDuration(audioDuration(buf)), buf.Frames(), buf.Channels)
			if buf.IsSilent() {
				fmt.Fprintln(out, "peak:      silent")
				return nil
			}
			fmt.Fprintf(out, "peak:      %.1f dBFS\n", pcm.LinearToDB(buf.Peak()/pcm.MaxAmplitude))

			spec := spectrum.Analyze(buf)
			fmt.Fprintf(out, "dominant:  %.1f Hz\n", spec.Dominant())
			for _, p := range spec.Peaks(peaks, 20) {
				fmt.Fprintf(out, "  peak     %8.1f Hz  %.3g\n", p.FreqHz, p.Magnitude)
			}
			for _, b := range bands {
				fmt.Fprintf(out, "  %-8s %5.1f%%\n", b.name, 100*spec.BandEnergy(b.lo, b.hi))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&peaks, "peaks", 5, "number of spectral peaks to list")
	return cmd
}
