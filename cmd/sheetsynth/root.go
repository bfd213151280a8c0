package main

import (
	"log"
	"os"
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// renderFlags are shared by every command that renders a score.
type renderFlags struct {
	loops      int
	seed       uint64
	workers    int
	noCompress bool
	octaves    bool
	verbose    bool
}

func (f *renderFlags) options() []sheetsynth.Option {
	opts := []sheetsynth.Option{
		sheetsynth.WithSeed(f.seed),
		sheetsynth.WithWorkers(f.workers),
		sheetsynth.WithCompression(!f.noCompress),
		sheetsynth.WithOctaveShift(f.octaves),
	}
	if f.verbose {
		opts = append(opts, sheetsynth.WithLogger(log.New(os.Stderr, "sheetsynth: ", log.Ltime|log.Lmicroseconds)))
	}
	return opts
}

func newRootCmd() *cobra.Command {
	flags := &renderFlags{}
	root := &cobra.Command{
		Use:          "sheetsynth",
		Short:        "Synthesize multi-track audio from JSON sheet music",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.IntVar(&flags.loops, "loops", 0, "override metadata.loops (0 keeps the file's value)")
	pf.Uint64Var(&flags.seed, "seed", 0, "seed for the random components of percussion, piano and resonance")
	pf.IntVar(&flags.workers, "workers", 4, "tracks rendered concurrently")
	pf.BoolVar(&flags.noCompress, "no-compress", false, "disable soft-knee compression in mixes")
	pf.BoolVar(&flags.octaves, "octave-shift", false, "transpose bass down and xylophone up an octave")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log per-track render timings and skipped notes")

	root.AddCommand(
		newRenderCmd(flags),
		newPlayCmd(flags),
		newInspectCmd(flags),
		newMIDICmd(flags),
		newInstrumentsCmd(),
	)
	return root
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	return durafmt.Parse(d.Round(time.Millisecond)).LimitFirstN(2).Format(shortUnits)
}

func audioDuration(buf *sheetsynth.Buffer) time.Duration {
	return time.Duration(buf.DurationMs() * float64(time.Millisecond))
}
