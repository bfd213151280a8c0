package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
)

func newMIDICmd(flags *renderFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "midi <score.json>",
		Short: "Export a score as a Standard MIDI File",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sheetsynth.LoadScore(args[0], flags.loops)
			if err != nil {
				return err
			}
			dst := output
			if dst == "" {
				dst = withExt(args[0], ".mid")
			}
			if err := sheetsynth.WriteMIDI(dst, sc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tracks, %d notes\n", dst, len(sc.Tracks), sc.NoteCount())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .mid path")
	return cmd
}
