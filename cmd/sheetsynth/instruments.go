package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
)

func newInstrumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "List instrument names accepted in scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range sheetsynth.Instruments() {
				in, _ := sheetsynth.LookupInstrument(name)
				if in.Name != name {
					fmt.Fprintf(out, "%-16s -> %s\n", name, in.Name)
					continue
				}
				waves := make([]string, len(in.Waves))
				for i, w := range in.Waves {
					waves[i] = string(w)
				}
				fmt.Fprintf(out, "%-16s %s\n", name, strings.Join(waves, "+"))
			}
			return nil
		},
	}
}
