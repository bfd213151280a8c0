package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cbegin/sheetsynth-go"
	"github.com/cbegin/sheetsynth-go/internal/tui"
)

func newPlayCmd(flags *renderFlags) *cobra.Command {
	var (
		once   bool
		plain  bool
		volume float64
	)
	cmd := &cobra.Command{
		Use:   "play <score.json>",
		Short: "Render a score and play it",
		Long: `Render a score and play it through the default audio device. The
interactive view restarts on n, pauses on space and quits on q. With --plain,
playback runs without the view until it ends or Ctrl-C is pressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := sheetsynth.LoadScore(args[0], flags.loops)
			if err != nil {
				return err
			}
			buf, err := sheetsynth.Render(cmd.Context(), sc, flags.options()...)
			if err != nil {
				return err
			}
			title := sc.Metadata.Title
			if title == "" {
				title = filepath.Base(args[0])
			}
			if plain {
				return playPlain(cmd, buf, !once, volume)
			}
			return playBuffer(cmd, title, buf, !once, volume)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "play a single pass instead of looping")
	cmd.Flags().BoolVar(&plain, "plain", false, "play without the interactive view")
	cmd.Flags().Float64Var(&volume, "volume", 1, "master volume in [0,1]")
	return cmd
}

// playBuffer runs the interactive view until the user quits.
func playBuffer(cmd *cobra.Command, title string, buf *sheetsynth.Buffer, loop bool, volume float64) error {
	player, err := sheetsynth.NewPlayer(sheetsynth.WithLoopPlayback(loop))
	if err != nil {
		return err
	}
	player.SetMasterVolume(volume)
	if err := player.Play(buf); err != nil {
		return err
	}

	final, err := tea.NewProgram(tui.NewModel(title, player, sheetsynth.SampleRate),
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.OutOrStdout()),
	).Run()
	if err != nil {
		_ = player.Stop()
		return err
	}
	if m, ok := final.(tui.Model); ok {
		return m.Err()
	}
	return nil
}

// playPlain reports loop boundaries until playback ends or the context is cancelled.
func playPlain(cmd *cobra.Command, buf *sheetsynth.Buffer, loop bool, volume float64) error {
	player, err := sheetsynth.NewPlayer(sheetsynth.WithLoopPlayback(loop))
	if err != nil {
		return err
	}
	player.SetMasterVolume(volume)
	events := player.Watch()
	if err := player.Play(buf); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "playing %s (Ctrl-C to stop)\n", formatDuration(audioDuration(buf)))
	for {
		select {
		case <-cmd.Context().Done():
			return player.Stop()
		case ev := <-events:
			switch ev.Kind {
			case sheetsynth.EventLoopCompleted:
				fmt.Fprintf(out, "loop %d\n", ev.Loop)
			case sheetsynth.EventPlaybackEnded:
				return nil
			}
		}
	}
}
