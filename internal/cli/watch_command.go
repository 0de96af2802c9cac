package cli

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shorts-studio/internal/media"
	"shorts-studio/internal/studio"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive dashboard: follow jobs, create new ones, review",
		Long: `watch polls the job store and keeps the job list, the selected job and
the library current. Keys:
  up/down  move          tab  switch jobs/library
  n        new job       a    review the selected job
  r        refresh now   q    quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdinIsTTY() {
				return errors.New("watch requires an interactive terminal (TTY)")
			}
			// The screen owns stdout, so logs only go to a configured file.
			sync, err := ctx.synchronizer(nil)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), sync, ctx.resolver())
		},
	}
}

func runWatch(parent context.Context, sync *studio.Synchronizer, resolver media.Resolver) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	m := newWatchModel(ctx, sync, resolver)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the program reads the message, and OnChange may fire
	// from inside Update, so delivery happens off the calling goroutine.
	// Snapshots can arrive out of order; the model drops older versions.
	sync.OnChange(func(st studio.State) {
		go p.Send(stateMsg{state: st})
	})
	defer sync.OnChange(nil)

	go func() {
		_ = sync.Run(ctx)
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
			return parent.Err()
		}
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("watch requires an interactive terminal (TTY)")
		}
		return err
	}
	return nil
}
