package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/tui"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUndoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo a note session",
		Long: `Pick a recorded session and revert it.

Created notes and posters are removed and overwritten notes are restored from
their backup. Files edited after they were written are left alone.

With --yes the newest session that was not undone yet is reverted without
asking.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			th := theme.Default()
			notifier := tui.NewNotifier(cmd.OutOrStdout(), th, false)

			if opts.yes {
				return undoLatest(notifier)
			}

			summaries, err := log.GetSessionSummaries()
			if err != nil {
				return fmt.Errorf("failed to read log sessions: %w", err)
			}
			if len(summaries) == 0 {
				notifier.Info("Nothing to undo")
				return nil
			}

			nodes := tui.HistoryNodes(summaries, th)
			tree := tui.HistoryTree(nodes)
			if _, err := tree.SetFocusedID(cmd.Context(), nodes[0].ID()); err != nil {
				return err
			}
			model := tui.NewUndoModel(tree, th)

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen())
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}

			res := model.Result()
			if !res.Done {
				notifier.Info("Nothing was undone")
				return nil
			}
			return reportUndo(notifier, res.Successful, res.Failed, res.Errs)
		},
	}
}

// undoLatest reverts the newest session that was not undone yet.
func undoLatest(notifier *tui.Notifier) error {
	session, path, err := log.FindLatestSession()
	if errors.Is(err, log.ErrNoSessions) {
		notifier.Info("Nothing to undo")
		return nil
	}
	if err != nil {
		return err
	}

	successful, failed, errs := log.UndoSession(session)
	if failed == 0 {
		if err := log.MarkUndone(session, path); err != nil {
			return err
		}
	}
	return reportUndo(notifier, successful, failed, errs)
}

func reportUndo(notifier *tui.Notifier, successful, failed int, errs []error) error {
	for _, e := range errs {
		notifier.Warn(e.Error())
	}
	if failed > 0 {
		notifier.Error(fmt.Sprintf("Undid %d operation%s, %d failed", successful, plural(successful), failed))
		return &flow.Failure{State: flow.Idle, Err: fmt.Errorf("%d operation%s could not be undone", failed, plural(failed))}
	}
	notifier.Success(fmt.Sprintf("Undid %d operation%s", successful, plural(successful)))
	return nil
}
