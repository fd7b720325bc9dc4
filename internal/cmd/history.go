package cmd

import (
	"fmt"

	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/tui"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent note sessions and the files they touched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := log.GetSessionSummaries()
			if err != nil {
				return fmt.Errorf("failed to read log sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			th := theme.Default()
			if len(summaries) == 0 {
				fmt.Fprintln(out, th.MutedStyle().Render("No sessions recorded yet."))
				return nil
			}
			if limit > 0 && len(summaries) > limit {
				summaries = summaries[:limit]
			}
			fmt.Fprint(out, tui.RenderHistory(tui.HistoryNodes(summaries, th)))
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions to list (0 for all)")
	return historyCmd
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
