package cmd

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/config"
	"github.com/Digital-Shane/moviegrabber/internal/tui"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the saved settings",
	}
	configCmd.AddCommand(newConfigShowCmd(), newConfigSetCmd(), newConfigGetCmd(), newConfigPathCmd())
	return configCmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every setting (API keys masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			th := theme.Default()
			entries := cfg.Entries()

			keyWidth := 0
			for _, e := range entries {
				keyWidth = max(keyWidth, lipgloss.Width(e.Key))
			}
			keyStyle := th.MutedStyle().Width(keyWidth)

			var b strings.Builder
			for _, e := range entries {
				fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(e.Key), e.Value)
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting by its key. Known keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			tui.NewNotifier(cmd.OutOrStdout(), theme.Default(), false).Success(fmt.Sprintf("Saved %s", args[0]))
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}
