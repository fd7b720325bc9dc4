package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Digital-Shane/moviegrabber/internal/config"
	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	vault     string
	verbose   bool
	yes       bool
	overwrite bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "moviegrabber",
		Short: "Create Markdown notes for movies and series",
		Long: `moviegrabber looks a movie or series up on OMDb, finds a trailer on YouTube
and writes a note from a template into your Markdown vault.

Search by title or paste an IMDb id (tt0117060). Existing notes are regenerated
above the keep marker; everything you wrote below it survives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.vault, "vault", "", "Vault directory (overrides vault_path)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print diagnostic logs")
	rootCmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to create confirmations")
	rootCmd.PersistentFlags().BoolVar(&opts.overwrite, "overwrite", false, "Overwrite existing notes without asking")

	rootCmd.AddCommand(
		newSearchCmd(opts),
		newGalleryCmd(opts),
		newConfigCmd(),
		newHistoryCmd(),
		newUndoCmd(opts),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	// Flow failures were already shown as a notice.
	var failure *flow.Failure
	if !errors.As(err, &failure) {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return err
}

// newLogger returns the diagnostic logger for a command.
func (o *rootOptions) newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Warn
	if o.verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "moviegrabber",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
}

// loadConfig reads the config file and applies .env, environment and flag
// overrides. The result is never saved.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	stored, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := stored.WithEnv(os.LookupEnv)
	if o.vault != "" {
		cfg.VaultPath = o.vault
	}
	return cfg, nil
}
