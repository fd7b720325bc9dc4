package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/config"
	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/provider/omdb"
	"github.com/Digital-Shane/moviegrabber/internal/provider/tmdb"
	"github.com/Digital-Shane/moviegrabber/internal/provider/youtube"
	"github.com/Digital-Shane/moviegrabber/internal/tui"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/spf13/cobra"
)

// Base URL overrides, set by tests.
var (
	omdbBaseURL    string
	youtubeBaseURL string
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var series bool

	searchCmd := &cobra.Command{
		Use:   "search [title or IMDb id]",
		Short: "Search for a title and create its note",
		Long: `Search OMDb for a movie or series and write a note for it.

Without arguments you are asked for a query. An IMDb id (tt0117060) skips the
search and goes straight to confirmation.`,
		Example: `  moviegrabber search heat
  moviegrabber search --series breaking bad
  moviegrabber search tt0117060 --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := provider.MediaKindMovie
			if series {
				kind = provider.MediaKindSeries
			}
			return runSearch(cmd, opts, kind, args)
		},
	}

	searchCmd.Flags().BoolVarP(&series, "series", "s", false, "Search for a series instead of a movie")
	return searchCmd
}

func runSearch(cmd *cobra.Command, opts *rootOptions, kind provider.MediaKind, args []string) error {
	th := theme.Default()
	notifier := tui.NewNotifier(cmd.OutOrStdout(), th, false)
	logger := opts.newLogger(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForSearch(kind); err != nil {
		notifier.Error(err.Error())
		return &flow.Failure{State: flow.Idle, Err: err}
	}
	store, err := note.NewFS(cfg.VaultPath)
	if err != nil {
		err = &config.ConfigurationError{Message: "vault is not usable", Err: err}
		notifier.Error(err.Error())
		return &flow.Failure{State: flow.Idle, Err: err}
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	omdbOpts := []omdb.Option{omdb.WithHTTPClient(httpClient), omdb.WithLogger(logger.Named("omdb"))}
	if omdbBaseURL != "" {
		omdbOpts = append(omdbOpts, omdb.WithBaseURL(omdbBaseURL))
	}
	metadata, err := omdb.New(cfg.OMDbAPIKey, omdbOpts...)
	if err != nil {
		return err
	}

	ytOpts := []youtube.Option{youtube.WithHTTPClient(httpClient), youtube.WithLogger(logger.Named("youtube"))}
	if youtubeBaseURL != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(youtubeBaseURL))
	}

	flowOpts := []flow.Option{
		flow.WithTrailers(youtube.New(cfg.YouTubeAPIKey, ytOpts...)),
		flow.WithPosterSaver(note.NewPosterSaver(store,
			note.WithPosterHTTPClient(httpClient),
			note.WithPosterLogger(logger.Named("poster")))),
		flow.WithJournal(newLogJournal(store, logger)),
		flow.WithLogger(logger.Named("flow")),
		flow.WithObserver(func(from, to flow.State) {
			logger.Debug("state", "from", from, "to", to)
		}),
	}
	// New returns nil without a key; a nil *PosterFinder must not become a
	// non-nil interface.
	if finder := tmdb.New(cfg.TMDBAPIKey, tmdb.WithLogger(logger.Named("tmdb"))); finder != nil {
		flowOpts = append(flowOpts, flow.WithPosterSource(finder))
	}

	prompter := tui.NewPrompter(
		tui.WithTheme(th),
		tui.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		tui.WithAssumeYes(opts.yes),
		tui.WithOverwrite(opts.overwrite),
	)
	f := flow.New(cfg, store, metadata, prompter, notifier, flowOpts...)

	if err := log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays); err != nil {
		logger.Warn("log cleanup failed", "error", err)
	}
	if err := log.StartSession("search", sessionArgs(kind, args), store.Root()); err != nil {
		logger.Warn("could not start log session", "error", err)
	}
	defer func() {
		if err := log.EndSession(); err != nil {
			logger.Warn("could not write log session", "error", err)
		}
	}()

	out, err := f.Run(cmd.Context(), strings.Join(args, " "), kind)
	if err != nil || out == nil {
		return err
	}

	if cfg.SwitchToCreatedNote {
		abs, err := store.Abs(out.Path)
		if err == nil {
			err = openInEditor(abs)
		}
		if err != nil {
			notifier.Warn(fmt.Sprintf("Could not open %s: %v", out.Path, err))
		}
	}
	return nil
}

func sessionArgs(kind provider.MediaKind, args []string) []string {
	out := append([]string{}, args...)
	if kind == provider.MediaKindSeries {
		out = append(out, "--series")
	}
	return out
}
