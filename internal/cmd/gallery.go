package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Digital-Shane/moviegrabber/internal/gallery"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/spf13/cobra"
)

const defaultGalleryWidth = 100

func newGalleryCmd(opts *rootOptions) *cobra.Command {
	var (
		series bool
		width  int
		watch  bool
	)

	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Show the notes in the movie or series directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.VaultPath == "" {
				return fmt.Errorf("vault path is not set, use --vault or config set vault_path")
			}
			store, err := note.NewFS(cfg.VaultPath)
			if err != nil {
				return err
			}

			kind := provider.MediaKindMovie
			if series {
				kind = provider.MediaKindSeries
			}
			if width <= 0 {
				width = terminalWidth()
			}
			dir := cfg.Directory(kind)
			th := theme.Default()
			render := func() error {
				cards, err := gallery.Load(store, dir)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), gallery.Render(cards, width, th))
				return nil
			}

			if err := render(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			abs, err := store.Abs(dir)
			if err != nil {
				return err
			}
			logger := opts.newLogger(cmd).Named("gallery")
			return gallery.Watch(cmd.Context(), abs, logger, func() {
				fmt.Fprintln(cmd.OutOrStdout(), th.MutedStyle().Render("Notes changed"))
				if err := render(); err != nil {
					logger.Warn("gallery reload failed", "error", err)
				}
			})
		},
	}

	galleryCmd.Flags().BoolVarP(&series, "series", "s", false, "Show series instead of movies")
	galleryCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when notes in the directory change")
	galleryCmd.Flags().IntVar(&width, "width", 0, "Layout width in columns (defaults to $COLUMNS)")
	return galleryCmd
}

func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return defaultGalleryWidth
}
