package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/hashicorp/go-hclog"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"

	// ImageBaseURL prefixes TMDB poster paths.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Client is the part of *tmdb.TMDb used for poster lookups.
type Client interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
}

// PosterFinder finds posters on TMDB when OMDb has none.
type PosterFinder struct {
	client   Client
	language string
	logger   hclog.Logger
}

// Option configures a PosterFinder.
type Option func(*PosterFinder)

// WithClient replaces the TMDB client (useful for tests).
func WithClient(c Client) Option {
	return func(p *PosterFinder) {
		p.client = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l hclog.Logger) Option {
	return func(p *PosterFinder) {
		p.logger = l
	}
}

// New creates a PosterFinder. It returns nil when apiKey is empty and no
// client was supplied, so callers can treat the fallback as disabled.
func New(apiKey string, opts ...Option) *PosterFinder {
	p := &PosterFinder{
		language: "en-US",
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			return nil
		}
		p.client = tmdb.Init(tmdb.Config{APIKey: apiKey})
	}
	return p
}

// PosterURL returns a poster image URL for the title. Candidates from the
// matching year are preferred over the first result.
func (p *PosterFinder) PosterURL(ctx context.Context, title string, year int, kind provider.MediaKind) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &provider.ProviderError{Provider: providerName, Code: provider.CodeInvalidRequest, Message: "poster lookup requires a title"}
	}
	// go-tmdb takes no context, so cancellation is only honored up front.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	options := map[string]string{"language": p.language}

	var (
		candidates []candidate
		err        error
	)
	if kind == provider.MediaKindSeries {
		if year > 0 {
			options["first_air_date_year"] = strconv.Itoa(year)
		}
		candidates, err = p.searchSeries(title, options)
	} else {
		if year > 0 {
			options["year"] = strconv.Itoa(year)
		}
		candidates, err = p.searchMovies(title, options)
	}
	if err != nil {
		return "", mapError(err)
	}

	path := pickPoster(candidates, year)
	if path == "" {
		return "", provider.NotFound(providerName, fmt.Sprintf("no poster found for %s", title))
	}
	p.logger.Debug("tmdb poster found", "title", title, "path", path)
	return ImageBaseURL + path, nil
}

type candidate struct {
	date       string
	posterPath string
}

func (p *PosterFinder) searchMovies(title string, options map[string]string) ([]candidate, error) {
	results, err := p.client.SearchMovie(title, options)
	if err != nil || results == nil {
		return nil, err
	}
	out := make([]candidate, 0, len(results.Results))
	for _, m := range results.Results {
		out = append(out, candidate{date: m.ReleaseDate, posterPath: m.PosterPath})
	}
	return out, nil
}

func (p *PosterFinder) searchSeries(title string, options map[string]string) ([]candidate, error) {
	results, err := p.client.SearchTv(title, options)
	if err != nil || results == nil {
		return nil, err
	}
	out := make([]candidate, 0, len(results.Results))
	for _, s := range results.Results {
		out = append(out, candidate{date: s.FirstAirDate, posterPath: s.PosterPath})
	}
	return out, nil
}

func pickPoster(candidates []candidate, year int) string {
	if year > 0 {
		for _, c := range candidates {
			if c.posterPath != "" && provider.ParseYear(c.date) == year {
				return c.posterPath
			}
		}
	}
	for _, c := range candidates {
		if c.posterPath != "" {
			return c.posterPath
		}
	}
	return ""
}

// mapError maps go-tmdb errors, which only carry text, to provider errors.
func mapError(err error) error {
	msg := strings.ToLower(err.Error())
	code := provider.CodeTransport
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "404"), strings.Contains(msg, "429"):
		code = provider.CodeHTTPStatus
	case strings.Contains(msg, "invalid character"), strings.Contains(msg, "unmarshal"):
		code = provider.CodeDecode
	}
	return &provider.ProviderError{
		Provider: providerName,
		Code:     code,
		Message:  "TMDB error: " + err.Error(),
		Err:      err,
	}
}
