package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// MediaKind represents the kind of title a search is restricted to
type MediaKind string

const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// ParseMediaKind maps user input onto a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "movie", "movies":
		return MediaKindMovie, nil
	case "series", "show", "shows", "tv":
		return MediaKindSeries, nil
	default:
		return "", fmt.Errorf("unknown media kind: %s", value)
	}
}

// PlotLength controls how much of the plot the metadata provider returns
type PlotLength string

const (
	PlotShort PlotLength = "short"
	PlotFull  PlotLength = "full"
)

// SearchResultItem is a single candidate returned by a title search.
type SearchResultItem struct {
	Title      string
	Year       int
	ExternalID string
	Kind       MediaKind
	PosterURL  string
}

// Label renders the item the way it is shown in prompts, e.g. "Heat (1995)".
func (i SearchResultItem) Label() string {
	if i.Title == "" {
		return i.ExternalID
	}
	if i.Year > 0 {
		return fmt.Sprintf("%s (%d)", i.Title, i.Year)
	}
	return i.Title
}

var externalIDPattern = regexp.MustCompile(`^(?:(?:ch|co|ev|nm|tt)\d{1,8}|ev\d{1,8}/\d{4}(?:-\d)?)$`)

// IsExternalID reports whether query is a provider identifier (e.g. tt0117060)
// rather than a title.
func IsExternalID(query string) bool {
	return externalIDPattern.MatchString(strings.TrimSpace(query))
}
