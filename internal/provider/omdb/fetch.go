package omdb

import (
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/omdb"
)

const notAvailable = "N/A"

type searchResponse struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

func (r searchResponse) ok() bool {
	return r.Response == "True"
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

func (s searchItem) toItem(kind provider.MediaKind) provider.SearchResultItem {
	if t := provider.MediaKind(s.Type); t == provider.MediaKindMovie || t == provider.MediaKindSeries {
		kind = t
	}
	return provider.SearchResultItem{
		Title:      s.Title,
		Year:       provider.ParseYear(omdb.FirstYear(s.Year)),
		ExternalID: s.ImdbID,
		Kind:       kind,
		PosterURL:  clean(s.Poster),
	}
}

type titleResponse struct {
	Title        string            `json:"Title"`
	Year         string            `json:"Year"`
	Rated        string            `json:"Rated"`
	Released     string            `json:"Released"`
	Runtime      string            `json:"Runtime"`
	Genre        string            `json:"Genre"`
	Director     string            `json:"Director"`
	Writer       string            `json:"Writer"`
	Actors       string            `json:"Actors"`
	Plot         string            `json:"Plot"`
	Language     string            `json:"Language"`
	Country      string            `json:"Country"`
	Awards       string            `json:"Awards"`
	Poster       string            `json:"Poster"`
	Ratings      []provider.Rating `json:"Ratings"`
	Metascore    string            `json:"Metascore"`
	ImdbRating   string            `json:"imdbRating"`
	ImdbVotes    string            `json:"imdbVotes"`
	ImdbID       string            `json:"imdbID"`
	Type         string            `json:"Type"`
	DVD          string            `json:"DVD"`
	BoxOffice    string            `json:"BoxOffice"`
	Production   string            `json:"Production"`
	Website      string            `json:"Website"`
	TotalSeasons string            `json:"totalSeasons"`
	Response     string            `json:"Response"`
	Error        string            `json:"Error"`
}

func (r titleResponse) ok() bool {
	return r.Response == "True"
}

func (r titleResponse) toRecord() *provider.Record {
	rec := &provider.Record{
		Title:        clean(r.Title),
		Year:         clean(r.Year),
		Rated:        clean(r.Rated),
		Released:     clean(r.Released),
		Runtime:      clean(r.Runtime),
		Genre:        list(r.Genre),
		Director:     list(r.Director),
		Writer:       list(r.Writer),
		Actors:       list(r.Actors),
		Plot:         clean(r.Plot),
		Language:     list(r.Language),
		Country:      list(r.Country),
		Awards:       clean(r.Awards),
		Poster:       clean(r.Poster),
		Metascore:    clean(r.Metascore),
		ImdbRating:   clean(r.ImdbRating),
		ImdbVotes:    clean(r.ImdbVotes),
		ImdbID:       clean(r.ImdbID),
		Type:         clean(r.Type),
		DVD:          clean(r.DVD),
		BoxOffice:    clean(r.BoxOffice),
		Production:   clean(r.Production),
		Website:      clean(r.Website),
		TotalSeasons: clean(r.TotalSeasons),
	}

	if rec.ImdbRating != "" && omdb.ParseRating(rec.ImdbRating) == 0 {
		rec.ImdbRating = ""
	}

	for _, rating := range r.Ratings {
		if clean(rating.Source) == "" || clean(rating.Value) == "" {
			continue
		}
		rec.Ratings = append(rec.Ratings, rating)
	}

	return rec
}

func itemFromRecord(rec *provider.Record, kind provider.MediaKind) provider.SearchResultItem {
	if t := provider.MediaKind(rec.Type); t == provider.MediaKindMovie || t == provider.MediaKindSeries {
		kind = t
	}
	return provider.SearchResultItem{
		Title:      rec.Title,
		Year:       rec.YearNumber(),
		ExternalID: rec.ImdbID,
		Kind:       kind,
		PosterURL:  rec.Poster,
	}
}

// clean trims the value and blanks OMDb's "N/A" placeholder.
func clean(value string) string {
	value = strings.TrimSpace(value)
	if value == notAvailable {
		return ""
	}
	return value
}

// list normalizes a comma separated value to "a, b, c".
func list(value string) string {
	value = clean(value)
	if value == "" {
		return ""
	}
	return strings.Join(omdb.SplitAndTrim(value), ", ")
}
