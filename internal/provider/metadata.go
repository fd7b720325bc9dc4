package provider

import (
	"strconv"
	"strings"
)

// Rating is one entry of the multi-source ratings list.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Record is the full metadata fetched for a single title. Values the
// provider reports as "N/A" are stored empty.
type Record struct {
	Title        string
	Year         string
	Rated        string
	Released     string
	Runtime      string
	Genre        string
	Director     string
	Writer       string
	Actors       string
	Plot         string
	Language     string
	Country      string
	Awards       string
	Poster       string
	Ratings      []Rating
	Metascore    string
	ImdbRating   string
	ImdbVotes    string
	ImdbID       string
	Type         string
	DVD          string
	BoxOffice    string
	Production   string
	Website      string
	TotalSeasons string

	// Filled in by the note flow, not by the metadata provider.
	YoutubeEmbed string
	PosterLocal  string
}

// FieldKind tells the template engine how a field expands into items.
type FieldKind int

const (
	// FieldScalar is a single value.
	FieldScalar FieldKind = iota
	// FieldList is a comma separated list (actors, genres, ...).
	FieldList
	// FieldRatings is the list of {Source, Value} pairs.
	FieldRatings
)

// Value is a resolved field.
type Value struct {
	Kind    FieldKind
	Text    string
	Ratings []Rating
}

// Empty reports whether the value would render to nothing.
func (v Value) Empty() bool {
	if v.Kind == FieldRatings {
		return len(v.Ratings) == 0
	}
	return strings.TrimSpace(v.Text) == ""
}

// FieldSpec describes one template-addressable field of a Record.
type FieldSpec struct {
	Name string
	Kind FieldKind
	get  func(*Record) string
}

var recordFields = []FieldSpec{
	{Name: "Title", get: func(r *Record) string { return r.Title }},
	{Name: "Year", get: func(r *Record) string { return r.Year }},
	{Name: "Rated", get: func(r *Record) string { return r.Rated }},
	{Name: "Released", get: func(r *Record) string { return r.Released }},
	{Name: "Runtime", get: func(r *Record) string { return r.Runtime }},
	{Name: "Genre", Kind: FieldList, get: func(r *Record) string { return r.Genre }},
	{Name: "Director", Kind: FieldList, get: func(r *Record) string { return r.Director }},
	{Name: "Writer", Kind: FieldList, get: func(r *Record) string { return r.Writer }},
	{Name: "Actors", Kind: FieldList, get: func(r *Record) string { return r.Actors }},
	{Name: "Plot", get: func(r *Record) string { return r.Plot }},
	{Name: "Language", Kind: FieldList, get: func(r *Record) string { return r.Language }},
	{Name: "Country", Kind: FieldList, get: func(r *Record) string { return r.Country }},
	{Name: "Awards", get: func(r *Record) string { return r.Awards }},
	{Name: "Poster", get: func(r *Record) string { return r.Poster }},
	{Name: "Ratings", Kind: FieldRatings},
	{Name: "Metascore", get: func(r *Record) string { return r.Metascore }},
	{Name: "imdbRating", get: func(r *Record) string { return r.ImdbRating }},
	{Name: "imdbVotes", get: func(r *Record) string { return r.ImdbVotes }},
	{Name: "imdbID", get: func(r *Record) string { return r.ImdbID }},
	{Name: "Type", get: func(r *Record) string { return r.Type }},
	{Name: "DVD", get: func(r *Record) string { return r.DVD }},
	{Name: "BoxOffice", get: func(r *Record) string { return r.BoxOffice }},
	{Name: "Production", get: func(r *Record) string { return r.Production }},
	{Name: "Website", get: func(r *Record) string { return r.Website }},
	{Name: "totalSeasons", get: func(r *Record) string { return r.TotalSeasons }},
	{Name: "YoutubeEmbed", get: func(r *Record) string { return r.YoutubeEmbed }},
	{Name: "PosterLocal", get: func(r *Record) string { return r.PosterLocal }},
}

// fieldIndex maps the lowercase spelling of every field to its FieldSpec.
var fieldIndex = func() map[string]FieldSpec {
	index := make(map[string]FieldSpec, len(recordFields))
	for _, f := range recordFields {
		index[strings.ToLower(f.Name)] = f
	}
	return index
}()

// Fields returns the canonical field list in declaration order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(recordFields))
	copy(out, recordFields)
	return out
}

// LookupField resolves a field name case-insensitively.
func LookupField(name string) (FieldSpec, bool) {
	f, ok := fieldIndex[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Field returns the value of the named field. The boolean is false for names
// that are not part of the record.
func (r *Record) Field(name string) (Value, bool) {
	spec, ok := LookupField(name)
	if !ok || r == nil {
		return Value{}, false
	}
	if spec.Kind == FieldRatings {
		return Value{Kind: FieldRatings, Ratings: r.Ratings}, true
	}
	return Value{Kind: spec.Kind, Text: spec.get(r)}, true
}

// YearNumber returns the first year in Year as an integer, or 0.
func (r *Record) YearNumber() int {
	return ParseYear(r.Year)
}

// ParseYear extracts the leading four digit year from values such as
// "1996" or "2008–2013".
func ParseYear(value string) int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return 0
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil {
		return 0
	}
	return year
}
