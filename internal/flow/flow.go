// Package flow drives a single note creation: query, candidate selection,
// confirmation and materialization. It talks to the user only through the
// Prompter and Notifier interfaces so it runs the same behind a terminal UI
// or in tests.
package flow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/config"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/template"
	"github.com/hashicorp/go-hclog"
)

// ErrCancelled is returned by a Prompter when the user backs out.
var ErrCancelled = errors.New("cancelled")

// Prompter asks the user for the choices the flow needs.
type Prompter interface {
	Query(ctx context.Context, kind provider.MediaKind) (string, error)
	Choose(ctx context.Context, items []provider.SearchResultItem) (provider.SearchResultItem, error)
	ConfirmCreate(ctx context.Context, item provider.SearchResultItem) (bool, error)
	ConfirmOverwrite(ctx context.Context, path string) (bool, error)
}

// Notifier shows transient messages.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// MetadataClient searches and fetches titles.
type MetadataClient interface {
	Search(ctx context.Context, query string, kind provider.MediaKind) ([]provider.SearchResultItem, error)
	FetchByID(ctx context.Context, id string, plot provider.PlotLength) (*provider.Record, error)
}

// TrailerSource returns an embeddable trailer, or "" when there is none.
type TrailerSource interface {
	FetchTrailerEmbed(ctx context.Context, title string, year int) string
}

// PosterSource finds a poster URL when the metadata has none.
type PosterSource interface {
	PosterURL(ctx context.Context, title string, year int, kind provider.MediaKind) (string, error)
}

// PosterSaver stores a poster image in the vault and returns its vault path.
type PosterSaver interface {
	Save(ctx context.Context, posterURL, dir, name string) (string, error)
}

// Journal records the writes of a run so they can be undone. Paths are
// vault paths.
type Journal interface {
	Backup(path string) (string, error)
	Created(path, content string, err error)
	Overwritten(path, backup, content string, err error)
	PosterSaved(path, backup string, err error)
}

type nopJournal struct{}

func (nopJournal) Backup(string) (string, error) { return "", nil }
func (nopJournal) Created(string, string, error) {}
func (nopJournal) Overwritten(string, string, string, error) {}
func (nopJournal) PosterSaved(string, string, error) {}

// Failure is returned once a terminal failure has been shown to the user.
type Failure struct {
	State State
	Err   error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome describes the note written by a run.
type Outcome struct {
	Path        string
	Overwritten bool
	Record      *provider.Record
	// Unresolved holds every template token that could not be filled.
	Unresolved []string
}

// Flow runs note creations against one vault.
type Flow struct {
	cfg      *config.Config
	store    note.Store
	metadata MetadataClient
	prompter Prompter
	notifier Notifier

	trailers TrailerSource
	posters  PosterSource
	saver    PosterSaver
	journal  Journal
	logger   hclog.Logger
	observer func(from, to State)

	state State
}

// Option configures a Flow.
type Option func(*Flow)

// WithTrailers enables trailer lookup.
func WithTrailers(t TrailerSource) Option {
	return func(f *Flow) {
		f.trailers = t
	}
}

// WithPosterSource enables the poster fallback.
func WithPosterSource(p PosterSource) Option {
	return func(f *Flow) {
		f.posters = p
	}
}

// WithPosterSaver enables poster downloads when the configuration asks for them.
func WithPosterSaver(s PosterSaver) Option {
	return func(f *Flow) {
		f.saver = s
	}
}

// WithJournal records writes for undo.
func WithJournal(j Journal) Option {
	return func(f *Flow) {
		f.journal = j
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l hclog.Logger) Option {
	return func(f *Flow) {
		f.logger = l
	}
}

// WithObserver is called on every state change.
func WithObserver(fn func(from, to State)) Option {
	return func(f *Flow) {
		f.observer = fn
	}
}

// New creates a Flow. cfg is read, never modified.
func New(cfg *config.Config, store note.Store, metadata MetadataClient, prompter Prompter, notifier Notifier, opts ...Option) *Flow {
	f := &Flow{
		cfg:      cfg,
		store:    store,
		metadata: metadata,
		prompter: prompter,
		notifier: notifier,
		journal:  nopJournal{},
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// Run creates a note for query. An empty query is asked for. Not-found
// results and cancellations are reported to the user and return nil, nil.
// Every other failure is reported and returned as a *Failure. The flow is
// Idle again when Run returns.
func (f *Flow) Run(ctx context.Context, query string, kind provider.MediaKind) (*Outcome, error) {
	f.state = Idle
	defer f.transition(Idle)

	out, err := f.run(ctx, query, kind)
	if err == nil {
		return out, nil
	}

	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		f.notifier.Info("Cancelled, no note was created")
		return nil, nil
	case provider.IsNotFound(err):
		f.transition(NotFound)
		f.notifier.Info(describe(err))
		return nil, nil
	case provider.IsTransport(err):
		f.notifier.Warn(describe(err))
	default:
		f.notifier.Error(describe(err))
	}
	return nil, &Failure{State: f.state, Err: err}
}

func (f *Flow) run(ctx context.Context, query string, kind provider.MediaKind) (*Outcome, error) {
	if err := f.cfg.ValidateForSearch(kind); err != nil {
		return nil, err
	}
	dir := f.cfg.Directory(kind)
	if !f.store.IsDir(dir) {
		return nil, &config.ConfigurationError{Message: fmt.Sprintf("directory %q does not exist in the vault", dir)}
	}
	tmpl, err := f.loadTemplate(kind)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if query, err = f.prompter.Query(ctx, kind); err != nil {
			return nil, err
		}
		if query = strings.TrimSpace(query); query == "" {
			return nil, ErrCancelled
		}
	}

	f.transition(Searching)
	rec, err := f.selectRecord(ctx, query, kind)
	if err != nil {
		return nil, err
	}

	f.transition(Creating)
	return f.create(ctx, rec, kind, dir, tmpl)
}

// selectRecord resolves query to a confirmed record. An IMDb ID is
// confirmed before anything is fetched; a title search is confirmed after
// the chosen candidate was fetched.
func (f *Flow) selectRecord(ctx context.Context, query string, kind provider.MediaKind) (*provider.Record, error) {
	if provider.IsExternalID(query) {
		f.transition(Confirming)
		item := provider.SearchResultItem{ExternalID: query, Kind: kind}
		if err := f.confirm(ctx, item); err != nil {
			return nil, err
		}
		return f.metadata.FetchByID(ctx, query, f.cfg.Plot())
	}

	items, err := f.metadata.Search(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, provider.NotFound("search", fmt.Sprintf("found nothing for %s", query))
	}

	f.transition(Disambiguating)
	choice := items[0]
	if len(items) > 1 {
		if choice, err = f.prompter.Choose(ctx, items); err != nil {
			return nil, err
		}
	}
	rec, err := f.metadata.FetchByID(ctx, choice.ExternalID, f.cfg.Plot())
	if err != nil {
		return nil, err
	}

	f.transition(Confirming)
	item := provider.SearchResultItem{
		Title:      rec.Title,
		Year:       rec.YearNumber(),
		ExternalID: choice.ExternalID,
		Kind:       choice.Kind,
		PosterURL:  rec.Poster,
	}
	if err := f.confirm(ctx, item); err != nil {
		return nil, err
	}
	return rec, nil
}

func (f *Flow) confirm(ctx context.Context, item provider.SearchResultItem) error {
	ok, err := f.prompter.ConfirmCreate(ctx, item)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

func (f *Flow) create(ctx context.Context, rec *provider.Record, kind provider.MediaKind, dir, tmpl string) (*Outcome, error) {
	rec.Title = template.SanitizeTitle(rec.Title)
	if f.trailers != nil {
		rec.YoutubeEmbed = f.trailers.FetchTrailerEmbed(ctx, rec.Title, rec.YearNumber())
	}

	name, unresolved := template.FileName(f.cfg.FileNameFormat(kind), rec)
	if name == "" {
		name = fallbackName(rec)
	}
	target := path.Join(dir, name)

	existing, err := f.store.GetByPath(target)
	if err != nil {
		return nil, err
	}
	backup := ""
	if existing != nil {
		ok, err := f.prompter.ConfirmOverwrite(ctx, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
		if backup, err = f.journal.Backup(target); err != nil {
			f.logger.Warn("backup failed, overwrite cannot be undone", "path", target, "error", err)
		}
	}

	// The poster is only touched once the note itself is going to be written.
	f.attachPoster(ctx, rec, kind, strings.TrimSuffix(name, ".md"))

	filled := template.Fill(tmpl, rec)
	unresolved = append(unresolved, filled.Unresolved...)

	doc, err := note.Materialize(f.store, target, filled.Text, existing)
	content := ""
	if doc != nil {
		content = doc.Content
	}
	if existing != nil {
		f.journal.Overwritten(target, backup, content, err)
	} else {
		f.journal.Created(target, content, err)
	}
	if err != nil {
		return nil, err
	}

	for _, raw := range unresolved {
		f.notifier.Warn(fmt.Sprintf("Could not resolve %s", raw))
	}
	if existing != nil {
		f.notifier.Info(fmt.Sprintf("Updated %s", doc.Path))
	} else {
		f.notifier.Info(fmt.Sprintf("Created %s", doc.Path))
	}

	return &Outcome{
		Path:        doc.Path,
		Overwritten: existing != nil,
		Record:      rec,
		Unresolved:  unresolved,
	}, nil
}

// attachPoster fills in a missing poster URL and, when enabled, downloads
// the image so PosterLocal can be used by the template. Failures only warn.
func (f *Flow) attachPoster(ctx context.Context, rec *provider.Record, kind provider.MediaKind, name string) {
	if rec.Poster == "" && f.posters != nil {
		url, err := f.posters.PosterURL(ctx, rec.Title, rec.YearNumber(), kind)
		switch {
		case err == nil:
			rec.Poster = url
		case !provider.IsNotFound(err):
			f.logger.Warn("poster lookup failed", "title", rec.Title, "error", err)
		}
	}

	if !f.cfg.SavePoster || f.saver == nil || rec.Poster == "" {
		return
	}
	target := note.PosterPath(f.cfg.PosterDirectory, name, rec.Poster)
	backup, err := f.journal.Backup(target)
	if err != nil {
		f.logger.Warn("poster backup failed", "path", target, "error", err)
	}
	saved, err := f.saver.Save(ctx, rec.Poster, f.cfg.PosterDirectory, name)
	f.journal.PosterSaved(target, backup, err)
	if err != nil {
		f.notifier.Warn(fmt.Sprintf("Could not save poster: %s", describe(err)))
		return
	}
	rec.PosterLocal = saved
}

func (f *Flow) loadTemplate(kind provider.MediaKind) (string, error) {
	p := f.cfg.TemplatePath(kind)
	if p == "" {
		return template.DefaultTemplate, nil
	}
	if !f.store.Exists(p) {
		return "", &config.ConfigurationError{Message: fmt.Sprintf("template file %s not found", p)}
	}
	content, err := f.store.Read(p)
	if err != nil {
		return "", &config.ConfigurationError{Message: fmt.Sprintf("cannot read template file %s", p), Err: err}
	}
	return content, nil
}

func (f *Flow) transition(to State) {
	from := f.state
	if from == to {
		return
	}
	if !canTransition(from, to) {
		f.logger.Warn("unexpected state transition", "from", from, "to", to)
	}
	f.state = to
	f.logger.Debug("state changed", "from", from, "to", to)
	if f.observer != nil {
		f.observer(from, to)
	}
}

func fallbackName(rec *provider.Record) string {
	if name := template.SanitizeTitle(rec.Title); name != "" {
		return name + ".md"
	}
	return rec.ImdbID + ".md"
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		switch pe.Code {
		case provider.CodeNotFound:
			return pe.Message
		case provider.CodeTransport:
			if pe.Attempts > 0 {
				return fmt.Sprintf("%s is unreachable, gave up after %d attempts", pe.Provider, pe.Attempts)
			}
			return fmt.Sprintf("%s is unreachable: %s", pe.Provider, pe.Message)
		}
	}
	return err.Error()
}
