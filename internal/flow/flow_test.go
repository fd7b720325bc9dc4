package flow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/moviegrabber/internal/config"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/google/go-cmp/cmp"
)

type fakeMetadata struct {
	items      []provider.SearchResultItem
	records    map[string]*provider.Record
	searchErr  error
	fetchErr   error
	searches   []string
	fetches    []string
	fetchPlots []provider.PlotLength
}

func (m *fakeMetadata) Search(_ context.Context, query string, _ provider.MediaKind) ([]provider.SearchResultItem, error) {
	m.searches = append(m.searches, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.items, nil
}

func (m *fakeMetadata) FetchByID(_ context.Context, id string, plot provider.PlotLength) (*provider.Record, error) {
	m.fetches = append(m.fetches, id)
	m.fetchPlots = append(m.fetchPlots, plot)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, provider.NotFound("omdb", "found no title with id "+id)
	}
	copied := *rec
	return &copied, nil
}

type fakePrompter struct {
	query      string
	choice     int
	create     bool
	overwrite  bool
	err        error
	confirmed  []provider.SearchResultItem
	overwrites []string
	choices    int
}

func (p *fakePrompter) Query(context.Context, provider.MediaKind) (string, error) {
	return p.query, p.err
}

func (p *fakePrompter) Choose(_ context.Context, items []provider.SearchResultItem) (provider.SearchResultItem, error) {
	p.choices++
	if p.err != nil {
		return provider.SearchResultItem{}, p.err
	}
	return items[p.choice], nil
}

func (p *fakePrompter) ConfirmCreate(_ context.Context, item provider.SearchResultItem) (bool, error) {
	p.confirmed = append(p.confirmed, item)
	return p.create, p.err
}

func (p *fakePrompter) ConfirmOverwrite(_ context.Context, path string) (bool, error) {
	p.overwrites = append(p.overwrites, path)
	return p.overwrite, p.err
}

type notice struct {
	level string
	msg   string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Info(msg string)  { n.notices = append(n.notices, notice{"info", msg}) }
func (n *recordingNotifier) Warn(msg string)  { n.notices = append(n.notices, notice{"warn", msg}) }
func (n *recordingNotifier) Error(msg string) { n.notices = append(n.notices, notice{"error", msg}) }

func (n *recordingNotifier) count(level string) int {
	c := 0
	for _, x := range n.notices {
		if x.level == level {
			c++
		}
	}
	return c
}

type fakeTrailers struct {
	embed string
	calls int
}

func (f *fakeTrailers) FetchTrailerEmbed(context.Context, string, int) string {
	f.calls++
	return f.embed
}

type fakePosters struct {
	url string
	err error
}

func (f *fakePosters) PosterURL(context.Context, string, int, provider.MediaKind) (string, error) {
	return f.url, f.err
}

type fakeSaver struct {
	store note.Store
	err   error
	calls int
}

func (f *fakeSaver) Save(_ context.Context, url, dir, name string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	target := note.PosterPath(dir, name, url)
	return target, f.store.WriteBinary(target, []byte("img"))
}

type journalEntry struct {
	op, path, backup string
	failed           bool
}

type fakeJournal struct {
	entries []journalEntry
	backups []string
}

func (j *fakeJournal) Backup(path string) (string, error) {
	j.backups = append(j.backups, path)
	return "backup/" + path, nil
}

func (j *fakeJournal) Created(path, _ string, err error) {
	j.entries = append(j.entries, journalEntry{op: "create", path: path, failed: err != nil})
}

func (j *fakeJournal) Overwritten(path, backup, _ string, err error) {
	j.entries = append(j.entries, journalEntry{op: "overwrite", path: path, backup: backup, failed: err != nil})
}

func (j *fakeJournal) PosterSaved(path, backup string, err error) {
	j.entries = append(j.entries, journalEntry{op: "poster", path: path, backup: backup, failed: err != nil})
}

func missionImpossible() *provider.Record {
	return &provider.Record{
		Title:    "Mission: Impossible",
		Year:     "1996",
		Runtime:  "110 min",
		Genre:    "Action, Adventure, Thriller",
		Director: "Brian De Palma",
		Actors:   "Tom Cruise, Jon Voight, Emmanuelle Béart",
		Plot:     "An American agent must expose the real spy.",
		Country:  "United States",
		Poster:   "https://img.test/mi.jpg",
		ImdbID:   "tt0117060",
		Type:     "movie",
	}
}

type harness struct {
	cfg      *config.Config
	store    *note.FS
	meta     *fakeMetadata
	prompter *fakePrompter
	notifier *recordingNotifier
	journal  *fakeJournal
	states   []State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"Movies", "Series"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := note.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.VaultPath = root
	cfg.OMDbAPIKey = "key"

	return &harness{
		cfg:   cfg,
		store: store,
		meta: &fakeMetadata{
			records: map[string]*provider.Record{"tt0117060": missionImpossible()},
		},
		prompter: &fakePrompter{create: true, overwrite: true},
		notifier: &recordingNotifier{},
		journal:  &fakeJournal{},
	}
}

func (h *harness) flow(opts ...Option) *Flow {
	opts = append([]Option{
		WithJournal(h.journal),
		WithObserver(func(_, to State) { h.states = append(h.states, to) }),
	}, opts...)
	return New(h.cfg, h.store, h.meta, h.prompter, h.notifier, opts...)
}

func TestRunByIDEndToEnd(t *testing.T) {
	h := newHarness(t)
	trailers := &fakeTrailers{embed: `<iframe src="https://www.youtube.com/embed/abc"></iframe>`}
	f := h.flow(WithTrailers(trailers))

	out, err := f.Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out == nil || out.Path != "Movies/Mission Impossible.md" {
		t.Fatalf("Run() outcome = %+v", out)
	}

	if len(h.meta.searches) != 0 {
		t.Errorf("an ID query must not search, got %v", h.meta.searches)
	}
	if diff := cmp.Diff([]string{"tt0117060"}, h.meta.fetches); diff != "" {
		t.Errorf("fetches mismatch (-want +got):\n%s", diff)
	}
	if h.prompter.confirmed[0].ExternalID != "tt0117060" || h.prompter.confirmed[0].Title != "" {
		t.Errorf("ID path should confirm before fetching, confirmed %+v", h.prompter.confirmed)
	}

	content, err := h.store.Read("Movies/Mission Impossible.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(content, "---\ntype: movie\n") {
		t.Errorf("content starts with %q", content[:20])
	}
	if !strings.Contains(content, "title: Mission Impossible\nyear: 1996\n") {
		t.Errorf("content missing title/year:\n%s", content)
	}
	if !strings.Contains(content, "actors: [Tom Cruise, Jon Voight, Emmanuelle Béart]") {
		t.Errorf("actors not joined:\n%s", content)
	}
	if !strings.Contains(content, "trailer_embed: <iframe") {
		t.Errorf("trailer missing:\n%s", content)
	}

	wantStates := []State{Searching, Confirming, Creating, Idle}
	if diff := cmp.Diff(wantStates, h.states); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
	if f.State() != Idle {
		t.Errorf("State() = %v after Run", f.State())
	}
	if diff := cmp.Diff([]journalEntry{{op: "create", path: "Movies/Mission Impossible.md"}}, h.journal.entries, cmp.AllowUnexported(journalEntry{})); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSearchPath(t *testing.T) {
	h := newHarness(t)
	h.meta.items = []provider.SearchResultItem{
		{Title: "Mission: Impossible", Year: 1996, ExternalID: "tt0117060", Kind: provider.MediaKindMovie},
		{Title: "Mission: Impossible II", Year: 2000, ExternalID: "tt0120755", Kind: provider.MediaKindMovie},
	}
	h.cfg.PlotLength = "full"

	out, err := h.flow().Run(context.Background(), "mission impossible", provider.MediaKindMovie)
	if err != nil || out == nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}
	if h.prompter.choices != 1 {
		t.Errorf("Choose called %d times", h.prompter.choices)
	}
	if diff := cmp.Diff([]provider.PlotLength{provider.PlotFull}, h.meta.fetchPlots); diff != "" {
		t.Errorf("plot mismatch (-want +got):\n%s", diff)
	}
	// Search path confirms the fetched record.
	if got := h.prompter.confirmed[0]; got.Title != "Mission: Impossible" || got.Year != 1996 {
		t.Errorf("confirmed %+v", got)
	}
	wantStates := []State{Searching, Disambiguating, Confirming, Creating, Idle}
	if diff := cmp.Diff(wantStates, h.states); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSingleCandidateSkipsChoice(t *testing.T) {
	h := newHarness(t)
	h.meta.items = []provider.SearchResultItem{{Title: "Mission: Impossible", ExternalID: "tt0117060"}}

	if _, err := h.flow().Run(context.Background(), "mission", provider.MediaKindMovie); err != nil {
		t.Fatal(err)
	}
	if h.prompter.choices != 0 {
		t.Errorf("Choose called with a single candidate")
	}
}

func TestRunNotFound(t *testing.T) {
	h := newHarness(t)
	h.meta.searchErr = provider.NotFound("omdb", "found no movie named zzz")

	out, err := h.flow().Run(context.Background(), "zzz", provider.MediaKindMovie)
	if out != nil || err != nil {
		t.Fatalf("Run() = %v, %v; want nil, nil", out, err)
	}
	want := []notice{{"info", "found no movie named zzz"}}
	if diff := cmp.Diff(want, h.notifier.notices, cmp.AllowUnexported(notice{})); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]State{Searching, NotFound, Idle}, h.states); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFailures(t *testing.T) {
	transport := &provider.ProviderError{Provider: "omdb", Code: provider.CodeTransport, Message: "request failed", Attempts: 4}
	httpErr := &provider.ProviderError{Provider: "omdb", Code: provider.CodeHTTPStatus, StatusCode: 401, Message: "HTTP error! Status: 401"}

	tests := []struct {
		name      string
		setup     func(*harness)
		wantLevel string
		wantCalls bool
	}{
		{
			name:      "transport",
			setup:     func(h *harness) { h.meta.fetchErr = transport },
			wantLevel: "warn",
			wantCalls: true,
		},
		{
			name:      "http_status",
			setup:     func(h *harness) { h.meta.fetchErr = httpErr },
			wantLevel: "error",
			wantCalls: true,
		},
		{
			name:      "missing_api_key",
			setup:     func(h *harness) { h.cfg.OMDbAPIKey = "" },
			wantLevel: "error",
		},
		{
			name:      "missing_directory",
			setup:     func(h *harness) { h.cfg.MovieDirectory = "Films" },
			wantLevel: "error",
		},
		{
			name:      "missing_template",
			setup:     func(h *harness) { h.cfg.MovieTemplatePath = "Templates/movie.md" },
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)
			f := h.flow()

			out, err := f.Run(context.Background(), "tt0117060", provider.MediaKindMovie)
			if out != nil {
				t.Errorf("Run() outcome = %+v, want nil", out)
			}
			var failure *Failure
			if !errors.As(err, &failure) {
				t.Fatalf("Run() error = %v, want *Failure", err)
			}
			if h.notifier.count(tt.wantLevel) != 1 {
				t.Errorf("notices = %+v, want one %s", h.notifier.notices, tt.wantLevel)
			}
			if called := len(h.meta.fetches)+len(h.meta.searches) > 0; called != tt.wantCalls {
				t.Errorf("network called = %v, want %v", called, tt.wantCalls)
			}
			if !tt.wantCalls && !config.IsConfigurationError(err) {
				t.Errorf("error = %v, want configuration error", err)
			}
			if f.State() != Idle {
				t.Errorf("State() = %v, want Idle", f.State())
			}
			if files, _ := h.store.List("Movies"); len(files) != 0 {
				t.Errorf("no note should be written, got %v", files)
			}
		})
	}
}

func TestRunDeclined(t *testing.T) {
	h := newHarness(t)
	h.prompter.create = false

	out, err := h.flow().Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if out != nil || err != nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}
	if len(h.meta.fetches) != 0 {
		t.Errorf("declined ID confirmation must not fetch, got %v", h.meta.fetches)
	}
}

func TestRunPromptsForEmptyQuery(t *testing.T) {
	h := newHarness(t)
	h.prompter.query = "tt0117060"

	out, err := h.flow().Run(context.Background(), "  ", provider.MediaKindMovie)
	if err != nil || out == nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}

	h2 := newHarness(t)
	h2.prompter.err = ErrCancelled
	if out, err := h2.flow().Run(context.Background(), "", provider.MediaKindMovie); out != nil || err != nil {
		t.Errorf("cancelled query Run() = %v, %v", out, err)
	}
}

func TestRunOverwritePreservesTail(t *testing.T) {
	h := newHarness(t)
	old := "old body\n" + note.Delimiter + "\nnote-by-user\n"
	if err := h.store.Create("Movies/Mission Impossible.md", old); err != nil {
		t.Fatal(err)
	}

	out, err := h.flow().Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil || out == nil || !out.Overwritten {
		t.Fatalf("Run() = %+v, %v", out, err)
	}
	content, _ := h.store.Read("Movies/Mission Impossible.md")
	if strings.Contains(content, "old body") {
		t.Error("old body should be replaced")
	}
	if !strings.HasSuffix(content, "\n"+note.Delimiter+"\nnote-by-user\n") {
		t.Errorf("preserved tail missing:\n%s", content)
	}
	if diff := cmp.Diff([]string{"Movies/Mission Impossible.md"}, h.prompter.overwrites); diff != "" {
		t.Errorf("overwrite prompts mismatch (-want +got):\n%s", diff)
	}
	want := []journalEntry{{op: "overwrite", path: "Movies/Mission Impossible.md", backup: "backup/Movies/Mission Impossible.md"}}
	if diff := cmp.Diff(want, h.journal.entries, cmp.AllowUnexported(journalEntry{})); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOverwriteDeclined(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Create("Movies/Mission Impossible.md", "mine"); err != nil {
		t.Fatal(err)
	}
	h.prompter.overwrite = false

	if out, err := h.flow().Run(context.Background(), "tt0117060", provider.MediaKindMovie); out != nil || err != nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}
	if content, _ := h.store.Read("Movies/Mission Impossible.md"); content != "mine" {
		t.Errorf("declined overwrite changed the note: %q", content)
	}
}

func TestRunOverwriteDeclinedKeepsPoster(t *testing.T) {
	h := newHarness(t)
	h.cfg.SavePoster = true
	if err := h.store.Create("Movies/Mission Impossible.md", "old note"); err != nil {
		t.Fatal(err)
	}
	if err := h.store.WriteBinary("Posters/Mission Impossible.jpg", []byte("user-poster")); err != nil {
		t.Fatal(err)
	}
	h.prompter.overwrite = false
	saver := &fakeSaver{store: h.store}

	out, err := h.flow(WithPosterSaver(saver)).Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if out != nil || err != nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}
	if saver.calls != 0 {
		t.Errorf("saver called %d times after a declined overwrite", saver.calls)
	}
	data, err := os.ReadFile(filepath.Join(h.store.Root(), "Posters", "Mission Impossible.jpg"))
	if err != nil || string(data) != "user-poster" {
		t.Errorf("poster = %q, %v", data, err)
	}
	if content, _ := h.store.Read("Movies/Mission Impossible.md"); content != "old note" {
		t.Errorf("note = %q", content)
	}
	if len(h.journal.entries) != 0 || len(h.journal.backups) != 0 {
		t.Errorf("journal touched: entries %+v, backups %v", h.journal.entries, h.journal.backups)
	}
}

func TestRunWarnsForUnresolvedTokens(t *testing.T) {
	h := newHarness(t)
	if err := os.MkdirAll(filepath.Join(h.store.Root(), "Templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	tmpl := "# {{title}}\n{{Nope}} {{Awards}} {{Nope}}\n"
	if err := h.store.Create("Templates/movie.md", tmpl); err != nil {
		t.Fatal(err)
	}
	h.cfg.MovieTemplatePath = "Templates/movie.md"

	out, err := h.flow().Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"{{Nope}}", "{{Awards}}", "{{Nope}}"}
	if diff := cmp.Diff(want, out.Unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
	if h.notifier.count("warn") != 3 {
		t.Errorf("want one warning per token, got %+v", h.notifier.notices)
	}
	content, _ := h.store.Read(out.Path)
	if content != "# Mission Impossible\n{{Nope}} {{Awards}} {{Nope}}\n" {
		t.Errorf("content = %q", content)
	}
}

func TestRunSavesPoster(t *testing.T) {
	h := newHarness(t)
	h.cfg.SavePoster = true
	h.cfg.MovieTemplatePath = "movie.md"
	if err := h.store.Create("movie.md", "![[{{PosterLocal}}]]"); err != nil {
		t.Fatal(err)
	}
	saver := &fakeSaver{store: h.store}

	out, err := h.flow(WithPosterSaver(saver)).Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil {
		t.Fatal(err)
	}
	content, _ := h.store.Read(out.Path)
	if content != "![[Posters/Mission Impossible.jpg]]" {
		t.Errorf("content = %q", content)
	}
	if !h.store.Exists("Posters/Mission Impossible.jpg") {
		t.Error("poster not written")
	}
	if h.journal.entries[0].op != "poster" || h.journal.entries[0].path != "Posters/Mission Impossible.jpg" {
		t.Errorf("journal = %+v", h.journal.entries)
	}
}

func TestRunPosterFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.cfg.SavePoster = true
	saver := &fakeSaver{store: h.store, err: fmt.Errorf("boom")}

	out, err := h.flow(WithPosterSaver(saver)).Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil || out == nil {
		t.Fatalf("Run() = %v, %v", out, err)
	}
	if out.Record.PosterLocal != "" {
		t.Errorf("PosterLocal = %q", out.Record.PosterLocal)
	}
}

func TestRunPosterFallback(t *testing.T) {
	h := newHarness(t)
	rec := missionImpossible()
	rec.Poster = ""
	h.meta.records["tt0117060"] = rec

	out, err := h.flow(WithPosterSource(&fakePosters{url: "https://image.tmdb.org/t/p/w500/mi.jpg"})).
		Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil {
		t.Fatal(err)
	}
	if out.Record.Poster != "https://image.tmdb.org/t/p/w500/mi.jpg" {
		t.Errorf("Poster = %q", out.Record.Poster)
	}

	h2 := newHarness(t)
	h2.meta.records["tt0117060"] = rec
	out, err = h2.flow(WithPosterSource(&fakePosters{err: provider.NotFound("tmdb", "none")})).
		Run(context.Background(), "tt0117060", provider.MediaKindMovie)
	if err != nil || out.Record.Poster != "" {
		t.Errorf("Run() = %+v, %v", out, err)
	}
}

func TestRunSeriesUsesSeriesSettings(t *testing.T) {
	h := newHarness(t)
	h.meta.records["tt0903747"] = &provider.Record{Title: "Breaking Bad", Year: "2008–2013", Type: "series", ImdbID: "tt0903747", TotalSeasons: "5"}
	h.cfg.SeriesFileNameFormat = "{{Title}} ({{Year}})"

	out, err := h.flow().Run(context.Background(), "tt0903747", provider.MediaKindSeries)
	if err != nil {
		t.Fatal(err)
	}
	if out.Path != "Series/Breaking Bad (2008–2013).md" {
		t.Errorf("Path = %q", out.Path)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Idle, Searching, true},
		{Searching, Disambiguating, true},
		{Searching, Confirming, true},
		{Disambiguating, Confirming, true},
		{Confirming, Creating, true},
		{Creating, Idle, true},
		{NotFound, Idle, true},
		{Idle, Creating, false},
		{Disambiguating, Creating, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_to_%s", tt.from, tt.to), func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("canTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
