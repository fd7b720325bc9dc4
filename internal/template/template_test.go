package template

import (
	"strings"
	"testing"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/google/go-cmp/cmp"
)

func missionImpossible() *provider.Record {
	return &provider.Record{
		Title:    "Mission Impossible",
		Year:     "1996",
		Runtime:  "110 min",
		Genre:    "Action, Adventure,Thriller",
		Director: "Brian De Palma",
		Actors:   "Tom Cruise, Jon Voight, Emmanuelle Béart",
		Plot:     "An American agent must discover and expose the real spy.",
		Country:  "United States",
		Poster:   "https://img/mi.jpg",
		Ratings: []provider.Rating{
			{Source: "Internet Movie Database", Value: "7.1/10"},
			{Source: "Rotten Tomatoes", Value: "66%"},
		},
		ImdbID: "tt0117060",
		Type:   "movie",
	}
}

func TestFill(t *testing.T) {
	tests := []struct {
		name           string
		template       string
		want           string
		wantUnresolved []string
	}{
		{
			name:     "scalar",
			template: "# {{Title}} ({{Year}})",
			want:     "# Mission Impossible (1996)",
		},
		{
			name:     "list_joined",
			template: "actors: [{{Actors}}]",
			want:     "actors: [Tom Cruise, Jon Voight, Emmanuelle Béart]",
		},
		{
			name:     "list_with_prefix_and_suffix",
			template: "{{Genre|[[|]]}}",
			want:     "[[Action]], [[Adventure]], [[Thriller]]",
		},
		{
			name:     "prefix_only",
			template: "{{ Actors | #}}",
			want:     " #Tom Cruise,  #Jon Voight,  #Emmanuelle Béart",
		},
		{
			name:     "ratings",
			template: "{{Ratings|- |}}",
			want:     "- Internet Movie Database: 7.1/10, - Rotten Tomatoes: 66%",
		},
		{
			name:     "escaped_pipe",
			template: `{{Director|\||\|}}`,
			want:     "|Brian De Palma|",
		},
		{
			name:     "pipes_after_second_separator_are_literal",
			template: "{{Year|(|)|x}}",
			want:     "(1996)|x",
		},
		{
			name:           "unknown_field",
			template:       "a {{Nope|x}} b",
			want:           "a {{Nope|x}} b",
			wantUnresolved: []string{"{{Nope|x}}"},
		},
		{
			name:           "empty_field",
			template:       "{{Awards}}",
			want:           "{{Awards}}",
			wantUnresolved: []string{"{{Awards}}"},
		},
		{
			name:           "empty_token",
			template:       "{{}}",
			want:           "{{}}",
			wantUnresolved: []string{"{{}}"},
		},
		{
			name:           "one_warning_per_occurrence",
			template:       "{{DVD}} {{Title}} {{DVD}}",
			want:           "{{DVD}} Mission Impossible {{DVD}}",
			wantUnresolved: []string{"{{DVD}}", "{{DVD}}"},
		},
		{
			name:     "no_tokens",
			template: "plain text { not a token }",
			want:     "plain text { not a token }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fill(tt.template, missionImpossible())
			if got.Text != tt.want {
				t.Errorf("Fill(%q).Text = %q, want %q", tt.template, got.Text, tt.want)
			}
			if diff := cmp.Diff(tt.wantUnresolved, got.Unresolved); diff != "" {
				t.Errorf("Fill(%q).Unresolved mismatch (-want +got):\n%s", tt.template, diff)
			}
		})
	}
}

func TestFillCaseInsensitive(t *testing.T) {
	rec := missionImpossible()
	want := Fill("{{Title}}", rec).Text
	for _, tmpl := range []string{"{{TITLE}}", "{{title}}", "{{ tItLe }}"} {
		if got := Fill(tmpl, rec).Text; got != want {
			t.Errorf("Fill(%q) = %q, want %q", tmpl, got, want)
		}
	}
	if got := Fill("{{IMDBID}}", rec).Text; got != "tt0117060" {
		t.Errorf("Fill({{IMDBID}}) = %q", got)
	}
}

func TestFillIdempotentWhenResolved(t *testing.T) {
	rec := missionImpossible()
	once := Fill(DefaultTemplate, rec)
	if len(once.Unresolved) != 1 || once.Unresolved[0] != "{{YoutubeEmbed}}" {
		t.Fatalf("unexpected unresolved tokens: %v", once.Unresolved)
	}

	rec.YoutubeEmbed = "<iframe></iframe>"
	once = Fill(DefaultTemplate, rec)
	if len(once.Unresolved) != 0 {
		t.Fatalf("unexpected unresolved tokens: %v", once.Unresolved)
	}
	twice := Fill(once.Text, rec)
	if twice.Text != once.Text {
		t.Errorf("Fill is not idempotent:\n%s\n---\n%s", once.Text, twice.Text)
	}
}

func TestFillDefaultTemplate(t *testing.T) {
	got := Fill(DefaultTemplate, missionImpossible()).Text
	wantPrefix := "---\ntype: movie\ncountry: United States\ntitle: Mission Impossible\nyear: 1996\ndirector: Brian De Palma\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("default template output starts with:\n%s\nwant prefix:\n%s", got, wantPrefix)
	}
	if !strings.Contains(got, "genre: [Action, Adventure, Thriller]\n") {
		t.Errorf("genre line missing from:\n%s", got)
	}
	if !strings.HasSuffix(got, "---\nAn American agent must discover and expose the real spy.\n") {
		t.Errorf("plot body missing from:\n%s", got)
	}
}

func TestTokensAndUnknown(t *testing.T) {
	tmpl := `{{ Title }} {{Genre|#|}} {{Bogus}} {{Ratings|a\|b}}`

	want := []Token{
		{Raw: "{{ Title }}", Field: "Title"},
		{Raw: "{{Genre|#|}}", Field: "Genre", Prefix: "#"},
		{Raw: "{{Bogus}}", Field: "Bogus"},
		{Raw: `{{Ratings|a\|b}}`, Field: "Ratings", Prefix: "a|b"},
	}
	if diff := cmp.Diff(want, Tokens(tmpl)); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"{{Bogus}}"}, Unknown(tmpl)); diff != "" {
		t.Errorf("Unknown() mismatch (-want +got):\n%s", diff)
	}
}
