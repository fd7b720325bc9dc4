// Package template fills note templates with metadata record fields.
//
// A token has the form {{ name | prefix | suffix }}. Prefix and suffix are
// optional and may contain a literal pipe written as \|. Each item of the
// field's value is wrapped in prefix and suffix and the items are joined
// with ", ". Tokens that cannot be resolved stay in the output verbatim.
package template

import (
	"regexp"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
)

// FieldSource resolves a field name case-insensitively.
// *provider.Record satisfies it.
type FieldSource interface {
	Field(name string) (provider.Value, bool)
}

// Token is one parsed {{...}} placeholder.
type Token struct {
	Raw    string
	Field  string
	Prefix string
	Suffix string
}

// Result is the output of Fill.
type Result struct {
	Text string
	// Unresolved holds the raw text of every token left in Text, once per
	// occurrence.
	Unresolved []string
}

var (
	tokenPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
	listSplit    = regexp.MustCompile(`,\s*`)
)

// Fill replaces every token in tmpl with the matching field of src.
func Fill(tmpl string, src FieldSource) Result {
	var unresolved []string

	text := tokenPattern.ReplaceAllStringFunc(tmpl, func(raw string) string {
		tok := parseToken(raw)
		items := resolve(src, tok.Field)
		if len(items) == 0 {
			unresolved = append(unresolved, raw)
			return raw
		}

		wrapped := make([]string, len(items))
		for i, item := range items {
			wrapped[i] = tok.Prefix + item + tok.Suffix
		}
		return strings.Join(wrapped, ", ")
	})

	return Result{Text: text, Unresolved: unresolved}
}

// Tokens returns the tokens of tmpl in order of appearance.
func Tokens(tmpl string) []Token {
	matches := tokenPattern.FindAllString(tmpl, -1)
	tokens := make([]Token, 0, len(matches))
	for _, raw := range matches {
		tokens = append(tokens, parseToken(raw))
	}
	return tokens
}

// Unknown returns the tokens of tmpl whose field name is not a record field.
func Unknown(tmpl string) []string {
	var out []string
	for _, tok := range Tokens(tmpl) {
		if _, ok := provider.LookupField(tok.Field); !ok {
			out = append(out, tok.Raw)
		}
	}
	return out
}

// parseToken splits the body of raw on the first two unescaped pipes.
func parseToken(raw string) Token {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "{{"), "}}")

	parts := make([]string, 0, 3)
	var cur strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && body[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if c == '|' && len(parts) < 2 {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	parts = append(parts, cur.String())

	tok := Token{Raw: raw, Field: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		tok.Prefix = parts[1]
	}
	if len(parts) > 2 {
		tok.Suffix = parts[2]
	}
	return tok
}

// resolve expands the named field into its rendered items.
func resolve(src FieldSource, name string) []string {
	if src == nil || name == "" {
		return nil
	}
	v, ok := src.Field(name)
	if !ok || v.Empty() {
		return nil
	}

	switch v.Kind {
	case provider.FieldRatings:
		items := make([]string, 0, len(v.Ratings))
		for _, r := range v.Ratings {
			items = append(items, r.Source+": "+r.Value)
		}
		return items
	case provider.FieldList:
		var items []string
		for _, item := range listSplit.Split(strings.TrimSpace(v.Text), -1) {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	default:
		return []string{strings.TrimSpace(v.Text)}
	}
}
