// Package gallery lists the notes of a kind directory as cards built from
// their frontmatter.
package gallery

import (
	"bufio"
	"fmt"
	"path"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/note"
	"gopkg.in/yaml.v3"
)

// Card is the gallery view of one note.
type Card struct {
	Path    string
	Title   string
	Year    string
	Country string
	Length  string
	Poster  string
	Type    string
}

// Load reads every note directly inside dir. Notes without frontmatter are
// skipped. A missing title falls back to the file name.
func Load(store note.Store, dir string) ([]Card, error) {
	if !store.IsDir(dir) {
		return nil, fmt.Errorf("gallery: directory %q does not exist in the vault", dir)
	}
	paths, err := store.List(dir)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, len(paths))
	for _, p := range paths {
		content, err := store.Read(p)
		if err != nil {
			return nil, err
		}
		fm, ok := Frontmatter(content)
		if !ok {
			continue
		}
		cards = append(cards, cardFrom(p, fm))
	}
	return cards, nil
}

func cardFrom(p string, fm map[string]any) Card {
	c := Card{
		Path:    p,
		Title:   field(fm, "title"),
		Year:    field(fm, "year"),
		Country: field(fm, "country"),
		Length:  field(fm, "length"),
		Poster:  field(fm, "poster"),
		Type:    field(fm, "type"),
	}
	if c.Title == "" {
		c.Title = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	return c
}

// Frontmatter parses the YAML block between the leading --- lines. Notes
// whose block is not valid YAML, for example because a template token was
// left unresolved, fall back to reading plain "key: value" lines.
func Frontmatter(content string) (map[string]any, bool) {
	const delim = "---"
	trimmed := strings.TrimLeft(content, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return nil, false
	}
	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, false
	}
	block := rest[:idx]

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err == nil {
		if fm == nil {
			fm = map[string]any{}
		}
		return fm, true
	}
	return plainFrontmatter(block), true
}

func plainFrontmatter(block string) map[string]any {
	fm := map[string]any{}
	sc := bufio.NewScanner(strings.NewReader(block))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" || strings.HasPrefix(k, "#") {
			continue
		}
		fm[k] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return fm
}

// field renders a frontmatter value as text; lists are joined with ", ".
func field(fm map[string]any, name string) string {
	v, ok := fm[name]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if item != nil {
				parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
