package template

import (
	"strings"
)

// illegalTitleChars cannot appear in vault file names or bare frontmatter values.
const illegalTitleChars = `/\?%*:|"<>`

// SanitizeTitle strips illegal characters and collapses the whitespace left
// behind, e.g. "Mission: Impossible" becomes "Mission Impossible".
func SanitizeTitle(title string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalTitleChars, r) {
			return -1
		}
		return r
	}, title)
	return strings.Join(strings.Fields(stripped), " ")
}

// FileName fills format with src and sanitizes the result into a note file
// name with the .md extension. It returns "" when nothing usable remains.
func FileName(format string, src FieldSource) (string, []string) {
	if strings.TrimSpace(format) == "" {
		format = DefaultFileNameFormat
	}
	res := Fill(format, src)
	name := SanitizeTitle(res.Text)
	if name == "" {
		return "", res.Unresolved
	}
	return name + ".md", res.Unresolved
}
