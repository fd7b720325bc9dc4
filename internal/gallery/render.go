package gallery

import (
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	cardWidth  = 34
	minColumns = 1
)

// Render lays cards out in a grid that fits width.
func Render(cards []Card, width int, th theme.Theme) string {
	if len(cards) == 0 {
		return th.MutedStyle().Render("No notes found.") + "\n"
	}

	panel := th.PanelStyle()
	outer := cardWidth + panel.GetHorizontalFrameSize() + th.Spacing().PanelGap
	cols := width / outer
	if cols < minColumns {
		cols = minColumns
	}

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		rendered := make([]string, 0, (end-start)*2)
		for i, c := range cards[start:end] {
			if i > 0 {
				rendered = append(rendered, strings.Repeat(" ", th.Spacing().PanelGap))
			}
			rendered = append(rendered, renderCard(c, th))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func renderCard(c Card, th theme.Theme) string {
	icon := th.Icon("movie")
	if c.Type == "series" {
		icon = th.Icon("series")
	}
	title := fit(icon+" "+c.Title, cardWidth)

	var meta []string
	for _, v := range []string{c.Year, c.Country, c.Length} {
		if v != "" {
			meta = append(meta, v)
		}
	}

	lines := []string{th.PanelTitleStyle().Render(title)}
	if len(meta) > 0 {
		lines = append(lines, fit(strings.Join(meta, " • "), cardWidth))
	}
	if c.Poster != "" {
		lines = append(lines, th.MutedStyle().Render(fit(th.Icon("poster")+" "+c.Poster, cardWidth)))
	}
	lines = append(lines, th.MutedStyle().Render(fit(th.Icon("note")+" "+c.Path, cardWidth)))

	style := th.PanelStyle()
	return style.Width(cardWidth + style.GetHorizontalPadding()).Render(strings.Join(lines, "\n"))
}

// fit truncates s to w display cells.
func fit(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}
