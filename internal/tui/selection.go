package tui

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const defaultVisibleRows = 10

// SelectionModel lists search candidates. Typing filters the list by title.
type SelectionModel struct {
	items     []provider.SearchResultItem
	visible   []int // indexes into items that match the filter
	filter    []rune
	cursor    int
	offset    int
	width     int
	height    int
	theme     theme.Theme
	chosen    int
	cancelled bool
}

// NewSelectionModel creates a picker over items.
func NewSelectionModel(items []provider.SearchResultItem, th theme.Theme) *SelectionModel {
	m := &SelectionModel{items: items, theme: th, chosen: -1, width: 80}
	m.applyFilter()
	return m
}

func (m *SelectionModel) Init() tea.Cmd {
	return nil
}

func (m *SelectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			if len(m.visible) == 0 {
				return m, nil
			}
			m.chosen = m.visible[m.cursor]
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Erase):
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
				m.applyFilter()
			}
		case key.Matches(msg, keys.Clear):
			m.filter = nil
			m.applyFilter()
		case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			m.filter = append(m.filter, msg.Runes...)
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.filter = append(m.filter, ' ')
			}
			m.applyFilter()
		}
		m.scroll()
	}
	return m, nil
}

// applyFilter keeps the items whose label contains the filter,
// case-insensitively, and resets the cursor.
func (m *SelectionModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(string(m.filter)))
	m.visible = m.visible[:0]
	for i, item := range m.items {
		if needle == "" || strings.Contains(strings.ToLower(item.Label()), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

func (m *SelectionModel) rows() int {
	if m.height <= 0 {
		return defaultVisibleRows
	}
	// title, filter, blank, help
	rows := m.height - 5
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *SelectionModel) scroll() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *SelectionModel) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.PanelTitleStyle().Render(fmt.Sprintf("Select a title (%d of %d)", len(m.visible), len(m.items))))
	b.WriteString("\n")
	b.WriteString(m.theme.MutedStyle().Render("Filter: ") + string(m.filter))
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString(m.theme.MutedStyle().Render("  no title matches the filter"))
		b.WriteString("\n")
	}

	width := m.width - 4
	if width < 10 {
		width = 10
	}
	end := m.offset + m.rows()
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		item := m.items[m.visible[i]]
		label := runewidth.Truncate(m.itemLabel(item), width, "…")
		if i == m.cursor {
			b.WriteString(m.theme.SelectedStyle().Render(m.theme.Icon("cursor") + " " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.MutedStyle().Render(helpLine(keys.Up, keys.Down, keys.Submit, keys.Clear, keys.Cancel)))
	b.WriteString("\n")
	return b.String()
}

func (m *SelectionModel) itemLabel(item provider.SearchResultItem) string {
	icon := m.theme.Icon("movie")
	if item.Kind == provider.MediaKindSeries {
		icon = m.theme.Icon("series")
	}
	return fmt.Sprintf("%s %s  %s", icon, item.Label(), item.ExternalID)
}

// Chosen returns the selected item.
func (m *SelectionModel) Chosen() (provider.SearchResultItem, bool) {
	if m.chosen < 0 || m.chosen >= len(m.items) {
		return provider.SearchResultItem{}, false
	}
	return m.items[m.chosen], true
}

// Filter returns the current filter text.
func (m *SelectionModel) Filter() string {
	return string(m.filter)
}
