package tui

import (
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// QueryModel asks for a title or an IMDb ID.
type QueryModel struct {
	input     textinput.Model
	kind      provider.MediaKind
	theme     theme.Theme
	submitted bool
	cancelled bool
}

// NewQueryModel creates the search prompt for kind.
func NewQueryModel(kind provider.MediaKind, th theme.Theme) *QueryModel {
	ti := textinput.New()
	ti.Prompt = th.Icon("search") + " "
	ti.Placeholder = "Title or IMDb ID (e.g. tt0117060)"
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	return &QueryModel{input: ti, kind: kind, theme: th}
}

func (m *QueryModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *QueryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			if strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *QueryModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	title := "Search for a movie"
	if m.kind == provider.MediaKindSeries {
		title = "Search for a series"
	}
	var b strings.Builder
	b.WriteString(m.theme.PanelTitleStyle().Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.MutedStyle().Render(helpLine(keys.Submit, keys.Cancel)))
	b.WriteString("\n")
	return b.String()
}

// Value returns the trimmed query.
func (m *QueryModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Cancelled reports whether the user backed out.
func (m *QueryModel) Cancelled() bool {
	return m.cancelled || !m.submitted
}
