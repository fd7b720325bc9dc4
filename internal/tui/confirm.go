package tui

import (
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a yes/no question.
type ConfirmModel struct {
	question  string
	detail    string
	yes       bool
	answered  bool
	cancelled bool
	theme     theme.Theme
}

// NewConfirmModel asks question; defaultYes preselects the answer.
func NewConfirmModel(question, detail string, defaultYes bool, th theme.Theme) *ConfirmModel {
	return &ConfirmModel{question: question, detail: detail, yes: defaultYes, theme: th}
}

func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Yes):
		m.yes, m.answered = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.No):
		m.yes, m.answered = false, true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, keys.Submit):
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *ConfirmModel) View() string {
	if m.answered || m.cancelled {
		return ""
	}

	yes := m.theme.BadgeStyle(theme.BadgeMuted).Render("Yes")
	no := m.theme.BadgeStyle(theme.BadgeMuted).Render("No")
	if m.yes {
		yes = m.theme.BadgeStyle(theme.BadgeSuccess).Render("Yes")
	} else {
		no = m.theme.BadgeStyle(theme.BadgeError).Render("No")
	}

	var b strings.Builder
	b.WriteString(m.theme.PanelTitleStyle().Render(m.question))
	b.WriteString("\n")
	if m.detail != "" {
		b.WriteString(m.theme.MutedStyle().Render(m.detail))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no))
	b.WriteString("\n\n")
	b.WriteString(m.theme.MutedStyle().Render(helpLine(keys.Yes, keys.No, keys.Toggle, keys.Cancel)))
	b.WriteString("\n")
	return b.String()
}

// Confirmed reports whether the user answered yes.
func (m *ConfirmModel) Confirmed() bool {
	return m.answered && m.yes
}

// Cancelled reports whether the user backed out without answering.
func (m *ConfirmModel) Cancelled() bool {
	return m.cancelled || !m.answered
}
