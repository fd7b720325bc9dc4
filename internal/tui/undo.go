package tui

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	undoSessionFn = log.UndoSession
	markUndoneFn  = log.MarkUndone
)

// maxDetailOps caps the operations listed in the details panel.
const maxDetailOps = 8

// UndoCompleteMsg is sent when the selected session has been reverted.
type UndoCompleteMsg struct {
	successful, failed int
	errs               []error
}

// UndoResult is what the undo picker did before it quit.
type UndoResult struct {
	Session    *log.LogSession
	Done       bool
	Successful int
	Failed     int
	Errs       []error
}

// UndoModel lets the user pick a session from the history tree and revert it.
// Focusing an operation selects the session it belongs to.
type UndoModel struct {
	*treeview.TuiTreeModel[HistoryItem]
	confirming bool
	inProgress bool
	complete   bool
	notice     string
	result     UndoResult
	width      int
	height     int
	theme      theme.Theme
}

// NewUndoModel creates the picker over a tree built by HistoryTree.
func NewUndoModel(tree *treeview.Tree[HistoryItem], th theme.Theme) *UndoModel {
	m := &UndoModel{width: 80, height: 24, theme: th}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[HistoryItem](m.treeWidth()),
		treeview.WithTuiHeight[HistoryItem](m.height-4),
		treeview.WithTuiAllowResize[HistoryItem](true),
		treeview.WithTuiDisableNavBar[HistoryItem](true),
		treeview.WithTuiKeyMap[HistoryItem](keyMap),
	)
	return m
}

// Result reports the outcome once the program has exited.
func (m *UndoModel) Result() UndoResult {
	return m.result
}

func (m *UndoModel) treeWidth() int {
	return m.width/2 - 2
}

func (m *UndoModel) Init() tea.Cmd {
	return nil
}

func (m *UndoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: m.treeWidth(), Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[HistoryItem])
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			return m, tea.Quit

		case m.complete:
			if key.Matches(msg, keys.Submit) {
				return m, tea.Quit
			}
			return m, nil

		case m.inProgress:
			return m, nil

		case m.confirming && (key.Matches(msg, keys.Submit) || key.Matches(msg, keys.Yes)):
			item, ok := m.focused()
			if !ok {
				m.confirming = false
				return m, nil
			}
			m.confirming = false
			m.inProgress = true
			m.result.Session = item.Session()
			return m, performUndo(item.Summary)

		case m.confirming && key.Matches(msg, keys.No):
			m.confirming = false
			return m, nil

		case m.confirming:
			return m, nil

		case key.Matches(msg, keys.Submit):
			item, ok := m.focused()
			if !ok {
				return m, nil
			}
			if item.Session().Metadata.Undone {
				m.notice = "That session was already undone"
				return m, nil
			}
			m.notice = ""
			m.confirming = true
			return m, nil
		}

	case UndoCompleteMsg:
		m.inProgress = false
		m.complete = true
		m.result.Done = true
		m.result.Successful = msg.successful
		m.result.Failed = msg.failed
		m.result.Errs = msg.errs
		return m, nil
	}

	if m.confirming || m.inProgress || m.complete {
		return m, nil
	}
	treeModel, cmd := m.TuiTreeModel.Update(msg)
	m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[HistoryItem])
	return m, cmd
}

func (m *UndoModel) focused() (HistoryItem, bool) {
	node := m.TuiTreeModel.Tree.GetFocusedNode()
	if node == nil {
		return HistoryItem{}, false
	}
	return *node.Data(), true
}

// performUndo reverts the session and, when every operation was reverted,
// marks its log file so the session is not offered again.
func performUndo(summary log.SessionSummary) tea.Cmd {
	return func() tea.Msg {
		successful, failed, errs := undoSessionFn(summary.Session)
		if failed == 0 {
			if err := markUndoneFn(summary.Session, summary.FilePath); err != nil {
				errs = append(errs, err)
			}
		}
		return UndoCompleteMsg{successful: successful, failed: failed, errs: errs}
	}
}

func (m *UndoModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render("Moviegrabber Undo"))
	b.WriteByte('\n')

	switch {
	case m.complete:
		text := fmt.Sprintf("Undo completed: %d operation%s reversed", m.result.Successful, plural(m.result.Successful))
		if m.result.Failed > 0 {
			text = fmt.Sprintf("Undo completed: %d success, %d failed", m.result.Successful, m.result.Failed)
		}
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render(text))
		b.WriteByte('\n')
		b.WriteString(m.mutedCentered("Press enter or esc to exit"))

	case m.inProgress:
		b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render("Undoing operations..."))
		b.WriteByte('\n')

	case m.confirming:
		if item, ok := m.focused(); ok {
			b.WriteString(m.renderConfirmation(item.Summary))
		}

	default:
		left := m.panel(m.width/2, m.theme.Colors().Primary).Render(m.TuiTreeModel.View())
		right := m.panel(m.width-m.width/2, m.theme.Colors().Secondary).Render(m.renderDetails())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		b.WriteByte('\n')
		if m.notice != "" {
			b.WriteString(m.theme.BadgeStyle(theme.BadgeWarning).Render(m.notice))
			b.WriteByte('\n')
		}
		b.WriteString(m.mutedCentered("↑↓ Navigate | Enter: Undo session | Esc/Ctrl+C: Quit"))
	}
	return b.String()
}

func (m *UndoModel) panel(width int, border lipgloss.Color) lipgloss.Style {
	style := m.theme.PanelStyle().BorderForeground(border).Padding(0, 1)
	if w := width - style.GetHorizontalFrameSize(); w > 0 {
		style = style.Width(w)
	}
	return style
}

func (m *UndoModel) mutedCentered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(m.theme.Colors().Muted).
		Render(text)
}

func (m *UndoModel) renderDetails() string {
	item, ok := m.focused()
	if !ok {
		return m.theme.MutedStyle().Render("Select a session to view details")
	}
	meta := item.Session().Metadata
	colors := m.theme.Colors()
	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	value := lipgloss.NewStyle().Foreground(colors.Primary)

	var b strings.Builder
	b.WriteString(label.Render("Command: ") + value.Render(strings.Join(meta.CommandArgs, " ")) + "\n")
	b.WriteString(label.Render("Date: ") + value.Render(meta.Timestamp.Format("2006-01-02 15:04:05")) + "\n")
	if meta.Vault != "" {
		b.WriteString(label.Render("Vault: ") + value.Render(meta.Vault) + "\n")
	}
	b.WriteString(label.Render("Operations: ") +
		value.Render(fmt.Sprintf("%d total, %d failed", meta.TotalOps, meta.FailedOps)) + "\n")
	if meta.Undone {
		b.WriteString(m.theme.BadgeStyle(theme.BadgeMuted).Render("undone") + "\n")
	}

	b.WriteByte('\n')
	shown := 0
	for _, op := range item.Session().Operations {
		if !op.Success {
			continue
		}
		if shown == maxDetailOps {
			b.WriteString(m.theme.MutedStyle().Render("...") + "\n")
			break
		}
		line := DescribeOperation(op, meta.Vault)
		if item.Operation != nil && item.Operation.ID == op.ID {
			line = m.theme.SelectedStyle().Render(line)
		}
		b.WriteString(line + "\n")
		shown++
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *UndoModel) renderConfirmation(summary log.SessionSummary) string {
	meta := summary.Session.Metadata
	text := fmt.Sprintf(
		"Confirm Undo\n\n"+
			"Session: %s\n"+
			"Time: %s\n"+
			"Operations: %d (failed: %d)\n\n"+
			"Created notes and posters are removed, overwritten notes restored.\n\n"+
			"Press ENTER to confirm or 'n' to cancel",
		strings.Join(meta.CommandArgs, " "),
		summary.RelativeTime,
		meta.TotalOps,
		meta.FailedOps)

	box := m.theme.PanelStyle().
		BorderForeground(m.theme.Colors().Accent).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center)
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box.Render(text))
}
