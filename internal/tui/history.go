package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/moviegrabber/internal/log"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
)

// HistoryItem is the payload of a node in the session tree. Session nodes
// have a nil Operation; operation nodes carry their session's summary too.
type HistoryItem struct {
	Summary   log.SessionSummary
	Operation *log.OperationLog
}

// Session returns the session the node belongs to.
func (h HistoryItem) Session() *log.LogSession {
	return h.Summary.Session
}

// HistoryNodes builds one node per session, with the session's successful
// operations as children.
func HistoryNodes(summaries []log.SessionSummary, th theme.Theme) []*treeview.Node[HistoryItem] {
	nodes := make([]*treeview.Node[HistoryItem], 0, len(summaries))
	for _, summary := range summaries {
		meta := summary.Session.Metadata
		sessionNode := treeview.NewNode(meta.SessionID, SessionLabel(summary, th), HistoryItem{Summary: summary})

		for i := range summary.Session.Operations {
			op := &summary.Session.Operations[i]
			if !op.Success {
				continue
			}
			id := op.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", meta.SessionID, i)
			}
			label := th.Icon(operationIcon(op)) + " " + DescribeOperation(*op, meta.Vault)
			sessionNode.AddChild(treeview.NewNode(id, label, HistoryItem{Summary: summary, Operation: op}))
		}
		nodes = append(nodes, sessionNode)
	}
	return nodes
}

// HistoryTree wraps nodes from HistoryNodes in an expanded tree.
func HistoryTree(nodes []*treeview.Node[HistoryItem]) *treeview.Tree[HistoryItem] {
	return treeview.NewTree(nodes, treeview.WithExpandAll[HistoryItem]())
}

// RenderHistory prints the session nodes and their operations, two spaces of
// indent per level.
func RenderHistory(nodes []*treeview.Node[HistoryItem]) string {
	var b strings.Builder
	var walk func(n *treeview.Node[HistoryItem], depth int)
	walk = func(n *treeview.Node[HistoryItem], depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name())
		b.WriteByte('\n')
		for _, child := range n.Children() {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
	return b.String()
}

// SessionLabel is the one-line description of a session.
func SessionLabel(s log.SessionSummary, th theme.Theme) string {
	meta := s.Session.Metadata
	label := fmt.Sprintf("%s %s - %s (%d op%s)",
		s.Icon,
		strings.Join(meta.CommandArgs, " "),
		s.RelativeTime,
		meta.TotalOps,
		plural(meta.TotalOps))
	if meta.FailedOps > 0 {
		label += fmt.Sprintf(" %d failed", meta.FailedOps)
	}
	if meta.Undone {
		label += " " + th.MutedStyle().Render("undone")
	}
	return label
}

// DescribeOperation says what undoing op will do to its file. Paths inside
// vault are shown relative to it.
func DescribeOperation(op log.OperationLog, vault string) string {
	target := op.Path
	if vault != "" {
		if rel, err := filepath.Rel(vault, op.Path); err == nil && !strings.HasPrefix(rel, "..") {
			target = filepath.ToSlash(rel)
		}
	}
	switch op.Type {
	case log.OpCreateNote:
		return "remove " + target
	case log.OpOverwriteNote:
		return "restore " + target
	case log.OpSavePoster:
		if op.BackupPath != "" {
			return "restore " + target
		}
		return "remove " + target
	default:
		return string(op.Type) + " " + target
	}
}

func operationIcon(op *log.OperationLog) string {
	switch op.Type {
	case log.OpCreateNote, log.OpOverwriteNote:
		return "note"
	case log.OpSavePoster:
		return "poster"
	default:
		return "unknown"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
