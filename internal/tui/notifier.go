package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
)

// Notifier prints notices as a badge followed by the message.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	theme theme.Theme
	quiet bool
}

// NewNotifier writes notices to out. A quiet notifier drops Info notices.
func NewNotifier(out io.Writer, th theme.Theme, quiet bool) *Notifier {
	return &Notifier{out: out, theme: th, quiet: quiet}
}

var _ flow.Notifier = (*Notifier)(nil)

func (n *Notifier) Info(msg string) {
	if n.quiet {
		return
	}
	n.print(theme.BadgeInfo, "info", msg)
}

func (n *Notifier) Warn(msg string) {
	n.print(theme.BadgeWarning, "warning", msg)
}

func (n *Notifier) Error(msg string) {
	n.print(theme.BadgeError, "error", msg)
}

// Success reports a completed action.
func (n *Notifier) Success(msg string) {
	n.print(theme.BadgeSuccess, "success", msg)
}

func (n *Notifier) print(kind theme.BadgeKind, icon, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	badge := n.theme.BadgeStyle(kind).Render(n.theme.Icon(icon))
	fmt.Fprintf(n.out, "%s %s\n", badge, msg)
}
