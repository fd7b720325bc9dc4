// Package tui implements the terminal side of the note flow: bubbletea
// prompts and lipgloss notices.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Digital-Shane/moviegrabber/internal/flow"
	"github.com/Digital-Shane/moviegrabber/internal/note"
	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompter asks the flow's questions with small inline bubbletea programs.
type Prompter struct {
	theme     theme.Theme
	input     io.Reader
	output    io.Writer
	assumeYes bool
	overwrite bool
}

// PrompterOption configures a Prompter.
type PrompterOption func(*Prompter)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) PrompterOption {
	return func(p *Prompter) {
		p.theme = th
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) PrompterOption {
	return func(p *Prompter) {
		p.input = in
		p.output = out
	}
}

// WithAssumeYes answers every create confirmation with yes.
func WithAssumeYes(yes bool) PrompterOption {
	return func(p *Prompter) {
		p.assumeYes = yes
	}
}

// WithOverwrite answers every overwrite confirmation with yes.
func WithOverwrite(overwrite bool) PrompterOption {
	return func(p *Prompter) {
		p.overwrite = overwrite
	}
}

// NewPrompter creates a Prompter.
func NewPrompter(opts ...PrompterOption) *Prompter {
	p := &Prompter{theme: theme.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ flow.Prompter = (*Prompter)(nil)

func (p *Prompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.input != nil {
		opts = append(opts, tea.WithInput(p.input))
	}
	if p.output != nil {
		opts = append(opts, tea.WithOutput(p.output))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, flow.ErrCancelled
		}
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

func (p *Prompter) Query(ctx context.Context, kind provider.MediaKind) (string, error) {
	final, err := p.run(ctx, NewQueryModel(kind, p.theme))
	if err != nil {
		return "", err
	}
	m := final.(*QueryModel)
	if m.Cancelled() {
		return "", flow.ErrCancelled
	}
	return m.Value(), nil
}

func (p *Prompter) Choose(ctx context.Context, items []provider.SearchResultItem) (provider.SearchResultItem, error) {
	final, err := p.run(ctx, NewSelectionModel(items, p.theme))
	if err != nil {
		return provider.SearchResultItem{}, err
	}
	item, ok := final.(*SelectionModel).Chosen()
	if !ok {
		return provider.SearchResultItem{}, flow.ErrCancelled
	}
	return item, nil
}

func (p *Prompter) ConfirmCreate(ctx context.Context, item provider.SearchResultItem) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	question := fmt.Sprintf("Create a note for %s?", item.Label())
	detail := ""
	if item.Title != "" && item.ExternalID != "" {
		detail = "IMDb " + item.ExternalID
	}
	return p.Confirm(ctx, question, detail, true)
}

func (p *Prompter) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	if p.overwrite {
		return true, nil
	}
	question := fmt.Sprintf("%s already exists. Overwrite it?", path)
	detail := fmt.Sprintf("Everything from %s to the end of the note is kept.", note.Delimiter)
	return p.Confirm(ctx, question, detail, false)
}

// Confirm asks a yes/no question. Esc cancels.
func (p *Prompter) Confirm(ctx context.Context, question, detail string, defaultYes bool) (bool, error) {
	final, err := p.run(ctx, NewConfirmModel(question, detail, defaultYes, p.theme))
	if err != nil {
		return false, err
	}
	m := final.(*ConfirmModel)
	if m.Cancelled() {
		return false, flow.ErrCancelled
	}
	return m.Confirmed(), nil
}
