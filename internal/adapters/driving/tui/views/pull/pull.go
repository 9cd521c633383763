// Package pull provides the model download progress view.
package pull

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docassist/internal/core/domain"
)

const maxBarWidth = 60

// Model renders a progress bar for a single model pull.
type Model struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    progress.Model

	model     string
	status    string
	percent   float64
	done      bool
	cancelled bool
	err       error
	cancel    context.CancelFunc
}

// New creates a pull view for model. cancel is invoked when the user aborts.
func New(model string, cancel context.CancelFunc) *Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = maxBarWidth

	return &Model{
		styles: styles.DefaultStyles(),
		keymap: keymap.DefaultKeyMap(),
		bar:    bar,
		model:  model,
		status: "starting",
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.Cancel) {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case messages.PullProgressed:
		p := msg.Progress
		m.status = p.Status
		if p.Total > 0 {
			m.percent = p.Fraction()
		}
		if p.Done() {
			m.percent = 1
			m.done = true
		}
		return m, nil

	case messages.PullFinished:
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Pulling %s", m.model)))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.cancelled:
		b.WriteString(m.styles.Error.Render("Cancelled"))
	case m.done:
		b.WriteString(m.styles.Success.Render("Done"))
	default:
		b.WriteString(m.styles.Muted.Render(m.status))
		b.WriteString("\n")
		hints := make([]string, 0, 1)
		for _, binding := range m.keymap.ShortHelp() {
			h := binding.Help()
			hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
		}
		b.WriteString(m.styles.Muted.Render(strings.Join(hints, " | ")))
	}
	b.WriteString("\n")

	return b.String()
}

// Percent returns the current completion fraction.
func (m *Model) Percent() float64 {
	return m.percent
}

// Err returns the pull outcome: nil on success, context.Canceled when the
// user aborted, or the error that ended the stream.
func (m *Model) Err() error {
	if m.cancelled {
		return context.Canceled
	}
	if m.err != nil {
		return m.err
	}
	if !m.done {
		return errors.New("pull ended before completion")
	}
	return nil
}

// Run shows the progress view while pull runs to completion.
func Run(
	ctx context.Context,
	model string,
	pull func(context.Context) iter.Seq2[domain.PullProgress, error],
	opts ...tea.ProgramOption,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(model, cancel)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	go func() {
		var err error
		for event, e := range pull(ctx) {
			if e != nil {
				err = e
				break
			}
			p.Send(messages.PullProgressed{Progress: event})
		}
		p.Send(messages.PullFinished{Err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("progress view: %w", err)
	}
	if err := m.Err(); err != nil {
		return err
	}
	return ctx.Err()
}
