package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ae-kit/tools/internal/prompt"
)

type doneMsg struct{ err error }

type spinModel struct {
	spinner spinner.Model
	title   string
	err     error
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.err = prompt.ErrAborted
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinModel) View() string {
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.title)
}

// Spin shows a spinner titled title on p.Out while fn runs. When the output
// is not a terminal the title is printed once instead.
func (p *Printer) Spin(ctx context.Context, title string, fn func(context.Context) error) error {
	if !IsTerminal(p.Out) {
		p.Primary(title)
		return fn(ctx)
	}
	return spin(ctx, p.Out, title, p.Styles.Primary, fn)
}

func spin(ctx context.Context, w io.Writer, title string, style lipgloss.Style, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = style

	prog := tea.NewProgram(spinModel{spinner: s, title: style.Render(title)},
		tea.WithOutput(w),
		tea.WithContext(ctx),
	)

	go func() {
		prog.Send(doneMsg{err: fn(ctx)})
	}()

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("spinner failed: %w", err)
	}
	return final.(spinModel).err
}
