package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ae-kit/tools/internal/theme"
)

// Huh renders prompts in-process with charmbracelet/huh.
type Huh struct {
	// In and Out default to os.Stdin and os.Stderr.
	In  io.Reader
	Out io.Writer
	// Accessible switches huh to plain line prompts that work without a
	// full-screen terminal.
	Accessible bool

	theme     *huh.Theme
	escAborts bool
}

// NewHuh returns an in-process backend styled from p.
func NewHuh(p theme.Palette, escAborts bool) *Huh {
	return &Huh{theme: Theme(p), escAborts: escAborts}
}

// Theme derives a huh theme from a palette.
func Theme(p theme.Palette) *huh.Theme {
	t := huh.ThemeBase()

	primary := lipgloss.Color(p.Primary)
	secondary := lipgloss.Color(p.Secondary)
	tertiary := lipgloss.Color(p.Tertiary)
	quaternary := lipgloss.Color(p.Quaternary)
	promptColor := lipgloss.Color(p.Prompt)
	cursor := lipgloss.Color(p.CursorColor)

	f := &t.Focused
	f.Title = f.Title.Foreground(primary).Bold(true)
	f.Description = f.Description.Foreground(secondary)
	f.SelectSelector = f.SelectSelector.Foreground(cursor).SetString(p.CursorStyle + " ")
	f.MultiSelectSelector = f.MultiSelectSelector.Foreground(cursor).SetString(p.CursorStyle + " ")
	f.SelectedOption = f.SelectedOption.Foreground(tertiary)
	f.SelectedPrefix = f.SelectedPrefix.Foreground(tertiary)
	f.UnselectedPrefix = f.UnselectedPrefix.Foreground(tertiary)
	f.Option = f.Option.Foreground(promptColor)
	f.TextInput.Prompt = f.TextInput.Prompt.Foreground(promptColor)
	f.TextInput.Cursor = f.TextInput.Cursor.Foreground(cursor)
	f.TextInput.Text = f.TextInput.Text.Foreground(promptColor)
	f.FocusedButton = f.FocusedButton.Background(secondary)
	f.BlurredButton = f.BlurredButton.Background(tertiary)
	f.ErrorMessage = f.ErrorMessage.Foreground(quaternary)
	f.ErrorIndicator = f.ErrorIndicator.Foreground(quaternary)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	return t
}

func (h *Huh) run(ctx context.Context, field huh.Field) error {
	in := h.In
	if in == nil {
		in = os.Stdin
	}
	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	if !h.Accessible && !isTTY(in) {
		return ErrNotTTY
	}

	keys := huh.NewDefaultKeyMap()
	if h.escAborts {
		keys.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(h.theme).
		WithKeyMap(keys).
		WithInput(in).
		WithOutput(out).
		WithShowHelp(false).
		WithAccessible(h.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func isTTY(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func options(values []string) []huh.Option[string] {
	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(v, v)
	}
	return opts
}

// Filter implements Prompter.
func (h *Huh) Filter(ctx context.Context, header string, values []string, multi bool) ([]string, error) {
	if len(values) == 0 {
		return nil, ErrNoOptions
	}
	if multi {
		var picked []string
		field := huh.NewMultiSelect[string]().
			Title(header).
			Options(options(values)...).
			Filterable(true).
			Height(12).
			Value(&picked)
		if err := h.run(ctx, field); err != nil {
			return nil, err
		}
		return picked, nil
	}

	var picked string
	field := huh.NewSelect[string]().
		Title(header).
		Options(options(values)...).
		Filtering(true).
		Height(12).
		Value(&picked)
	if err := h.run(ctx, field); err != nil {
		return nil, err
	}
	return []string{picked}, nil
}

// Input implements Prompter.
func (h *Huh) Input(ctx context.Context, header, placeholder string) (string, error) {
	value := placeholder
	field := huh.NewInput().
		Title(header).
		Prompt(h.theme.Focused.SelectSelector.String()).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm implements Prompter.
func (h *Huh) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	value := defaultYes
	field := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return false, err
	}
	return value, nil
}

// Choose implements Prompter.
func (h *Huh) Choose(ctx context.Context, header string, values []string) (string, error) {
	if len(values) == 0 {
		return "", ErrNoOptions
	}
	var picked string
	field := huh.NewSelect[string]().
		Title(header).
		Options(options(values)...).
		Value(&picked)
	if err := h.run(ctx, field); err != nil {
		return "", err
	}
	return picked, nil
}

// Write implements Prompter.
func (h *Huh) Write(ctx context.Context, header, value string) (string, error) {
	field := huh.NewText().
		Title(header).
		CharLimit(0).
		Lines(10).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}
