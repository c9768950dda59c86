package prompt

import (
	"context"
	"strings"

	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/theme"
)

// gum exits with 130 when the user presses Ctrl-C or Esc.
const gumAbortCode = 130

// Gum runs prompts through the gum binary.
type Gum struct {
	runner  shell.Runner
	palette theme.Palette
}

// NewGum returns a gum backend that runs through runner.
func NewGum(runner shell.Runner, p theme.Palette) *Gum {
	return &Gum{runner: runner, palette: p}
}

func (g *Gum) output(ctx context.Context, args []string) (string, error) {
	out, err := g.runner.Output(ctx, shell.Command{Name: "gum", Args: args, Interactive: true})
	if err != nil {
		return "", gumError(err)
	}
	return out, nil
}

func gumError(err error) error {
	if shell.ExitCode(err) == gumAbortCode {
		return ErrAborted
	}
	return err
}

// FilterArgs returns the gum filter argv for options. Options follow "--" so
// one starting with a dash is not read as a flag.
func (g *Gum) FilterArgs(header string, options []string, multi bool) []string {
	p := g.palette
	args := []string{"filter",
		"--text.foreground", p.Prompt,
		"--indicator", p.CursorStyle,
		"--indicator.foreground", p.CursorColor,
		"--header", header,
		"--header.foreground", p.Primary,
		"--prompt", p.FilterPrompt,
		"--prompt.foreground", p.Quaternary,
		"--cursor-text.foreground", p.Secondary,
		"--match.foreground", p.Tertiary,
		"--height", "10",
	}
	if multi {
		args = append(args, "--no-limit")
	}
	args = append(args,
		"--unselected-prefix.foreground", p.Tertiary,
		"--selected-indicator.foreground", p.Tertiary,
		"--",
	)
	return append(args, options...)
}

// Filter implements Prompter.
func (g *Gum) Filter(ctx context.Context, header string, options []string, multi bool) ([]string, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}
	out, err := g.output(ctx, g.FilterArgs(header, options, multi))
	if err != nil {
		return nil, err
	}
	return Lines(out), nil
}

// InputArgs returns the gum input argv.
func (g *Gum) InputArgs(header, placeholder string) []string {
	p := g.palette
	return []string{"input",
		"--header", header,
		"--width", "65",
		"--header.foreground", p.Primary,
		"--cursor.foreground", p.CursorColor,
		"--prompt", p.CursorStyle,
		"--prompt.foreground", p.Prompt,
		"--value", placeholder,
		"--char-limit", "0",
	}
}

// Input implements Prompter.
func (g *Gum) Input(ctx context.Context, header, placeholder string) (string, error) {
	out, err := g.output(ctx, g.InputArgs(header, placeholder))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfirmArgs returns the gum confirm argv.
func (g *Gum) ConfirmArgs(message string, defaultYes bool) []string {
	p := g.palette
	args := []string{"confirm", message,
		"--prompt.foreground", p.Primary,
		"--selected.background", p.Secondary,
		"--unselected.background", p.Tertiary,
	}
	if !defaultYes {
		args = append(args, "--default=false")
	}
	return args
}

// Confirm implements Prompter. gum confirm answers through its exit code:
// 0 is yes and 1 is no.
func (g *Gum) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	err := g.runner.Run(ctx, shell.Command{Name: "gum", Args: g.ConfirmArgs(message, defaultYes), Interactive: true})
	switch shell.ExitCode(err) {
	case 0:
		return true, nil
	case 1:
		return false, nil
	case gumAbortCode:
		return false, ErrAborted
	default:
		return false, err
	}
}

// ChooseArgs returns the gum choose argv.
func (g *Gum) ChooseArgs(header string, options []string) []string {
	p := g.palette
	args := []string{"choose",
		"--ordered",
		"--cursor", p.CursorStyle,
		"--cursor.foreground", p.Quaternary,
		"--item.foreground", p.Tertiary,
	}
	if header != "" {
		args = append(args, "--header", header, "--header.foreground", p.Primary)
	}
	args = append(args, "--")
	return append(args, options...)
}

// Choose implements Prompter.
func (g *Gum) Choose(ctx context.Context, header string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}
	out, err := g.output(ctx, g.ChooseArgs(header, options))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// WriteArgs returns the gum write argv.
func (g *Gum) WriteArgs(header, value string) []string {
	p := g.palette
	return []string{"write",
		"--header", header,
		"--header.foreground", p.Primary,
		"--cursor.foreground", p.CursorColor,
		"--prompt.foreground", p.Secondary,
		"--char-limit", "0",
		"--value", value,
		"--width", "65",
		"--height", "10",
	}
}

// Write implements Prompter.
func (g *Gum) Write(ctx context.Context, header, value string) (string, error) {
	out, err := g.output(ctx, g.WriteArgs(header, value))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
