// Package prompt asks the user for input. Two backends implement Prompter:
// Gum drives the external gum binary and Huh renders the same prompts
// in-process.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/theme"
)

var (
	// ErrAborted is returned when the user cancels a prompt with Ctrl-C or
	// Esc.
	ErrAborted = errors.New("aborted")

	// ErrNoOptions is returned by Filter and Choose when there is nothing
	// to pick from.
	ErrNoOptions = errors.New("no options to choose from")

	// ErrNotTTY is returned by the in-process backend when stdin is not a
	// terminal.
	ErrNotTTY = errors.New("prompt requires an interactive terminal: stdin is not a TTY")
)

// Prompter asks questions. Every method returns ErrAborted when the user
// cancels.
type Prompter interface {
	// Filter shows a fuzzy-filterable list. With multi set any number of
	// options may be picked.
	Filter(ctx context.Context, header string, options []string, multi bool) ([]string, error)
	// Input reads one line, pre-filled with placeholder.
	Input(ctx context.Context, header, placeholder string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
	// Choose picks one option from a short list.
	Choose(ctx context.Context, header string, options []string) (string, error)
	// Write opens a multi-line editor pre-filled with value.
	Write(ctx context.Context, header, value string) (string, error)
}

// Kind names a prompt backend.
type Kind string

const (
	KindAuto Kind = "auto"
	KindGum  Kind = "gum"
	KindHuh  Kind = "huh"
)

// Options configures New.
type Options struct {
	Kind Kind
	// EscAborts makes Esc cancel in-process prompts the way it does in gum.
	EscAborts bool
	// LookPath locates binaries; defaults to shell.LookPath.
	LookPath func(string) (string, bool)
}

// New returns the backend selected by opts.Kind. KindAuto picks gum when
// it is installed and falls back to huh.
func New(opts Options, p theme.Palette, runner shell.Runner) (Prompter, error) {
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = shell.LookPath
	}

	switch opts.Kind {
	case KindGum:
		if _, ok := lookPath("gum"); !ok {
			return nil, errors.New("prompter gum selected but gum is not installed")
		}
		return NewGum(runner, p), nil
	case KindHuh:
		return NewHuh(p, opts.EscAborts), nil
	case KindAuto, "":
		if _, ok := lookPath("gum"); ok {
			return NewGum(runner, p), nil
		}
		return NewHuh(p, opts.EscAborts), nil
	default:
		return nil, fmt.Errorf("unknown prompter %q", opts.Kind)
	}
}

var markupPattern = regexp.MustCompile(`\[/?(?:[a-zA-Z]+\s*[a-zA-Z]*|#[0-9a-fA-F]+)\]`)

// StripMarkup removes inline colour markup such as "[bold red]", "[/bold red]"
// and "[#ff00ff]" from s.
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}

// Lines splits prompt output on newlines, dropping empty lines.
func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
