// Package ui renders coloured status lines, spinners and tables for the
// terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ae-kit/tools/internal/theme"
)

// Styles holds the lipgloss styles derived from a palette.
type Styles struct {
	Primary    lipgloss.Style
	Secondary  lipgloss.Style
	Quaternary lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Warn       lipgloss.Style
	Muted      lipgloss.Style
}

// NewStyles builds Styles from p using r.
func NewStyles(r *lipgloss.Renderer, p theme.Palette) *Styles {
	return &Styles{
		Primary:    r.NewStyle().Foreground(lipgloss.Color(p.Primary)),
		Secondary:  r.NewStyle().Foreground(lipgloss.Color(p.Secondary)),
		Quaternary: r.NewStyle().Foreground(lipgloss.Color(p.Quaternary)),
		Success:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Error:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Warn:       r.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:      r.NewStyle().Faint(true),
	}
}

// Printer writes styled lines to Out (status) and Err (errors).
type Printer struct {
	Out     io.Writer
	Err     io.Writer
	Palette theme.Palette
	Styles  *Styles
	color   bool
}

// NewPrinter returns a Printer for out and errOut. Colour is disabled when
// noColor is set, NO_COLOR is present, or out is not a terminal.
func NewPrinter(out, errOut io.Writer, p theme.Palette, noColor bool) *Printer {
	color := !noColor && os.Getenv("NO_COLOR") == "" && IsTerminal(out)
	return newPrinter(out, errOut, p, color)
}

// NewPlainPrinter returns a Printer that never emits escape codes.
func NewPlainPrinter(out, errOut io.Writer, p theme.Palette) *Printer {
	return newPrinter(out, errOut, p, false)
}

func newPrinter(out, errOut io.Writer, p theme.Palette, color bool) *Printer {
	profile := termenv.Ascii
	if color {
		profile = termenv.TrueColor
		if f, ok := out.(*os.File); ok {
			profile = termenv.NewOutput(f).EnvColorProfile()
		}
	}
	r := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return &Printer{
		Out:     out,
		Err:     errOut,
		Palette: p,
		Styles:  NewStyles(r, p),
		color:   color,
	}
}

// Color reports whether the printer emits colour.
func (p *Printer) Color() bool {
	return p.color
}

// Primary prints msg in the theme's primary colour.
func (p *Printer) Primary(msg string) {
	p.line(p.Out, p.Styles.Primary, msg)
}

// Info prints msg in the theme's secondary colour.
func (p *Printer) Info(msg string) {
	p.line(p.Out, p.Styles.Secondary, msg)
}

// Success prints msg in bold green.
func (p *Printer) Success(msg string) {
	p.line(p.Out, p.Styles.Success, msg)
}

// Warn prints msg in yellow.
func (p *Printer) Warn(msg string) {
	p.line(p.Out, p.Styles.Warn, msg)
}

// Error prints msg in bold red on the error writer.
func (p *Printer) Error(msg string) {
	p.line(p.Err, p.Styles.Error, msg)
}

// Aborted prints the abort notice in the theme's quaternary colour.
func (p *Printer) Aborted() {
	p.line(p.Err, p.Styles.Quaternary, "Aborted!")
}

// Plain prints msg without styling.
func (p *Printer) Plain(msg string) {
	_, _ = fmt.Fprintln(p.Out, msg)
}

// Plainf is Plain with formatting.
func (p *Printer) Plainf(format string, args ...any) {
	p.Plain(fmt.Sprintf(format, args...))
}

func (p *Printer) line(w io.Writer, s lipgloss.Style, msg string) {
	_, _ = fmt.Fprintln(w, s.Render(msg))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

var titleCaser = cases.Title(language.Und)

// Capwords upper-cases the first letter of each space separated word and
// lower-cases the rest: "main" -> "Main", "release/v2" -> "Release/v2".
func Capwords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) == 0 {
			continue
		}
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

// Title returns s in title case, treating '-' and '_' as word breaks.
func Title(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCaser.String(s)
}
