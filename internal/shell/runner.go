// Package shell runs the external programs the CLI wraps: git, dbt, aws and
// gum. Commands are always executed as argv, never through a shell.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // extra KEY=VALUE pairs appended to the current environment

	// Interactive attaches stdin and stderr to the terminal for Output, so
	// full-screen helpers like gum can draw their UI while stdout is captured.
	Interactive bool
}

// Cmd is shorthand for Command{Name: name, Args: args}.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Argv returns the full argument vector.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a POSIX shell line, quoting arguments where
// needed. It is what gets written to shell history.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Argv() {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Runner executes commands.
type Runner interface {
	// Run executes c with stdio attached to the terminal.
	Run(ctx context.Context, c Command) error
	// Output executes c and returns its trimmed stdout.
	Output(ctx context.Context, c Command) (string, error)
}

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

// ExitCode returns the exit status carried by err, 0 for nil and -1 for
// errors that did not come from a finished process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
