package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cli/safeexec"
)

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner returns an ExecRunner wired to the process's stdio.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := r.command(ctx, c)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return r.exec(c, cmd, nil)
}

// Output implements Runner. Only trailing newlines are trimmed so that
// column-sensitive output such as `git status --short` keeps its layout.
func (r *ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	cmd := r.command(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Interactive {
		cmd.Stdin = r.Stdin
		cmd.Stderr = r.Stderr
	} else {
		cmd.Stderr = &stderr
	}

	err := r.exec(c, cmd, &stderr)
	return strings.TrimRight(stdout.String(), "\r\n"), err
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func (r *ExecRunner) exec(c Command, cmd *exec.Cmd, stderr *bytes.Buffer) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("running command", "cmd", c.String(), "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	logger.Debug("command finished", "cmd", c.Name, "duration", time.Since(start), "exit", exitStatus(err))

	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e := &ExitError{Command: c.Name, Code: exitErr.ExitCode()}
		if stderr != nil {
			e.Stderr = stderr.String()
		}
		return e
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s is not installed or not on PATH: %w", c.Name, err)
	}
	return fmt.Errorf("failed to run %s: %w", c.Name, err)
}

func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// LookPath reports where name is installed.
func LookPath(name string) (string, bool) {
	path, err := safeexec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
