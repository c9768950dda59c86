// Package git wraps the git porcelain commands used by the branch and
// commit workflows.
package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ae-kit/tools/internal/shell"
)

// Client runs git through a shell.Runner.
type Client struct {
	runner shell.Runner
	dir    string
}

// New returns a Client running in dir ("" for the working directory).
func New(runner shell.Runner, dir string) *Client {
	return &Client{runner: runner, dir: dir}
}

func (c *Client) cmd(args ...string) shell.Command {
	return shell.Command{Name: "git", Args: args, Dir: c.dir}
}

func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	return c.runner.Output(ctx, c.cmd(args...))
}

func (c *Client) run(ctx context.Context, args ...string) error {
	return c.runner.Run(ctx, c.cmd(args...))
}

// quiet runs args with output captured so it does not interleave with a
// spinner.
func (c *Client) quiet(ctx context.Context, args ...string) error {
	_, err := c.output(ctx, args...)
	return err
}

// DefaultBranch returns the remote's default branch, e.g. "main".
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "--abbrev-ref", "origin/HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve default branch: %w", err)
	}
	branch := strings.TrimPrefix(strings.TrimSpace(out), "origin/")
	if branch == "" || branch == "HEAD" {
		return "", errors.New("failed to resolve default branch: origin/HEAD is not set")
	}
	return branch, nil
}

// CurrentBranch returns the checked out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches to branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	return c.quiet(ctx, "checkout", branch)
}

// Pull fast-forwards the current branch.
func (c *Client) Pull(ctx context.Context) error {
	return c.quiet(ctx, "pull")
}

// CreateBranch creates and checks out branch.
func (c *Client) CreateBranch(ctx context.Context, branch string) error {
	return c.quiet(ctx, "checkout", "-b", branch)
}

// PushUpstream pushes branch and sets origin as its upstream.
func (c *Client) PushUpstream(ctx context.Context, branch string) error {
	return c.quiet(ctx, "push", "--set-upstream", "origin", branch)
}

// Add stages paths, or everything when none are given.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return c.run(ctx, "add", ".")
	}
	return c.run(ctx, append([]string{"add", "--"}, paths...)...)
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-m", message)
}

// Push pushes the current branch.
func (c *Client) Push(ctx context.Context) error {
	return c.run(ctx, "push")
}

// StatusEntry is one line of `git status --short`.
type StatusEntry struct {
	Code string // two-character XY status, e.g. " M", "??", "R "
	Path string // for renames, the new path
	Line string // the raw status line
}

// Status lists changed files.
func (c *Client) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := c.output(ctx, "--no-optional-locks", "status", "--short")
	if err != nil {
		return nil, fmt.Errorf("failed to read git status: %w", err)
	}
	return ParseStatus(out), nil
}

// ParseStatus parses `git status --short` output.
func ParseStatus(out string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+len(" -> "):]
		}
		entries = append(entries, StatusEntry{
			Code: line[:2],
			Path: unquote(path),
			Line: line,
		})
	}
	return entries
}

// unquote decodes a path git printed as a C-style quoted string. Octal
// escapes carry the raw UTF-8 bytes of non-ASCII names.
func unquote(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if s, err := strconv.Unquote(p); err == nil {
		return s
	}
	return strings.ReplaceAll(p[1:len(p)-1], `\"`, `"`)
}
