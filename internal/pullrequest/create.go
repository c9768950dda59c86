package pullrequest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	gh "github.com/cli/go-gh/v2"
)

// PR is a pull request to open.
type PR struct {
	Title string
	Body  string
	Draft bool
}

// Args returns the gh argv creating pr.
func (pr PR) Args() []string {
	args := []string{"pr", "create", "--title", pr.Title, "--body", pr.Body}
	if pr.Draft {
		args = append(args, "--draft")
	}
	return args
}

// ExecFunc runs gh with args, as gh.ExecContext does.
type ExecFunc func(ctx context.Context, args ...string) (stdout, stderr bytes.Buffer, err error)

// Creator opens pull requests through the gh CLI.
type Creator struct {
	exec   ExecFunc
	logger *slog.Logger
}

// NewCreator returns a Creator that shells out to gh.
func NewCreator(logger *slog.Logger) *Creator {
	return &Creator{exec: gh.ExecContext, logger: logger}
}

// NewCreatorWithExec returns a Creator using exec instead of gh.
func NewCreatorWithExec(exec ExecFunc, logger *slog.Logger) *Creator {
	return &Creator{exec: exec, logger: logger}
}

// Create opens pr and returns its URL. Repositories that do not allow
// drafts reject --draft, so a failed draft is retried once as a ready pull
// request.
func (c *Creator) Create(ctx context.Context, pr PR) (string, error) {
	url, err := c.create(ctx, pr)
	if err == nil || !pr.Draft {
		return url, err
	}

	c.logger.Warn("draft pull request failed, retrying without --draft", "error", err)
	pr.Draft = false
	return c.create(ctx, pr)
}

func (c *Creator) create(ctx context.Context, pr PR) (string, error) {
	c.logger.Debug("creating pull request", "title", pr.Title, "draft", pr.Draft)
	stdout, stderr, err := c.exec(ctx, pr.Args()...)
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("gh pr create failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("gh pr create failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
