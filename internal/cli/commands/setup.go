package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/dbt"
	"github.com/ae-kit/tools/internal/git"
	"github.com/ae-kit/tools/internal/history"
	"github.com/ae-kit/tools/internal/prompt"
	"github.com/ae-kit/tools/internal/pullrequest"
	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/ui"
)

// PRCreator opens pull requests. *pullrequest.Creator implements it.
type PRCreator interface {
	Create(ctx context.Context, pr pullrequest.PR) (string, error)
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Printer  *ui.Printer
	Prompter prompt.Prompter
	// Runner runs git, dbt and aws. The root command wraps it in a
	// history.Recorder when history is enabled.
	Runner shell.Runner
	// History is nil when history is disabled or the database could not
	// be opened.
	History  *history.Store
	PRs      PRCreator
	LookPath func(string) (string, bool)
}

type commandContextKey struct{}

// errNoContext is returned when a command runs without the root command
// having prepared its dependencies.
var errNoContext = errors.New("command context not initialised")

// WithCommandContext stores cc in ctx.
func WithCommandContext(ctx context.Context, cc *CommandContext) context.Context {
	return context.WithValue(ctx, commandContextKey{}, cc)
}

// GetCommandContext retrieves the CommandContext stored by the root command.
func GetCommandContext(ctx context.Context) (*CommandContext, error) {
	if ctx != nil {
		if cc, ok := ctx.Value(commandContextKey{}).(*CommandContext); ok {
			return cc, nil
		}
	}
	return nil, errNoContext
}

// Git returns a git client for the working directory.
func (cc *CommandContext) Git() *git.Client {
	return git.New(cc.Runner, "")
}

// Dbt returns a dbt client for the configured project.
func (cc *CommandContext) Dbt() *dbt.Client {
	return dbt.NewClient(cc.Runner, cc.Cfg.Dbt.ProjectDir, dbt.Targets{
		Prod: cc.Cfg.Dbt.ProdTarget,
		CI:   cc.Cfg.Dbt.CITarget,
	})
}

// Layout returns the dbt models layout.
func (cc *CommandContext) Layout() dbt.Layout {
	return dbt.Layout{
		ModelsDir:  cc.Cfg.ModelsPath(),
		MartsDir:   cc.Cfg.Dbt.MartsDir,
		SchemaDirs: cc.Cfg.Dbt.SchemaDirs,
	}
}

// AppendShellHistory writes c to the user's shell history file so it can
// be re-run by hand. Failures are logged, never returned.
func (cc *CommandContext) AppendShellHistory(c shell.Command) {
	if !cc.Cfg.History.Enabled {
		return
	}
	if err := history.AppendShell(cc.Cfg.History.ShellFile, c.String()); err != nil {
		cc.Logger.Warn("failed to append shell history", "file", cc.Cfg.History.ShellFile, "error", err)
	}
}

func (cc *CommandContext) lookPath(name string) (string, bool) {
	if cc.LookPath != nil {
		return cc.LookPath(name)
	}
	return shell.LookPath(name)
}

// ReportedError is returned by commands that already printed a message for
// the failure. The root command exits non-zero without printing it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

func reported(err error) error {
	return &ReportedError{Err: err}
}

// pickOne runs a single-select filter and returns the choice.
func pickOne(ctx context.Context, cc *CommandContext, header string, options []string) (string, error) {
	picked, err := cc.Prompter.Filter(ctx, header, options, false)
	if err != nil {
		return "", err
	}
	if len(picked) == 0 {
		return "", fmt.Errorf("nothing selected for %q", header)
	}
	return picked[0], nil
}
