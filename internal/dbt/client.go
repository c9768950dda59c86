package dbt

import (
	"context"
	"fmt"

	"github.com/ae-kit/tools/internal/shell"
)

// Targets names the dbt profile targets used for production and CI runs.
type Targets struct {
	Prod string
	CI   string
}

// Client runs dbt through a shell.Runner.
type Client struct {
	runner  shell.Runner
	dir     string
	targets Targets
}

// NewClient returns a Client running dbt in dir.
func NewClient(runner shell.Runner, dir string, targets Targets) *Client {
	return &Client{runner: runner, dir: dir, targets: targets}
}

// StepError reports which dbt invocation of a multi-step operation failed.
type StepError struct {
	Command shell.Command
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command.String(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (c *Client) command(args ...string) shell.Command {
	return shell.Command{Name: "dbt", Args: args, Dir: c.dir}
}

func withTarget(args []string, target string) []string {
	if target == "" {
		return args
	}
	return append(args, "--target", target)
}

// RunCommand returns `dbt run -s <selection> [--target t]`.
func (c *Client) RunCommand(selection, target string) shell.Command {
	return c.command(withTarget([]string{"run", "-s", selection}, target)...)
}

// TestCommand returns `dbt test -s <selection> [--target t]`.
func (c *Client) TestCommand(selection, target string) shell.Command {
	return c.command(withTarget([]string{"test", "-s", selection}, target)...)
}

// RunOperationCommand returns `dbt run-operation <macro> [--args a] [--target t]`.
func (c *Client) RunOperationCommand(macro, args, target string) shell.Command {
	argv := []string{"run-operation", macro}
	if args != "" {
		argv = append(argv, "--args", args)
	}
	return c.command(withTarget(argv, target)...)
}

// Run executes `dbt run` for selection.
func (c *Client) Run(ctx context.Context, selection, target string) error {
	return c.runner.Run(ctx, c.RunCommand(selection, target))
}

// Test executes `dbt test` for selection.
func (c *Client) Test(ctx context.Context, selection, target string) error {
	return c.runner.Run(ctx, c.TestCommand(selection, target))
}

// RunOperation executes a dbt macro.
func (c *Client) RunOperation(ctx context.Context, macro, args, target string) error {
	return c.runner.Run(ctx, c.RunOperationCommand(macro, args, target))
}

// ResetCommands returns the steps that rebuild development schemas from
// production: copy the schemas, then rebuild the views on top of them.
func (c *Client) ResetCommands(ci bool) []shell.Command {
	if ci {
		return []shell.Command{
			c.RunOperationCommand("prod_to_ci_cd_copy_schemas", "", c.targets.Prod),
			c.RunCommand("config.materialized:view", c.targets.CI),
		}
	}
	return []shell.Command{
		c.RunOperationCommand("local_prod_copy_schemas", "", ""),
		c.RunCommand("config.materialized:view", ""),
	}
}

// ResetSchemas runs ResetCommands in order, stopping at the first failure
// with a *StepError.
func (c *Client) ResetSchemas(ctx context.Context, ci bool) error {
	for _, cmd := range c.ResetCommands(ci) {
		if err := c.runner.Run(ctx, cmd); err != nil {
			return &StepError{Command: cmd, Err: err}
		}
	}
	return nil
}

// CompareArgs are the arguments of the compare_objects macro.
type CompareArgs struct {
	ComparisonSchema string // the developer's schema prefix, lower-cased
	ProdSchema       string
	Object           string
	PrimaryKey       string
}

// String renders the YAML mapping passed to --args.
func (a CompareArgs) String() string {
	return fmt.Sprintf("{comparison_schema: %s_%s, prod_schema: %s, object_name: %s, primary_key: '%s'}",
		a.ComparisonSchema, a.ProdSchema, a.ProdSchema, a.Object, a.PrimaryKey)
}
