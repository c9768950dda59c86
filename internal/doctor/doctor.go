// Package doctor checks that the external tools the CLI drives are
// installed.
package doctor

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ae-kit/tools/internal/shell"
)

// Tool is an external program to check.
type Tool struct {
	Name        string
	VersionArgs []string
	Required    bool
	Hint        string // install instructions shown when missing
}

// DefaultTools are the programs tools shells out to.
var DefaultTools = []Tool{
	{Name: "git", VersionArgs: []string{"--version"}, Required: true, Hint: "https://git-scm.com/downloads"},
	{Name: "dbt", VersionArgs: []string{"--version"}, Required: true, Hint: "pip install dbt-core"},
	{Name: "aws", VersionArgs: []string{"--version"}, Hint: "brew install awscli"},
	{Name: "gh", VersionArgs: []string{"--version"}, Hint: "brew install gh"},
	{Name: "gum", VersionArgs: []string{"--version"}, Hint: "brew install gum"},
	{Name: "brew", VersionArgs: []string{"--version"}, Hint: "https://brew.sh"},
}

// Result is the outcome of checking one tool.
type Result struct {
	Tool    Tool
	Path    string
	Version string
	Found   bool
	Err     error
}

// Report holds results in the order the tools were given.
type Report struct {
	Results []Result
}

// OK reports whether every required tool was found.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if res.Tool.Required && !res.Found {
			return false
		}
	}
	return true
}

// Lookup returns the result for name.
func (r Report) Lookup(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Tool.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

// Checker runs the checks.
type Checker struct {
	Runner   shell.Runner
	LookPath func(string) (string, bool)
	// Timeout bounds each --version call.
	Timeout time.Duration
}

// NewChecker returns a Checker using the real PATH.
func NewChecker(runner shell.Runner) *Checker {
	return &Checker{Runner: runner, LookPath: shell.LookPath, Timeout: 10 * time.Second}
}

// Check checks tools concurrently.
func (c *Checker) Check(ctx context.Context, tools []Tool) Report {
	results := make([]Result, len(tools))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, tool := range tools {
		g.Go(func() error {
			results[i] = c.check(ctx, tool)
			return nil
		})
	}
	_ = g.Wait()
	return Report{Results: results}
}

func (c *Checker) check(ctx context.Context, tool Tool) Result {
	res := Result{Tool: tool}
	path, ok := c.LookPath(tool.Name)
	if !ok {
		return res
	}
	res.Path = path
	res.Found = true

	if len(tool.VersionArgs) == 0 {
		return res
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	out, err := c.Runner.Output(ctx, shell.Command{Name: tool.Name, Args: tool.VersionArgs})
	if err != nil {
		res.Err = err
		return res
	}
	res.Version = firstLine(out)
	return res
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
