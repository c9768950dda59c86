package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/cli/config"
	clitest "github.com/ae-kit/tools/internal/cli/testutil"
	"github.com/ae-kit/tools/internal/pullrequest"
	"github.com/ae-kit/tools/internal/testutil"
	"github.com/ae-kit/tools/internal/theme"
	"github.com/ae-kit/tools/internal/ui"
)

type fakePRs struct {
	created []pullrequest.PR
	url     string
	err     error
}

func (f *fakePRs) Create(_ context.Context, pr pullrequest.PR) (string, error) {
	f.created = append(f.created, pr)
	return f.url, f.err
}

// testEnv is a CommandContext wired to fakes, with the printer's output
// captured.
type testEnv struct {
	cc       *CommandContext
	runner   *testutil.FakeRunner
	prompter *clitest.FakePrompter
	prs      *fakePRs
	out      *bytes.Buffer
	errOut   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default(config.DefaultTeamTag, config.DefaultTeamName)
	cfg.History.Enabled = false
	cfg.Dbt.ProjectDir = t.TempDir()

	env := &testEnv{
		runner:   testutil.NewFakeRunner(),
		prompter: clitest.NewFakePrompter(),
		prs:      &fakePRs{url: "https://github.com/acme/analytics/pull/7"},
		out:      new(bytes.Buffer),
		errOut:   new(bytes.Buffer),
	}
	env.cc = &CommandContext{
		Cfg:      cfg,
		Logger:   testutil.NewTestLogger(t),
		Printer:  ui.NewPlainPrinter(env.out, env.errOut, theme.Default()),
		Prompter: env.prompter,
		Runner:   env.runner,
		PRs:      env.prs,
		LookPath: installed("git", "dbt", "aws", "gh", "gum", "brew"),
	}
	return env
}

// installed returns a LookPath that finds only names.
func installed(names ...string) func(string) (string, bool) {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) (string, bool) {
		if set[name] {
			return "/opt/homebrew/bin/" + name, true
		}
		return "", false
	}
}

// withProject points the config at a fresh copy of the test dbt project.
func (e *testEnv) withProject(t *testing.T) string {
	t.Helper()
	root := clitest.SetupDbtProject(t)
	e.cc.Cfg.Dbt.ProjectDir = root
	return root
}

// withShellHistory enables history and returns the shell history file.
func (e *testEnv) withShellHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".zsh_history")
	e.cc.Cfg.History.Enabled = true
	e.cc.Cfg.History.ShellFile = path
	return path
}

func (e *testEnv) execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	if args == nil {
		// cobra falls back to os.Args when args are nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(WithCommandContext(context.Background(), e.cc))
}

func TestGetCommandContext(t *testing.T) {
	_, err := GetCommandContext(context.Background())
	assert.ErrorIs(t, err, errNoContext)

	cc := &CommandContext{}
	got, err := GetCommandContext(WithCommandContext(context.Background(), cc))
	require.NoError(t, err)
	assert.Same(t, cc, got)
}

func TestCommandWithoutContext(t *testing.T) {
	cmd := NewCommitCommand()
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.ErrorIs(t, cmd.Execute(), errNoContext)
}

func TestReportedError(t *testing.T) {
	base := assert.AnError
	err := reported(base)

	var rep *ReportedError
	require.ErrorAs(t, err, &rep)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())
}

func TestAppendShellHistoryDisabled(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), ".zsh_history")
	env.cc.Cfg.History.ShellFile = path

	env.cc.AppendShellHistory(env.cc.Dbt().RunCommand("stg_orders", ""))
	assert.NoFileExists(t, path)
}
