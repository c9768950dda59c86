package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/testutil"
)

func TestParseStatus(t *testing.T) {
	out := " M models/orders.sql\n?? models/new model.sql\nR  old.sql -> new.sql\nA  \"with space.sql\"\n\n"

	got := ParseStatus(out)
	require.Len(t, got, 4)
	assert.Equal(t, StatusEntry{Code: " M", Path: "models/orders.sql", Line: " M models/orders.sql"}, got[0])
	assert.Equal(t, "??", got[1].Code)
	assert.Equal(t, "models/new model.sql", got[1].Path)
	assert.Equal(t, "new.sql", got[2].Path)
	assert.Equal(t, "with space.sql", got[3].Path)
}

func TestParseStatusEscapes(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: `?? "caf\303\251.sql"`, want: "café.sql"},
		{line: `?? "tab\there.sql"`, want: "tab\there.sql"},
		{line: `?? "back\\slash.sql"`, want: `back\slash.sql`},
		{line: `?? "say \"hi\".sql"`, want: `say "hi".sql`},
		{line: `R  a.sql -> "n\303\251w.sql"`, want: "néw.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := ParseStatus(tt.line)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Path)
		})
	}
}

func TestDefaultBranch(t *testing.T) {
	ctx := context.Background()

	runner := testutil.NewFakeRunner().On("rev-parse --abbrev-ref origin/HEAD", "origin/main\n", nil)
	branch, err := New(runner, "").DefaultBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	runner = testutil.NewFakeRunner().On("rev-parse", "origin/HEAD", nil)
	_, err = New(runner, "").DefaultBranch(ctx)
	assert.Error(t, err)

	runner = testutil.NewFakeRunner().On("rev-parse", "", &shell.ExitError{Command: "git", Code: 128})
	_, err = New(runner, "").DefaultBranch(ctx)
	assert.ErrorContains(t, err, "failed to resolve default branch")
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	runner := testutil.NewFakeRunner().On("branch --show-current", "feature/DSA-12-orders\n", nil)
	c := New(runner, "/repo")

	branch, err := c.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature/DSA-12-orders", branch)

	require.NoError(t, c.Checkout(ctx, "main"))
	require.NoError(t, c.Pull(ctx))
	require.NoError(t, c.CreateBranch(ctx, "feature/x"))
	require.NoError(t, c.PushUpstream(ctx, "feature/x"))
	require.NoError(t, c.Add(ctx))
	require.NoError(t, c.Add(ctx, "a.sql", "-b.sql"))
	require.NoError(t, c.Commit(ctx, "Feat: it's done"))
	require.NoError(t, c.Push(ctx))

	assert.Equal(t, []string{
		"git branch --show-current",
		"git checkout main",
		"git pull",
		"git checkout -b feature/x",
		"git push --set-upstream origin feature/x",
		"git add .",
		"git add -- a.sql -b.sql",
		"git commit -m Feat: it's done",
		"git push",
	}, runner.Lines())

	for _, call := range runner.Calls() {
		assert.Equal(t, "/repo", call.Dir)
	}
}
