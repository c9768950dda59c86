package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "run", want: "run"},
		{in: "+stg_orders+2", want: "+stg_orders+2"},
		{in: "config.materialized:view", want: "config.materialized:view"},
		{in: "", want: "''"},
		{in: "two words", want: "'two words'"},
		{in: "it's", want: `'it'"'"'s'`},
		{in: "**/.DS_Store", want: "'**/.DS_Store'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestCommandString(t *testing.T) {
	c := Cmd("git", "commit", "-m", "Feat: add orders")
	assert.Equal(t, "git commit -m 'Feat: add orders'", c.String())
	assert.Equal(t, []string{"git", "commit", "-m", "Feat: add orders"}, c.Argv())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 130, ExitCode(&ExitError{Command: "gum", Code: 130}))
	assert.Equal(t, -1, ExitCode(assert.AnError))
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, ok := LookPath("sh"); !ok {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Output(t *testing.T) {
	requireSh(t)
	r := NewExecRunner(nil)

	out, err := r.Output(context.Background(), Cmd("sh", "-c", `printf ' M a.go\n?? b.go\n\n'`))
	require.NoError(t, err)
	assert.Equal(t, " M a.go\n?? b.go", out, "leading status columns are preserved")
}

func TestExecRunner_ExitError(t *testing.T) {
	requireSh(t)
	r := NewExecRunner(nil)

	_, err := r.Output(context.Background(), Cmd("sh", "-c", "echo boom >&2; exit 3"))
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Stderr, "boom")
	assert.Equal(t, "sh exited with status 3: boom", err.Error())
}

func TestExecRunner_Run(t *testing.T) {
	requireSh(t)
	var stdout, stderr bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	c := Cmd("sh", "-c", `echo "$GREETING"; echo warn >&2`)
	c.Env = []string{"GREETING=hello"}
	require.NoError(t, r.Run(context.Background(), c))

	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "warn\n", stderr.String())
}

func TestExecRunner_NotFound(t *testing.T) {
	r := NewExecRunner(nil)
	err := r.Run(context.Background(), Cmd("definitely-not-installed-tool"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}
