package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/cli/commands"
	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/prompt"
	"github.com/ae-kit/tools/internal/theme"
	"github.com/ae-kit/tools/internal/ui"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real config or .env is picked up, and returns HOME.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("NO_COLOR", "1")
	t.Chdir(t.TempDir())
	return home
}

func writeUserConfig(t *testing.T, home, content string) string {
	t.Helper()
	path := filepath.Join(home, ".tools", config.FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	code = a.execute(context.Background(), root, args)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	isolate(t)

	code, out, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, fmt.Sprintf("tools v%s\n", Version), out)
}

func TestMissingConfig(t *testing.T) {
	isolate(t)

	code, _, errOut := run(t, "commit")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "No tools-config.yaml File Found")
	assert.Contains(t, errOut, "Run 'tools init' to create a tools-config.yaml file")
}

func TestConfigShowThroughRoot(t *testing.T) {
	home := isolate(t)
	path := writeUserConfig(t, home, "general:\n  team-tag: ENG\n")

	code, out, errOut := run(t, "config", "show", "--no-color")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Config file: "+path)
	assert.Contains(t, out, "ENG")
	assert.FileExists(t, filepath.Join(home, ".tools", "history.db"))
}

func TestExcludedCommand(t *testing.T) {
	home := isolate(t)
	writeUserConfig(t, home, "excluded-commands:\n  - cmd_s3_sync\n")

	code, _, errOut := run(t, "s3-sync")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `command "s3-sync" is disabled by excluded-commands`)
}

func TestHideExcluded(t *testing.T) {
	home := isolate(t)
	writeUserConfig(t, home, "excluded-commands:\n  - s3-sync\n  - cmd_reset_schemas\n")

	root := NewRootCmd()
	hideExcluded(root)

	hidden := map[string]bool{}
	for _, c := range root.Commands() {
		hidden[c.Name()] = c.Hidden
	}
	assert.True(t, hidden["s3-sync"])
	assert.True(t, hidden["reset-schemas"])
	assert.False(t, hidden["commit"])
}

func TestTopLevelName(t *testing.T) {
	root := NewRootCmd()
	show, _, err := root.Find([]string{"config", "show"})
	require.NoError(t, err)

	assert.Equal(t, "config", topLevelName(show))
	assert.Equal(t, "config show", subcommandPath(show))

	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", topLevelName(runCmd))
}

func TestExitCode(t *testing.T) {
	quiet := config.Default("DSA", "Data")
	quiet.General.RaiseOnInterrupt = false
	raising := config.Default("DSA", "Data")

	tests := []struct {
		name       string
		cfg        *config.Config
		err        error
		want       int
		wantStderr string
	}{
		{name: "success", err: nil, want: 0},
		{name: "aborted quietly", cfg: quiet, err: prompt.ErrAborted, want: 0, wantStderr: "Aborted!"},
		{name: "aborted raising", cfg: raising, err: fmt.Errorf("select model: %w", prompt.ErrAborted), want: 1, wantStderr: "Aborted!"},
		{name: "aborted before config", err: prompt.ErrAborted, want: 1, wantStderr: "Aborted!"},
		{name: "no config", err: config.ErrConfigNotFound, want: 1, wantStderr: "No tools-config.yaml File Found"},
		{name: "already reported", err: &commands.ReportedError{Err: errors.New("dbt failed")}, want: 1},
		{name: "generic", err: errors.New("boom"), want: 1, wantStderr: "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			p := ui.NewPlainPrinter(&out, &errOut, theme.Default())

			assert.Equal(t, tt.want, exitCode(p, tt.cfg, tt.err))
			assert.Empty(t, out.String())
			if tt.wantStderr == "" {
				assert.Empty(t, errOut.String())
			} else {
				assert.Contains(t, errOut.String(), tt.wantStderr)
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)

	code, out, _ := run(t, "completion", "bash")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "bash completion")
}
