package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/theme"
)

func withConfigFile(t *testing.T, env *testEnv) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, config.Write(path, env.cc.Cfg))
	env.cc.Cfg.Path = path
	return path
}

func TestThemeSelect(t *testing.T) {
	env := newTestEnv(t)
	path := withConfigFile(t, env)

	require.NoError(t, env.execute(t, NewThemeSelectCommand(), "nord"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: nord")
	assert.NotContains(t, string(data), config.DefaultTheme)
	assert.Contains(t, env.out.String(), "Theme nord selected")
}

func TestThemeSelectPicks(t *testing.T) {
	env := newTestEnv(t)
	path := withConfigFile(t, env)
	env.prompter.Select("dracula")

	require.NoError(t, env.execute(t, NewThemeSelectCommand()))

	assert.Contains(t, env.prompter.Asked()[0].Options, "iron_gold")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: dracula")
}

func TestThemeSelectErrors(t *testing.T) {
	t.Run("unknown theme", func(t *testing.T) {
		env := newTestEnv(t)
		path := withConfigFile(t, env)
		before, err := os.ReadFile(path)
		require.NoError(t, err)

		err = env.execute(t, NewThemeSelectCommand(), "no_such_theme")
		assert.ErrorIs(t, err, theme.ErrThemeNotFound)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("no config file", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.execute(t, NewThemeSelectCommand(), "nord")
		assert.ErrorIs(t, err, config.ErrConfigNotFound)
	})
}
