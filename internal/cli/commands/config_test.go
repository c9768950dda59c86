package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShow(t *testing.T) {
	env := newTestEnv(t)
	env.cc.Cfg.General.TeamTag = "ENG"

	cmd := NewConfigCommand()
	require.NoError(t, env.execute(t, cmd, "show"))

	out := env.out.String()
	assert.Contains(t, out, "Config file: (defaults)")
	assert.Contains(t, out, "general.team-tag")
	assert.Contains(t, out, "ENG")
	assert.Contains(t, out, "dbt.schema-dirs.sources")
	assert.Contains(t, out, "1_sources")
}

func TestConfigShowPath(t *testing.T) {
	env := newTestEnv(t)
	path := withConfigFile(t, env)

	require.NoError(t, env.execute(t, NewConfigCommand(), "show"))
	assert.Contains(t, env.out.String(), "Config file: "+path)
}
