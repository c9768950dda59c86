package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor(t *testing.T) {
	env := newTestEnv(t)
	env.cc.LookPath = installed("git", "dbt", "gh")
	env.runner.
		On("git --version", "git version 2.44.0\n", nil).
		On("dbt --version", "Core:\n  - installed: 1.8.0\n", nil)

	require.NoError(t, env.execute(t, NewDoctorCommand()))

	out := env.out.String()
	assert.Contains(t, out, "git version 2.44.0")
	assert.Contains(t, out, "Core:")
	assert.Contains(t, out, "not installed")
	assert.Contains(t, out, "brew install awscli")
	assert.Contains(t, out, "All required tools found")
}

func TestDoctorMissingRequired(t *testing.T) {
	env := newTestEnv(t)
	env.cc.LookPath = installed("git")

	err := env.execute(t, NewDoctorCommand())
	require.Error(t, err)
	assert.Equal(t, "required tools are missing: dbt", err.Error())
	assert.Contains(t, env.out.String(), "pip install dbt-core")
	assert.NotContains(t, env.out.String(), "All required tools found")
}
