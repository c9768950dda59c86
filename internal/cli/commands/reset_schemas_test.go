package commands

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetSchemas(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		confirm string
		want    []string
	}{
		{
			name:    "local",
			confirm: "Are you sure you want to reset the schemas in the Local environment?",
			want: []string{
				"dbt run-operation local_prod_copy_schemas",
				"dbt run -s config.materialized:view",
			},
		},
		{
			name:    "ci",
			args:    []string{"--ci-cd"},
			confirm: "Are you sure you want to reset the schemas in the CI/CD environment?",
			want: []string{
				"dbt run-operation prod_to_ci_cd_copy_schemas --target prod",
				"dbt run -s config.materialized:view --target github",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.prompter.Answer(true)

			require.NoError(t, env.execute(t, NewResetSchemasCommand(), tt.args...))
			assert.Equal(t, tt.want, env.runner.Lines())
			assert.Equal(t, []string{tt.confirm}, env.prompter.Headers())
			assert.Contains(t, env.out.String(), "Schemas reset successfully!")
		})
	}
}

func TestResetSchemasDeclined(t *testing.T) {
	env := newTestEnv(t)
	env.prompter.Answer(false)

	require.NoError(t, env.execute(t, NewResetSchemasCommand()))
	assert.Empty(t, env.runner.Lines())
	assert.Contains(t, env.errOut.String(), "Reset operation aborted!!")
}

func TestResetSchemasStopsAtFailedStep(t *testing.T) {
	env := newTestEnv(t)
	histFile := env.withShellHistory(t)
	env.runner.On("local_prod_copy_schemas", "", errors.New("dbt exited with status 2"))
	env.prompter.Answer(true)

	err := env.execute(t, NewResetSchemasCommand())

	var rep *ReportedError
	require.ErrorAs(t, err, &rep)
	assert.Equal(t, []string{"dbt run-operation local_prod_copy_schemas"}, env.runner.Lines())
	assert.Contains(t, env.errOut.String(), "Error resetting schemas")

	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "dbt run-operation local_prod_copy_schemas\n", string(data))
}
