package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/modeldoc"
)

func TestModelDoc(t *testing.T) {
	env := newTestEnv(t)
	root := env.withProject(t)

	require.NoError(t, env.execute(t, NewModelDocCommand(), "stg_orders", "--is-star-statement"))

	sqlPath := filepath.Join(root, "models", "1_sources", "shop", "stg_orders.sql")
	ymlPath := filepath.Join(root, "models", "1_sources", "shop", "stg_orders.yml")
	data, err := os.ReadFile(ymlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: stg_orders")
	assert.Contains(t, string(data), "name: customer_id")
	assert.Contains(t, string(data), `{{ doc("order_id") }}`)

	out := env.out.String()
	assert.Contains(t, out, "Scanned model located at "+strings.ToUpper(sqlPath))
	assert.Contains(t, out, "Created "+ymlPath+" with 3 columns")
	assert.Empty(t, env.runner.Lines())
}

func TestModelDocPicksModel(t *testing.T) {
	env := newTestEnv(t)
	root := env.withProject(t)
	env.prompter.Select("dim_customers")

	require.NoError(t, env.execute(t, NewModelDocCommand()))

	assert.Equal(t, "Select A Model To Document", env.prompter.Asked()[0].Header)
	assert.FileExists(t, filepath.Join(root, "models", "3_dw", "dim_customers.yml"))
}

func TestModelDocExisting(t *testing.T) {
	env := newTestEnv(t)
	env.withProject(t)

	err := env.execute(t, NewModelDocCommand(), "stg_customers")

	var rep *ReportedError
	require.ErrorAs(t, err, &rep)
	assert.ErrorIs(t, err, modeldoc.ErrDocExists)
	assert.Contains(t, env.errOut.String(), "A .yml file already exists for the selected model")
}
