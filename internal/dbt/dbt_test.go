package dbt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/testutil"
)

func TestSelectorBuild(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selector
		want    string
		wantErr error
	}{
		{name: "plain", sel: Selector{}, want: "orders"},
		{name: "all parents", sel: Selector{Upstream: "+"}, want: "+orders"},
		{name: "two levels up", sel: Selector{Upstream: "2"}, want: "2+orders"},
		{name: "all children", sel: Selector{Downstream: "+"}, want: "orders+"},
		{name: "three levels down", sel: Selector{Downstream: "3"}, want: "orders+3"},
		{name: "both", sel: Selector{Upstream: "1", Downstream: "+"}, want: "1+orders+"},
		{name: "waterfall", sel: Selector{Waterfall: true}, want: "@orders"},
		{name: "waterfall with upstream", sel: Selector{Waterfall: true, Upstream: "+"}, wantErr: ErrWaterfallConflict},
		{name: "zero depth", sel: Selector{Upstream: "0"}, wantErr: ErrInvalidSelector},
		{name: "two digit depth", sel: Selector{Downstream: "10"}, wantErr: ErrInvalidSelector},
		{name: "word", sel: Selector{Downstream: "all"}, wantErr: ErrInvalidSelector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sel.Build("orders")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, tt.sel.Validate(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorMessages(t *testing.T) {
	assert.Equal(t, "cannot run --waterfall with --upstream or --downstream", ErrWaterfallConflict.Error())
	_, err := Selector{Upstream: "x"}.Build("m")
	assert.EqualError(t, err, `invalid prefix. Please specify a number between 1 and 9 (got "x")`)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func setupModels(t *testing.T) string {
	t.Helper()
	models := filepath.Join(t.TempDir(), "models")
	writeFile(t, filepath.Join(models, "1_sources", "stg_orders.sql"), "select 1")
	writeFile(t, filepath.Join(models, "2_transform", "int_orders.sql"), "select 1")
	writeFile(t, filepath.Join(models, "2_transform", "int_orders.yml"), "version: 2")
	writeFile(t, filepath.Join(models, "4_marts", "mart_sales", "fct_sales.sql"), "select 1")
	writeFile(t, filepath.Join(models, "4_marts", "mart_finance", "fct_revenue.sql"), "select 1")
	writeFile(t, filepath.Join(models, "4_marts", "mart_finance", "notes.md"), "")
	writeFile(t, filepath.Join(models, ".hidden", "skip.sql"), "select 1")
	return models
}

func TestDiscoverModels(t *testing.T) {
	models := setupModels(t)

	got, err := DiscoverModels(models)
	require.NoError(t, err)
	assert.Equal(t, []string{"fct_revenue", "fct_sales", "int_orders", "stg_orders"}, Names(got))
	assert.Equal(t, filepath.Join(models, "2_transform", "int_orders.sql"), got[2].Path)

	m, err := FindModel(models, "fct_sales")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(models, "4_marts", "mart_sales", "fct_sales.sql"), m.Path)

	_, err = FindModel(models, "nope")
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = DiscoverModels(filepath.Join(models, "missing"))
	assert.Error(t, err)
}

func TestFindYAML(t *testing.T) {
	models := setupModels(t)

	path, err := FindYAML(models, "int_orders")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(models, "2_transform", "int_orders.yml"), path)

	path, err = FindYAML(models, "stg_orders")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLayout(t *testing.T) {
	models := setupModels(t)
	l := Layout{
		ModelsDir:  models,
		MartsDir:   "4_marts",
		SchemaDirs: map[string]string{"utilities": "0_utilities", "sources": "1_sources", "transform": "2_transform", "dw": "3_dw"},
	}

	schemas, err := l.Schemas()
	require.NoError(t, err)
	assert.Equal(t, []string{"utilities", "sources", "transform", "dw", "mart_finance", "mart_sales"}, schemas)

	assert.Equal(t, filepath.Join(models, "1_sources"), l.SchemaDir("sources"))
	assert.Equal(t, filepath.Join(models, "4_marts", "mart_sales"), l.SchemaDir("mart_sales"))

	marts, err := MartSchemas(models, "5_missing")
	require.NoError(t, err)
	assert.Empty(t, marts)
}

func TestClientCommands(t *testing.T) {
	runner := testutil.NewFakeRunner()
	c := NewClient(runner, "", Targets{Prod: "prod", CI: "github"})
	ctx := context.Background()

	require.NoError(t, c.Run(ctx, "+orders", ""))
	require.NoError(t, c.Run(ctx, "orders", "prod"))
	require.NoError(t, c.Test(ctx, "orders+", ""))
	args := CompareArgs{ComparisonSchema: "dbt_jdoe", ProdSchema: "sources", Object: "stg_orders", PrimaryKey: "order_id"}
	require.NoError(t, c.RunOperation(ctx, "compare_objects", args.String(), ""))

	assert.Equal(t, []string{
		"dbt run -s +orders",
		"dbt run -s orders --target prod",
		"dbt test -s orders+",
		"dbt run-operation compare_objects --args {comparison_schema: dbt_jdoe_sources, prod_schema: sources, object_name: stg_orders, primary_key: 'order_id'}",
	}, runner.Lines())
}

func TestResetSchemas(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		runner := testutil.NewFakeRunner()
		c := NewClient(runner, "", Targets{Prod: "prod", CI: "github"})
		require.NoError(t, c.ResetSchemas(ctx, false))
		assert.Equal(t, []string{
			"dbt run-operation local_prod_copy_schemas",
			"dbt run -s config.materialized:view",
		}, runner.Lines())
	})

	t.Run("ci", func(t *testing.T) {
		runner := testutil.NewFakeRunner()
		c := NewClient(runner, "", Targets{Prod: "prod", CI: "github"})
		require.NoError(t, c.ResetSchemas(ctx, true))
		assert.Equal(t, []string{
			"dbt run-operation prod_to_ci_cd_copy_schemas --target prod",
			"dbt run -s config.materialized:view --target github",
		}, runner.Lines())
	})

	t.Run("stops at first failure", func(t *testing.T) {
		failure := &shell.ExitError{Command: "dbt", Code: 2}
		runner := testutil.NewFakeRunner().On("run-operation", "", failure)
		c := NewClient(runner, "", Targets{})

		err := c.ResetSchemas(ctx, false)
		require.Error(t, err)
		var step *StepError
		require.True(t, errors.As(err, &step))
		assert.Equal(t, "dbt run-operation local_prod_copy_schemas", step.Command.String())
		assert.ErrorIs(t, err, failure)
		assert.Len(t, runner.Calls(), 1)
	})
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.sql")
	writeFile(t, path, "select 1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, testutil.NewTestLogger(t), func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for fired := false; !fired; {
		select {
		case <-calls:
			fired = true
		case <-tick.C:
			writeFile(t, path, "select 2")
			writeFile(t, filepath.Join(dir, "other.sql"), "select 3")
		case <-deadline:
			t.Fatal("watch never fired")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
