package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/history"
)

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	env.cc.History = store

	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local)
	for i, e := range []history.Entry{
		{Subcommand: "run", Line: "dbt run -s stg_orders", Duration: 1500 * time.Millisecond},
		{Subcommand: "commit", Line: "git push", ExitCode: 1},
		{Subcommand: "run", Line: "dbt run -s +fct_revenue --target prod"},
	} {
		e.StartedAt = start.Add(time.Duration(i) * time.Minute)
		_, err := store.Record(context.Background(), e)
		require.NoError(t, err)
	}

	require.NoError(t, env.execute(t, NewHistoryCommand(), "--command", "run", "-n", "1"))

	out := env.out.String()
	assert.Contains(t, out, "dbt run -s +fct_revenue --target prod")
	assert.Contains(t, out, "2026-03-02 09:32:00")
	assert.NotContains(t, out, "stg_orders")
	assert.NotContains(t, out, "git push")
}

func TestHistoryEmpty(t *testing.T) {
	env := newTestEnv(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	env.cc.History = store

	require.NoError(t, env.execute(t, NewHistoryCommand()))
	assert.Contains(t, env.out.String(), "No commands recorded yet")
}

func TestHistoryDisabled(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.execute(t, NewHistoryCommand()))
	assert.Contains(t, env.out.String(), "Command history is not being recorded")
}
