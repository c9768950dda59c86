package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendShell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".zsh_history")

	require.NoError(t, AppendShell(path, "dbt run -s +orders"))
	require.NoError(t, AppendShell(path, "dbt run-operation compare_objects --args '{a: b}'"))
	require.NoError(t, AppendShell("", "ignored"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dbt run -s +orders\ndbt run-operation compare_objects --args '{a: b}'\n", string(data))
}

func TestStore_RecordAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i, e := range []Entry{
		{Subcommand: "run", Line: "dbt run -s orders", Duration: 1500 * time.Millisecond},
		{Subcommand: "commit", Line: "git push", ExitCode: 1},
		{Subcommand: "run", Line: "dbt run -s +orders", Dir: "/repo"},
	} {
		e.StartedAt = base.Add(time.Duration(i) * time.Minute)
		got, err := store.Record(ctx, e)
		require.NoError(t, err)
		assert.Len(t, got.ID, 36)
	}

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "dbt run -s +orders", all[0].Line, "newest first")
	assert.Equal(t, "/repo", all[0].Dir)
	assert.Equal(t, 1, all[1].ExitCode)
	assert.Equal(t, 1500*time.Millisecond, all[2].Duration)
	assert.True(t, base.Equal(all[2].StartedAt))

	runs, err := store.List(ctx, ListOptions{Subcommand: "run", Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "dbt run -s +orders", runs[0].Line)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tools", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Record(context.Background(), Entry{Subcommand: "run", Line: "dbt run -s x"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err, "reopening skips applied migrations")
	defer func() { _ = store.Close() }()
	entries, err := store.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Failures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := NewWithDB(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO commands").WillReturnError(errors.New("disk I/O error"))
	_, err = store.Record(ctx, Entry{Subcommand: "run", Line: "dbt run"})
	assert.ErrorContains(t, err, "failed to record command: disk I/O error")

	mock.ExpectQuery("SELECT id, subcommand").WillReturnError(errors.New("database is locked"))
	_, err = store.List(ctx, ListOptions{})
	assert.ErrorContains(t, err, "failed to list history: database is locked")

	rows := sqlmock.NewRows([]string{"id", "subcommand", "line", "exit_code", "duration_ms", "dir", "started_at"}).
		AddRow("a", "run", "dbt run", "not-a-number", 0, "", 0)
	mock.ExpectQuery("SELECT id, subcommand").WillReturnRows(rows)
	_, err = store.List(ctx, ListOptions{})
	assert.ErrorContains(t, err, "failed to scan history entry")

	assert.NoError(t, mock.ExpectationsWereMet())
}

type memorySink struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memorySink) Record(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e, m.err
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	failure := &shell.ExitError{Command: "dbt", Code: 2}
	runner := testutil.NewFakeRunner().
		On("dbt test", "", failure).
		On("git branch", "main", nil)
	sink := &memorySink{}
	rec := NewRecorder(runner, sink, "run", testutil.NewTestLogger(t))

	require.NoError(t, rec.Run(ctx, shell.Command{Name: "dbt", Args: []string{"run", "-s", "+orders"}, Dir: "/repo"}))
	err := rec.Run(ctx, shell.Cmd("dbt", "test", "-s", "orders"))
	assert.ErrorIs(t, err, failure)

	out, err := rec.Output(ctx, shell.Cmd("git", "branch", "--show-current"))
	require.NoError(t, err)
	assert.Equal(t, "main", out)

	require.Len(t, sink.entries, 2, "Output calls are not recorded")
	assert.Equal(t, "run", sink.entries[0].Subcommand)
	assert.Equal(t, "dbt run -s +orders", sink.entries[0].Line)
	assert.Equal(t, "/repo", sink.entries[0].Dir)
	assert.Equal(t, 0, sink.entries[0].ExitCode)
	assert.Equal(t, 2, sink.entries[1].ExitCode)
	assert.NotEmpty(t, sink.entries[1].Dir)
}

func TestRecorder_SinkErrorsAreLogged(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger()
	sink := &memorySink{err: errors.New("readonly database")}
	rec := NewRecorder(testutil.NewFakeRunner(), sink, "run", logger)

	require.NoError(t, rec.Run(context.Background(), shell.Cmd("dbt", "run")))
	assert.Contains(t, logs.String(), "failed to record command history")
	assert.Contains(t, logs.String(), "readonly database")
}

func TestRecorder_NilSink(t *testing.T) {
	runner := testutil.NewFakeRunner()
	rec := NewRecorder(runner, nil, "run", testutil.NewTestLogger(t))
	require.NoError(t, rec.Run(context.Background(), shell.Cmd("dbt", "run")))
	assert.Len(t, runner.Calls(), 1)
}
