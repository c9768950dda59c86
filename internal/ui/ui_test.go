package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/prompt"
	"github.com/ae-kit/tools/internal/theme"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewPrinter(out, errOut, theme.Default(), false), out, errOut
}

func TestPrinterNonTTYIsPlain(t *testing.T) {
	p, out, errOut := newTestPrinter()
	assert.False(t, p.Color())

	p.Primary("Creating a New Branch")
	p.Success("Initialized .tools Directory")
	p.Plainf("%d models", 3)
	p.Error("Sync Cancelled")
	p.Aborted()

	assert.Equal(t, "Creating a New Branch\nInitialized .tools Directory\n3 models\n", out.String())
	assert.Equal(t, "Sync Cancelled\nAborted!\n", errOut.String())
}

func TestSpinWithoutTerminal(t *testing.T) {
	p, out, _ := newTestPrinter()

	called := false
	err := p.Spin(context.Background(), "Pulling Down From Main", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "Pulling Down From Main\n", out.String())

	boom := errors.New("boom")
	err = p.Spin(context.Background(), "again", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSpinInterrupt(t *testing.T) {
	m := spinModel{spinner: spinner.New(), title: "Running dbt"}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.ErrorIs(t, next.(spinModel).err, prompt.ErrAborted)

	next, _ = m.Update(doneMsg{err: errors.New("dbt failed")})
	assert.EqualError(t, next.(spinModel).err, "dbt failed")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"tool", "status"}, [][]string{{"git", "ok"}, {"gum", "missing"}})

	got := buf.String()
	assert.Contains(t, got, "TOOL")
	assert.Contains(t, got, "STATUS")
	assert.Contains(t, got, "│ gum  │ missing │")
	assert.Contains(t, got, "┌")
}

func TestCapwords(t *testing.T) {
	assert.Equal(t, "Main", Capwords("main"))
	assert.Equal(t, "Release Candidate", Capwords("RELEASE candidate"))
	assert.Equal(t, "", Capwords(""))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Add Order Totals", Title("add-order_totals"))
}
