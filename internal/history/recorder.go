package history

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ae-kit/tools/internal/shell"
)

// Sink receives recorded entries. *Store implements it.
type Sink interface {
	Record(ctx context.Context, e Entry) (Entry, error)
}

// Recorder is a shell.Runner that logs every Run to a Sink. Output calls
// (prompts and git queries) pass through unrecorded.
type Recorder struct {
	shell.Runner
	sink       Sink
	subcommand string
	logger     *slog.Logger
	now        func() time.Time
}

// NewRecorder wraps runner. A nil sink records nothing.
func NewRecorder(runner shell.Runner, sink Sink, subcommand string, logger *slog.Logger) *Recorder {
	return &Recorder{Runner: runner, sink: sink, subcommand: subcommand, logger: logger, now: time.Now}
}

// Run implements shell.Runner.
func (r *Recorder) Run(ctx context.Context, c shell.Command) error {
	start := r.now()
	err := r.Runner.Run(ctx, c)
	if r.sink == nil {
		return err
	}

	dir := c.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	entry := Entry{
		Subcommand: r.subcommand,
		Line:       c.String(),
		ExitCode:   shell.ExitCode(err),
		Duration:   r.now().Sub(start),
		Dir:        dir,
		StartedAt:  start,
	}
	if _, recErr := r.sink.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		r.logger.Warn("failed to record command history", "command", entry.Line, "error", recErr)
	}
	return err
}
