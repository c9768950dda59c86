package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/history"
	"github.com/ae-kit/tools/internal/ui"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit   int
	Command string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the git, dbt and aws commands tools has run",
		Long: `List recently recorded commands, newest first.

Every git, dbt and aws command run by tools is recorded in
history.db-path with its exit code, duration and working directory.
Recording is turned off with history.enabled: false.`,
		Example: `  tools history
  tools history --command run --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runHistory(cmd.Context(), cc, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", history.DefaultLimit, "Number of entries to show")
	cmd.Flags().StringVar(&opts.Command, "command", "", "Only show entries recorded by this tools command")

	return cmd
}

func runHistory(ctx context.Context, cc *CommandContext, opts *HistoryOptions) error {
	if cc.History == nil {
		cc.Printer.Warn("Command history is not being recorded (history.enabled is false)")
		return nil
	}

	entries, err := cc.History.List(ctx, history.ListOptions{Limit: opts.Limit, Subcommand: opts.Command})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		cc.Printer.Info("No commands recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			e.Subcommand,
			strconv.Itoa(e.ExitCode),
			e.Duration.Round(time.Millisecond).String(),
			e.Line,
		})
	}
	ui.Table(cc.Printer.Out, []string{"Started", "Command", "Exit", "Duration", "Line"}, rows)
	return nil
}
