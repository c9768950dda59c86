package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/ui"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the tools configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show every configuration value after defaults, the config file,
TOOLS_* environment variables and flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runConfigShow(cmd.Context(), cc)
		},
	}
}

func runConfigShow(_ context.Context, cc *CommandContext) error {
	values, err := config.Flatten(cc.Cfg)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprint(values[k])})
	}

	source := cc.Cfg.Path
	if source == "" {
		source = "(defaults)"
	}
	cc.Printer.Primary("Config file: " + source)
	ui.Table(cc.Printer.Out, []string{"Key", "Value"}, rows)
	return nil
}
