package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/dbt"
	"github.com/ae-kit/tools/internal/modeldoc"
)

// NewModelDocCommand creates the model-doc command.
func NewModelDocCommand() *cobra.Command {
	var lastCTE bool
	cmd := &cobra.Command{
		Use:   "model-doc [model]",
		Short: "Scaffold the .yml documentation for a dbt model",
		Long: `Scan a model's SQL for its output columns and write <model>.yml next to it.

Columns that have a doc block in documentation/column_level are described
with {{ doc("<column>") }}; the rest get a TODO description. A model that
already has a .yml file is never overwritten.

Use --is-star-statement when the model ends in "select * from <cte>" and
the columns should be taken from the last CTE.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			model := ""
			if len(args) > 0 {
				model = args[0]
			}
			return runModelDoc(cmd.Context(), cc, model, lastCTE)
		},
	}

	cmd.Flags().BoolVarP(&lastCTE, "is-star-statement", "s", false, "Take columns from the last CTE")

	return cmd
}

func runModelDoc(ctx context.Context, cc *CommandContext, model string, lastCTE bool) error {
	modelsDir := cc.Cfg.ModelsPath()
	if model == "" {
		models, err := dbt.DiscoverModels(modelsDir)
		if err != nil {
			return err
		}
		model, err = pickOne(ctx, cc, "Select A Model To Document", dbt.Names(models))
		if err != nil {
			return err
		}
	}

	res, err := modeldoc.Scaffold(ctx, modeldoc.Options{
		ModelsDir: modelsDir,
		DocsDir:   cc.Cfg.DocsPath(),
		Model:     model,
		LastCTE:   lastCTE,
	})
	if errors.Is(err, modeldoc.ErrDocExists) {
		cc.Printer.Error("A .yml file already exists for the selected model")
		return reported(err)
	}
	if err != nil {
		return err
	}

	cc.Printer.Primary(fmt.Sprintf("Scanned model located at %s for yml generation", strings.ToUpper(res.SQLPath)))
	if len(res.Scan.Skipped) > 0 {
		cc.Printer.Warn(fmt.Sprintf("Skipped expressions without an alias: %s", strings.Join(res.Scan.Skipped, ", ")))
	}
	if len(res.Scan.Unresolved) > 0 {
		cc.Printer.Warn(fmt.Sprintf("Could not resolve: %s", strings.Join(res.Scan.Unresolved, ", ")))
	}
	cc.Printer.Success(fmt.Sprintf("Created %s with %d columns", res.Path, len(res.Scan.Columns)))
	return nil
}
