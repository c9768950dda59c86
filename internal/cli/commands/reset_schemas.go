package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/dbt"
)

// NewResetSchemasCommand creates the reset-schemas command.
func NewResetSchemasCommand() *cobra.Command {
	var ci bool
	cmd := &cobra.Command{
		Use:   "reset-schemas",
		Short: "Replace your dbt schemas with a copy of production",
		Long: `Drop your current schemas and copy production into your target environment.

Locally this runs the local_prod_copy_schemas macro and rebuilds views. With
--ci-cd it runs prod_to_ci_cd_copy_schemas against the production target
and rebuilds views in the CI target. The second step only runs when the
first succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runResetSchemas(cmd.Context(), cc, ci)
		},
	}

	cmd.Flags().BoolVar(&ci, "ci-cd", false, "Reset the schemas in the CI/CD environment")

	return cmd
}

func runResetSchemas(ctx context.Context, cc *CommandContext, ci bool) error {
	env, label := "Local", "local"
	if ci {
		env, label = "CI/CD", "CI/CD"
	}
	cc.Printer.Primary(fmt.Sprintf("Resetting schemas in the %s environment...", label))

	ok, err := cc.Prompter.Confirm(ctx,
		fmt.Sprintf("Are you sure you want to reset the schemas in the %s environment?", env), false)
	if err != nil {
		return err
	}
	if !ok {
		cc.Printer.Error("Reset operation aborted!!")
		return nil
	}

	if err := cc.Dbt().ResetSchemas(ctx, ci); err != nil {
		cc.Printer.Error("Error resetting schemas")
		var step *dbt.StepError
		if errors.As(err, &step) {
			cc.AppendShellHistory(step.Command)
		}
		return reported(err)
	}

	cc.Printer.Success("Schemas reset successfully!")
	return nil
}
