package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/dbt"
)

// NewCompareObjectsCommand creates the compare-objects command.
func NewCompareObjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare-objects",
		Short: "Compare a model in your schema with production",
		Long: `Run the compare_objects macro for a model.

You pick a schema (utilities, sources, transform, dw or one of the mart_*
folders) and a model inside it, then enter the model's primary key. Your
comparison schema is read from $DBT_SNOWFLAKE_TEST_SCHEMA (see
dbt.comparison-schema-env) and combined with the production schema name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runCompareObjects(cmd.Context(), cc)
		},
	}
}

func runCompareObjects(ctx context.Context, cc *CommandContext) error {
	envName := cc.Cfg.Dbt.ComparisonSchemaEnv
	comparison := strings.ToLower(strings.TrimSpace(os.Getenv(envName)))
	if comparison == "" {
		return fmt.Errorf("%s is not set; export your dbt test schema or add it to .env", envName)
	}

	layout := cc.Layout()
	schemas, err := layout.Schemas()
	if err != nil {
		return err
	}
	schema, err := pickOne(ctx, cc, "Select A Schema", schemas)
	if err != nil {
		return err
	}

	models, err := dbt.DiscoverModels(layout.SchemaDir(schema))
	if err != nil {
		return err
	}
	model, err := pickOne(ctx, cc, "Select A Model To Run", dbt.Names(models))
	if err != nil {
		return err
	}

	pk, err := cc.Prompter.Input(ctx, "What is the primary_key?", "")
	if err != nil {
		return err
	}
	if pk = strings.TrimSpace(pk); pk == "" {
		return errors.New("primary key cannot be empty")
	}

	args := dbt.CompareArgs{
		ComparisonSchema: comparison,
		ProdSchema:       schema,
		Object:           model,
		PrimaryKey:       pk,
	}
	c := cc.Dbt().RunOperationCommand(cc.Cfg.Dbt.CompareMacro, args.String(), "")
	err = cc.Runner.Run(ctx, c)
	cc.AppendShellHistory(c)
	if err != nil {
		cc.Printer.Error("An error occurred while comparing the objects")
		return reported(err)
	}
	return nil
}
