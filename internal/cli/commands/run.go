package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/dbt"
	"github.com/ae-kit/tools/internal/shell"
)

// DbtOptions holds options for the run and test commands.
type DbtOptions struct {
	Prod     bool
	Selector dbt.Selector
	Watch    bool
	Debounce time.Duration
}

type dbtVerb struct {
	name    string // run, test
	title   string // Run, Test
	command func(c *dbt.Client, selection, target string) shell.Command
}

var (
	dbtRun  = dbtVerb{name: "run", title: "Run", command: (*dbt.Client).RunCommand}
	dbtTest = dbtVerb{name: "test", title: "Test", command: (*dbt.Client).TestCommand}
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newDbtCommand(dbtRun)
}

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	return newDbtCommand(dbtTest)
}

func newDbtCommand(verb dbtVerb) *cobra.Command {
	opts := &DbtOptions{Debounce: dbt.DefaultDebounce}
	cmd := &cobra.Command{
		Use:   verb.name + " [model]",
		Short: fmt.Sprintf("%s a dbt model and optionally its parents or children", verb.title),
		Long: fmt.Sprintf(`%s a dbt model picked from the models directory.

Graph operators are added with flags. Depths must be attached to the flag:
  -u / --upstream        +model      (-u=2 or --upstream=2: 2+model)
  -d / --downstream      model+      (-d=2 or --downstream=2: model+2)
  -a / --waterfall       @model      (cannot be combined with -u or -d)

The dbt command is appended to your shell history so it can be re-run by hand.`, verb.title),
		Example: fmt.Sprintf(`  tools %[1]s
  tools %[1]s stg_orders -u -d=2
  tools %[1]s fct_revenue --prod
  tools %[1]s stg_orders --watch`, verb.name),
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
			return runDbt(cmd.Context(), cc, verb, model, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.Prod, "prod", "p", false, "Run against the production target")
	f.StringVarP(&opts.Selector.Upstream, "upstream", "u", "", "Include parents: + for all, 1-9 for that many levels")
	f.StringVarP(&opts.Selector.Downstream, "downstream", "d", "", "Include children: + for all, 1-9 for that many levels")
	f.BoolVarP(&opts.Selector.Waterfall, "waterfall", "a", false, "Include children and their parents (@model)")
	f.BoolVar(&opts.Watch, "watch", false, "Re-run whenever the model file is saved")
	f.Lookup("upstream").NoOptDefVal = "+"
	f.Lookup("downstream").NoOptDefVal = "+"

	return cmd
}

func runDbt(ctx context.Context, cc *CommandContext, verb dbtVerb, name string, opts *DbtOptions) error {
	// Bad selector flags must fail before any prompt.
	if err := opts.Selector.Validate(); err != nil {
		return err
	}

	modelsDir := cc.Cfg.ModelsPath()
	if name == "" {
		models, err := dbt.DiscoverModels(modelsDir)
		if err != nil {
			return err
		}
		name, err = pickOne(ctx, cc, fmt.Sprintf("Select A Model To %s", verb.title), dbt.Names(models))
		if err != nil {
			return err
		}
	}
	model, err := dbt.FindModel(modelsDir, name)
	if err != nil {
		return err
	}

	selection, err := opts.Selector.Build(model.Name)
	if err != nil {
		return err
	}
	target := ""
	if opts.Prod {
		target = cc.Cfg.Dbt.ProdTarget
	}
	c := verb.command(cc.Dbt(), selection, target)

	once := func(ctx context.Context) error {
		err := cc.Runner.Run(ctx, c)
		cc.AppendShellHistory(c)
		if err != nil {
			cc.Printer.Error(fmt.Sprintf("An error occurred while running the dbt models: %s", c.String()))
			return reported(err)
		}
		return nil
	}

	err = once(ctx)
	if !opts.Watch {
		return err
	}

	cc.Printer.Info(fmt.Sprintf("Watching %s for changes (ctrl+c to stop)", model.Path))
	return dbt.Watch(ctx, model.Path, opts.Debounce, cc.Logger, once)
}
