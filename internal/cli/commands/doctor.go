package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/doctor"
	"github.com/ae-kit/tools/internal/ui"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the tools this CLI drives are installed",
		Long: `Check for git, dbt, aws, gh, gum and Homebrew and print their versions.

git and dbt are required; doctor exits non-zero when either is missing.
The others are only needed by some commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runDoctor(cmd.Context(), cc)
		},
	}
}

func runDoctor(ctx context.Context, cc *CommandContext) error {
	checker := doctor.NewChecker(cc.Runner)
	checker.LookPath = cc.lookPath
	report := checker.Check(ctx, doctor.DefaultTools)

	var missing []string
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status, detail := "ok", res.Version
		switch {
		case !res.Found && res.Tool.Required:
			status, detail = "missing", res.Tool.Hint
			missing = append(missing, res.Tool.Name)
		case !res.Found:
			status, detail = "not installed", res.Tool.Hint
		case res.Err != nil:
			status, detail = "error", res.Err.Error()
		}
		rows = append(rows, []string{res.Tool.Name, status, detail})
	}
	ui.Table(cc.Printer.Out, []string{"Tool", "Status", "Version"}, rows)

	if !report.OK() {
		return errors.New("required tools are missing: " + strings.Join(missing, ", "))
	}
	cc.Printer.Success("All required tools found")
	return nil
}
