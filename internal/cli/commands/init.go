package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/doctor"
	"github.com/ae-kit/tools/internal/shell"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Local bool
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a tools-config.yaml file",
		Long: `Create the tools configuration for your team.

init checks that Homebrew and gum are installed, then asks for your team's
ticket tag and name and writes ~/.tools/tools-config.yaml. With --local the
file is written to ./.tools/ instead, for a project-specific setup.`,
		Example: `  # Create ~/.tools/tools-config.yaml
  tools init

  # Create ./.tools/tools-config.yaml, replacing any existing file
  tools init --local --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			return runInit(cmd.Context(), cc, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Local, "local", false, "Write the config to ./.tools instead of ~/.tools")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing config without asking")

	return cmd
}

func runInit(ctx context.Context, cc *CommandContext, opts *InitOptions) error {
	if err := checkTerminalRequirements(ctx, cc); err != nil {
		return err
	}

	path, err := config.DefaultPath(opts.Local)
	if err != nil {
		return err
	}

	if config.Exists(path) && !opts.Force {
		overwrite, err := cc.Prompter.Confirm(ctx,
			"A .tools directory & tools-config.yaml file already exist. Do you want to overwrite them?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			cc.Printer.Error("Init Cancelled")
			return nil
		}
	}

	teamTag, err := cc.Prompter.Input(ctx, "What is your team's Linear Tag?", config.DefaultTeamTag)
	if err != nil {
		return err
	}
	teamName, err := cc.Prompter.Input(ctx, "What is your team's name?", config.DefaultTeamName)
	if err != nil {
		return err
	}

	cfg := config.Default(orDefault(teamTag, config.DefaultTeamTag), orDefault(teamName, config.DefaultTeamName))
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}

	cc.Printer.Success("Initialized .tools Directory")
	cc.Printer.Plainf("Config written to %s", path)
	return nil
}

// checkTerminalRequirements reports whether Homebrew and gum are installed
// and offers to install gum through Homebrew.
func checkTerminalRequirements(ctx context.Context, cc *CommandContext) error {
	var brew, gum doctor.Tool
	for _, t := range doctor.DefaultTools {
		switch t.Name {
		case "brew":
			brew = t
		case "gum":
			gum = t
		}
	}

	checker := doctor.NewChecker(cc.Runner)
	checker.LookPath = cc.lookPath
	report := checker.Check(ctx, []doctor.Tool{brew, gum})

	brewResult, _ := report.Lookup("brew")
	if brewResult.Found {
		cc.Printer.Success("Homebrew Found")
	} else {
		cc.Printer.Warn(fmt.Sprintf("Homebrew Not Found, install it from %s", brew.Hint))
	}

	if gumResult, _ := report.Lookup("gum"); gumResult.Found {
		cc.Printer.Success("Gum Found")
		return nil
	}
	if !brewResult.Found {
		cc.Printer.Warn("Gum Not Found, prompts will run in-process until it is installed")
		return nil
	}

	install, err := cc.Prompter.Confirm(ctx, "Gum Not Found. Install it with Homebrew?", true)
	if err != nil {
		return err
	}
	if !install {
		cc.Printer.Warn(fmt.Sprintf("Skipping gum, install it later with %q", gum.Hint))
		return nil
	}
	if err := cc.Runner.Run(ctx, shell.Cmd("brew", "install", "gum")); err != nil {
		return fmt.Errorf("failed to install gum: %w", err)
	}
	cc.Printer.Success("Gum Installed")
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
