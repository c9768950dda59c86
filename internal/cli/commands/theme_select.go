package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/theme"
)

// NewThemeSelectCommand creates the theme-select command.
func NewThemeSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "theme-select [name]",
		Short: "Select a colour theme",
		Long: `Select the colour theme used for prompts and messages.

Built-in themes are listed together with any YAML theme files in
./tools/themes, ./.tools/themes and ~/.tools/themes. The choice is saved as
theme.name in the config file that was loaded; the rest of the file is left
untouched.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			names, _ := theme.List()
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCommandContext(cmd.Context())
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runThemeSelect(cmd.Context(), cc, name)
		},
	}
}

func runThemeSelect(ctx context.Context, cc *CommandContext, name string) error {
	if cc.Cfg.Path == "" {
		return config.ErrConfigNotFound
	}

	if name == "" {
		names, err := theme.List()
		if err != nil {
			return err
		}
		name, err = pickOne(ctx, cc, "Select A Theme", names)
		if err != nil {
			return err
		}
	}
	if _, err := theme.Load(name); err != nil {
		return err
	}

	if err := config.SetThemeName(cc.Cfg.Path, name); err != nil {
		return err
	}
	cc.Printer.Success(fmt.Sprintf("Theme %s selected", name))
	return nil
}
