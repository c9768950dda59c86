// Package cli provides the command-line interface for tools.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ae-kit/tools/internal/cli/commands"
	"github.com/ae-kit/tools/internal/cli/config"
	"github.com/ae-kit/tools/internal/history"
	"github.com/ae-kit/tools/internal/prompt"
	"github.com/ae-kit/tools/internal/pullrequest"
	"github.com/ae-kit/tools/internal/shell"
	"github.com/ae-kit/tools/internal/theme"
	"github.com/ae-kit/tools/internal/ui"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// app holds what PersistentPreRunE prepared, so Execute can report errors
// in the user's theme and close the history database.
type app struct {
	cfgFile string
	cc      *commands.CommandContext
}

// skipSetup lists commands that run without loading config.
var skipSetup = map[string]bool{
	"help":             true,
	"completion":       true,
	"__complete":       true,
	"__completeNoDesc": true,
	"version":          true,
}

// optionalConfig lists commands that can run before tools-config.yaml exists.
var optionalConfig = map[string]bool{
	"init":   true,
	"doctor": true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tools",
		Short: "Interactive git, dbt and S3 workflows",
		Long: `tools wraps everyday git, dbt and AWS S3 workflows behind interactive prompts.

Each command asks for what it needs, then runs git, dbt, aws or gh for you.
Settings are read from tools-config.yaml in ./tools, ./.tools or ~/.tools;
run 'tools init' to create one.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipSetup[cmd.Name()] {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: first tools-config.yaml in ./tools, ./.tools, ~/.tools)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("prompter", "", "Prompt backend (auto|gum|huh)")
	rootCmd.PersistentFlags().String("theme", "", "Colour theme to use for this run")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	_ = rootCmd.RegisterFlagCompletionFunc("prompter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "gum", "huh"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names, _ := theme.List()
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewCommitCommand())
	rootCmd.AddCommand(commands.NewBranchNewCommand())
	rootCmd.AddCommand(commands.NewPRCreateCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewTestCommand())
	rootCmd.AddCommand(commands.NewS3SyncCommand())
	rootCmd.AddCommand(commands.NewResetSchemasCommand())
	rootCmd.AddCommand(commands.NewCompareObjectsCommand())
	rootCmd.AddCommand(commands.NewModelDocCommand())
	rootCmd.AddCommand(commands.NewThemeSelectCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// setup loads config and theme and stores the command's dependencies in
// its context.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	flags := cmd.Root().PersistentFlags()
	verbose, _ := flags.GetBool("verbose")
	handler := newLogHandler(cmd.ErrOrStderr(), verbose)
	logger := slog.New(handler)

	name := topLevelName(cmd)
	load := config.Load
	if optionalConfig[name] {
		load = config.LoadOptional
	}
	cfg, err := load(a.cfgFile, flags)
	if err != nil {
		return err
	}
	if cfg.General.Verbose {
		handler.SetLevel(log.DebugLevel)
	}
	if cfg.Path != "" {
		logger.Debug("using config file", "path", cfg.Path)
	}

	if cfg.IsExcluded(name) {
		return fmt.Errorf("command %q is disabled by excluded-commands in %s", name, cfg.Path)
	}

	palette, err := theme.Load(cfg.Theme.Name)
	if err != nil {
		return err
	}
	printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), palette, cfg.General.NoColor)

	// Prompts get the bare runner so gum invocations are not recorded.
	execRunner := shell.NewExecRunner(logger)
	prompter, err := prompt.New(prompt.Options{
		Kind:      prompt.Kind(cfg.General.Prompter),
		EscAborts: cfg.General.RaiseOnEscape,
	}, palette, execRunner)
	if err != nil {
		return err
	}

	cc := &commands.CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Printer:  printer,
		Prompter: prompter,
		Runner:   execRunner,
		PRs:      pullrequest.NewCreator(logger),
	}
	if cfg.History.Enabled && cfg.History.DBPath != "" {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			logger.Warn("command history disabled", "path", cfg.History.DBPath, "error", err)
		} else {
			cc.History = store
			cc.Runner = history.NewRecorder(execRunner, store, subcommandPath(cmd), logger)
		}
	}
	a.cc = cc

	ctx := config.WithLogger(cmd.Context(), logger)
	cmd.SetContext(commands.WithCommandContext(ctx, cc))
	return nil
}

func (a *app) close() {
	if a.cc != nil && a.cc.History != nil {
		_ = a.cc.History.Close()
	}
}

func newLogHandler(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "tools",
	})
}

// topLevelName returns the name of the root's child that cmd belongs to,
// so "config show" is excluded and loaded like "config".
func topLevelName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

func subcommandPath(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// hideExcluded hides excluded commands from help. The config is looked up
// without flags since they have not been parsed yet; PersistentPreRunE
// enforces the exclusion with the final config.
func hideExcluded(root *cobra.Command) {
	cfg, err := config.LoadOptional("", nil)
	if err != nil {
		return
	}
	for _, c := range root.Commands() {
		if cfg.IsExcluded(c.Name()) {
			c.Hidden = true
		}
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	hideExcluded(root)
	return a.execute(ctx, root, os.Args[1:])
}

func (a *app) execute(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.close()

	var (
		cfg     *config.Config
		printer *ui.Printer
	)
	if a.cc != nil {
		cfg, printer = a.cc.Cfg, a.cc.Printer
	}
	if printer == nil {
		printer = ui.NewPrinter(root.OutOrStdout(), root.ErrOrStderr(), theme.Default(), false)
	}
	return exitCode(printer, cfg, err)
}

// exitCode reports err and returns the exit code for it.
func exitCode(p *ui.Printer, cfg *config.Config, err error) int {
	var rep *commands.ReportedError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, prompt.ErrAborted):
		p.Aborted()
		if cfg != nil && !cfg.General.RaiseOnInterrupt {
			return 0
		}
		return 1
	case errors.Is(err, config.ErrConfigNotFound):
		p.Error("No tools-config.yaml File Found")
		p.Error("Run 'tools init' to create a tools-config.yaml file")
		return 1
	case errors.As(err, &rep):
		return 1
	default:
		p.Error("Error: " + err.Error())
		return 1
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tools.

To load completions:

Bash:
  $ source <(tools completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tools completion bash > /etc/bash_completion.d/tools
  # macOS:
  $ tools completion bash > $(brew --prefix)/etc/bash_completion.d/tools

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tools completion zsh > "${fpath[1]}/_tools"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tools completion fish | source

  # To load completions for each session, execute once:
  $ tools completion fish > ~/.config/fish/completions/tools.fish

PowerShell:
  PS> tools completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
