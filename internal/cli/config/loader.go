package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when no tools-config.yaml exists in any of
// the searched locations.
var ErrConfigNotFound = errors.New("no tools-config.yaml file found")

// EnvPrefix prefixes environment overrides: TOOLS_GENERAL__TEAM_TAG sets
// general.team-tag.
const EnvPrefix = "TOOLS_"

// EnvConfigPath names an explicit config file, like --config.
const EnvConfigPath = "TOOLS_CONFIG"

type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// flagKeys maps root persistent flags onto config keys. Flags not listed
// here are not config values.
var flagKeys = map[string]string{
	"prompter": "general.prompter",
	"verbose":  "general.verbose",
	"no-color": "general.no-color",
	"theme":    "theme.name",
}

// SearchPaths returns the config file candidates in priority order: the
// development checkout, the project, then the user's home directory.
func SearchPaths() []string {
	paths := []string{
		filepath.Join("tools", FileName),
		filepath.Join(".tools", FileName),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tools", FileName))
	}
	return paths
}

// FindConfigFile returns the config file to use.
// Priority: explicit path > $TOOLS_CONFIG > SearchPaths.
func FindConfigFile(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfigPath)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if Exists(p) {
			return p, nil
		}
	}
	return "", ErrConfigNotFound
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// A missing config file is an error.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return load(cfgFile, flags, true)
}

// LoadOptional is Load for commands that can run before a config file
// exists (init, doctor). Without a file the result is built from defaults,
// env vars and flags, and Path is empty.
func LoadOptional(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return load(cfgFile, flags, false)
}

func load(cfgFile string, flags *pflag.FlagSet, required bool) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	path, err := FindConfigFile(cfgFile)
	switch {
	case err == nil:
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		configFileUsed = path
	case required || cfgFile != "":
		return nil, err
	}

	// 3. Load environment variables (TOOLS_ prefix)
	// Transform: TOOLS_AWS_INFO__DAG_ROOT -> aws-info.dag-root
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Path = configFileUsed
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		if cfg.Path != "" {
			return nil, fmt.Errorf("invalid config %s: %w", cfg.Path, err)
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]interface{} {
	schemaDirs := make(map[string]interface{}, len(DefaultSchemaDirs))
	for name, dir := range DefaultSchemaDirs {
		schemaDirs[name] = dir
	}
	return map[string]interface{}{
		"general.team-tag":                   DefaultTeamTag,
		"general.team-name":                  DefaultTeamName,
		"general.raise-on-escape":            true,
		"general.raise-on-interrupt":         true,
		"general.prompter":                   DefaultPrompter,
		"general.verbose":                    false,
		"general.no-color":                   false,
		"commits.conventional-commits.types": DefaultCommitTypes,
		"branches.branch-prefixes":           []string{},
		"dbt.project-dir":                    ".",
		"dbt.models-dir":                     DefaultModelsDir,
		"dbt.docs-dir":                       DefaultDocsDir,
		"dbt.prod-target":                    DefaultProdTarget,
		"dbt.ci-target":                      DefaultCITarget,
		"dbt.compare-macro":                  DefaultCompareMacro,
		"dbt.comparison-schema-env":          DefaultSchemaEnv,
		"dbt.marts-dir":                      DefaultMartsDir,
		"dbt.schema-dirs":                    schemaDirs,
		"pull-requests.draft":                true,
		"history.enabled":                    true,
		"history.shell-file":                 DefaultShellHistory,
		"history.db-path":                    DefaultHistoryDB,
		"theme.name":                         DefaultTheme,
		"excluded-commands":                  []string{},
	}
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", ".")
	return strings.ReplaceAll(s, "_", "-")
}

// normalize fills empty lists and expands ~ and environment references.
func (c *Config) normalize() {
	if len(c.Commits.ConventionalCommits.Types) == 0 {
		c.Commits.ConventionalCommits.Types = append([]string(nil), DefaultCommitTypes...)
	}
	if len(c.Dbt.SchemaDirs) == 0 {
		c.Dbt.SchemaDirs = make(map[string]string, len(DefaultSchemaDirs))
		for name, dir := range DefaultSchemaDirs {
			c.Dbt.SchemaDirs[name] = dir
		}
	}

	c.Theme.Name = strings.TrimSpace(os.ExpandEnv(c.Theme.Name))
	if c.Theme.Name == "" {
		c.Theme.Name = DefaultTheme
	}
	c.General.Prompter = strings.ToLower(strings.TrimSpace(c.General.Prompter))

	c.AWS.DagRoot = ExpandPath(c.AWS.DagRoot)
	c.AWS.PluginsRoot = ExpandPath(c.AWS.PluginsRoot)
	c.PullRequests.TemplatesDir = ExpandPath(c.PullRequests.TemplatesDir)
	c.History.ShellFile = ExpandPath(c.History.ShellFile)
	c.History.DBPath = ExpandPath(c.History.DBPath)
	c.Dbt.ProjectDir = ExpandPath(c.Dbt.ProjectDir)
}

var teamTagPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.General.Prompter {
	case "auto", "gum", "huh":
	default:
		return fmt.Errorf("general.prompter must be one of auto, gum, huh (got %q)", c.General.Prompter)
	}
	if c.General.TeamTag != "" && !teamTagPattern.MatchString(c.General.TeamTag) {
		return fmt.Errorf("general.team-tag %q must be letters and digits, starting with a letter", c.General.TeamTag)
	}
	return nil
}

// ModelsPath returns the models directory inside the dbt project.
func (c *Config) ModelsPath() string {
	return filepath.Join(c.Dbt.ProjectDir, c.Dbt.ModelsDir)
}

// DocsPath returns the documentation directory inside the dbt project.
func (c *Config) DocsPath() string {
	return filepath.Join(c.Dbt.ProjectDir, c.Dbt.DocsDir)
}

// IsExcluded reports whether the named command is listed in
// excluded-commands. Entries may use the legacy cmd_ module names, so
// "cmd_s3_sync" excludes s3-sync.
func (c *Config) IsExcluded(name string) bool {
	for _, ex := range c.ExcludedCommands {
		if NormalizeCommandName(ex) == name {
			return true
		}
	}
	return false
}

// NormalizeCommandName maps "cmd_s3_sync", "cmd_s3-sync" and "s3-sync" to
// the cobra command name "s3-sync".
func NormalizeCommandName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.TrimSuffix(name, ".py")
	name = strings.TrimPrefix(name, "cmd_")
	return strings.ReplaceAll(name, "_", "-")
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// Flatten returns cfg as flat dotted keys, e.g. "general.team-tag".
func Flatten(cfg *Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var nested map[string]interface{}
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	flat := koanf.New(".")
	if err := flat.Load(confmap.Provider(nested, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten config: %w", err)
	}
	return flat.All(), nil
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
