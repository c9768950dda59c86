// Package config loads and writes tools-config.yaml.
//
// Values are layered with koanf: built-in defaults, then the first config file
// found, then TOOLS_* environment variables, then explicitly set root flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	General          GeneralConfig      `koanf:"general" yaml:"general"`
	Commits          CommitsConfig      `koanf:"commits" yaml:"commits"`
	Branches         BranchesConfig     `koanf:"branches" yaml:"branches"`
	AWS              AWSConfig          `koanf:"aws-info" yaml:"aws-info"`
	Dbt              DbtConfig          `koanf:"dbt" yaml:"dbt"`
	PullRequests     PullRequestsConfig `koanf:"pull-requests" yaml:"pull-requests"`
	History          HistoryConfig      `koanf:"history" yaml:"history"`
	Theme            ThemeConfig        `koanf:"theme" yaml:"theme"`
	ExcludedCommands []string           `koanf:"excluded-commands" yaml:"excluded-commands"`

	// Path is the config file the values were read from. Empty when running
	// on defaults only.
	Path string `koanf:"-" yaml:"-"`
}

// GeneralConfig holds team identity and prompt behaviour.
type GeneralConfig struct {
	TeamTag          string `koanf:"team-tag" yaml:"team-tag"`
	TeamName         string `koanf:"team-name" yaml:"team-name"`
	RaiseOnEscape    bool   `koanf:"raise-on-escape" yaml:"raise-on-escape"`
	RaiseOnInterrupt bool   `koanf:"raise-on-interrupt" yaml:"raise-on-interrupt"`
	Prompter         string `koanf:"prompter" yaml:"prompter"`
	Verbose          bool   `koanf:"verbose" yaml:"verbose,omitempty"`
	NoColor          bool   `koanf:"no-color" yaml:"no-color,omitempty"`
}

// CommitsConfig holds commit message settings.
type CommitsConfig struct {
	ConventionalCommits ConventionalCommitsConfig `koanf:"conventional-commits" yaml:"conventional-commits"`
}

// ConventionalCommitsConfig lists the commit type tags offered by commit.
type ConventionalCommitsConfig struct {
	Types []string `koanf:"types" yaml:"types"`
}

// BranchesConfig holds branch naming settings.
type BranchesConfig struct {
	BranchPrefixes []string `koanf:"branch-prefixes" yaml:"branch-prefixes"`
}

// AWSConfig maps local Airflow folders to their S3 locations.
type AWSConfig struct {
	DagRoot           string `koanf:"dag-root" yaml:"dag-root"`
	PluginsRoot       string `koanf:"plugins-root" yaml:"plugins-root"`
	S3DagLocation     string `koanf:"s3-dag-location" yaml:"s3-dag-location"`
	S3PluginsLocation string `koanf:"s3-plugins-location" yaml:"s3-plugins-location"`
}

// DbtConfig describes the dbt project layout and targets.
type DbtConfig struct {
	ProjectDir          string            `koanf:"project-dir" yaml:"project-dir"`
	ModelsDir           string            `koanf:"models-dir" yaml:"models-dir"`
	DocsDir             string            `koanf:"docs-dir" yaml:"docs-dir"`
	ProdTarget          string            `koanf:"prod-target" yaml:"prod-target"`
	CITarget            string            `koanf:"ci-target" yaml:"ci-target"`
	CompareMacro        string            `koanf:"compare-macro" yaml:"compare-macro"`
	ComparisonSchemaEnv string            `koanf:"comparison-schema-env" yaml:"comparison-schema-env"`
	MartsDir            string            `koanf:"marts-dir" yaml:"marts-dir"`
	SchemaDirs          map[string]string `koanf:"schema-dirs" yaml:"schema-dirs"`
}

// PullRequestsConfig holds pr-create settings.
type PullRequestsConfig struct {
	TemplatesDir string `koanf:"templates-dir" yaml:"templates-dir"`
	Draft        bool   `koanf:"draft" yaml:"draft"`
}

// HistoryConfig controls command history recording.
type HistoryConfig struct {
	Enabled   bool   `koanf:"enabled" yaml:"enabled"`
	ShellFile string `koanf:"shell-file" yaml:"shell-file"`
	DBPath    string `koanf:"db-path" yaml:"db-path"`
}

// ThemeConfig selects the colour theme.
type ThemeConfig struct {
	Name string `koanf:"name" yaml:"name"`
}

// Default configuration values.
const (
	DefaultTeamTag      = "DSA"
	DefaultTeamName     = "Data Science & Analytics"
	DefaultTheme        = "iron_gold"
	DefaultPrompter     = "auto"
	DefaultModelsDir    = "models"
	DefaultDocsDir      = "documentation"
	DefaultProdTarget   = "prod"
	DefaultCITarget     = "github"
	DefaultCompareMacro = "compare_objects"
	DefaultSchemaEnv    = "DBT_SNOWFLAKE_TEST_SCHEMA"
	DefaultMartsDir     = "4_marts"
	DefaultShellHistory = "~/.zsh_history"
	DefaultHistoryDB    = "~/.tools/history.db"

	// FileName is the config file name searched for in every config directory.
	FileName = "tools-config.yaml"
)

// DefaultCommitTypes are the Conventional Commits tags offered when the
// config does not list any.
var DefaultCommitTypes = []string{"Feat", "Refactor", "Fix", "Docs", "Style", "Test", "Chore"}

// DefaultSchemaDirs maps dbt schema names to their folder under models/.
var DefaultSchemaDirs = map[string]string{
	"utilities": "0_utilities",
	"sources":   "1_sources",
	"transform": "2_transform",
	"dw":        "3_dw",
}
