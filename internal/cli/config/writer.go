package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration written by `tools init`.
func Default(teamTag, teamName string) *Config {
	cfg := &Config{
		General: GeneralConfig{
			TeamTag:          teamTag,
			TeamName:         teamName,
			RaiseOnEscape:    true,
			RaiseOnInterrupt: true,
			Prompter:         DefaultPrompter,
		},
		Commits: CommitsConfig{
			ConventionalCommits: ConventionalCommitsConfig{Types: append([]string(nil), DefaultCommitTypes...)},
		},
		Branches: BranchesConfig{BranchPrefixes: []string{}},
		Dbt: DbtConfig{
			ProjectDir:          ".",
			ModelsDir:           DefaultModelsDir,
			DocsDir:             DefaultDocsDir,
			ProdTarget:          DefaultProdTarget,
			CITarget:            DefaultCITarget,
			CompareMacro:        DefaultCompareMacro,
			ComparisonSchemaEnv: DefaultSchemaEnv,
			MartsDir:            DefaultMartsDir,
			SchemaDirs:          make(map[string]string, len(DefaultSchemaDirs)),
		},
		PullRequests: PullRequestsConfig{Draft: true},
		History: HistoryConfig{
			Enabled:   true,
			ShellFile: DefaultShellHistory,
			DBPath:    DefaultHistoryDB,
		},
		Theme:            ThemeConfig{Name: DefaultTheme},
		ExcludedCommands: []string{},
	}
	for name, dir := range DefaultSchemaDirs {
		cfg.Dbt.SchemaDirs[name] = dir
	}
	return cfg
}

// DefaultPath returns where init writes the config: ~/.tools for a user
// install, ./.tools for a project-local one.
func DefaultPath(local bool) (string, error) {
	if local {
		return filepath.Join(".tools", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".tools", FileName), nil
}

// Write marshals cfg to path, creating the parent directory.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// SetThemeName sets theme.name in the config file at path.
//
// When the key already exists only its value is replaced in place, so
// comments and formatting elsewhere in the file are untouched. Otherwise the
// document is re-encoded with the key added.
func SetThemeName(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	theme := lookup(&doc, "theme")
	if node := mappingValue(theme, "name"); node != nil && node.Kind == yaml.ScalarNode && theme.Style&yaml.FlowStyle == 0 {
		out, ok := replaceScalar(data, node, name)
		if ok {
			return os.WriteFile(path, out, 0o600)
		}
	}

	root := documentMapping(&doc)
	theme = mappingValue(root, "theme")
	if theme == nil || theme.Kind != yaml.MappingNode {
		theme = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setMappingValue(root, "theme", theme)
	}
	setMappingValue(theme, "name", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// replaceScalar swaps the bytes of the scalar at node's position in data for
// value. Everything else on the line, trailing comment included, is kept.
func replaceScalar(data []byte, node *yaml.Node, value string) ([]byte, bool) {
	lines := strings.SplitAfter(string(data), "\n")
	idx := node.Line - 1
	if idx < 0 || idx >= len(lines) {
		return nil, false
	}
	line := lines[idx]
	col := node.Column - 1
	if col < 0 || col > len(line) {
		return nil, false
	}

	n := scalarLen(line[col:], node)
	if n < 0 {
		return nil, false
	}
	lines[idx] = line[:col] + quoteIfNeeded(value) + line[col+n:]
	return []byte(strings.Join(lines, "")), true
}

// scalarLen returns the length of node's raw text at the start of s, or -1
// when the scalar does not sit on a single line.
func scalarLen(s string, node *yaml.Node) int {
	switch node.Style {
	case 0:
		if !strings.HasPrefix(s, node.Value) {
			return -1
		}
		return len(node.Value)
	case yaml.DoubleQuotedStyle:
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '"':
				return i + 1
			case '\n':
				return -1
			}
		}
	case yaml.SingleQuotedStyle:
		for i := 1; i < len(s); i++ {
			switch {
			case s[i] == '\'' && i+1 < len(s) && s[i+1] == '\'':
				i++
			case s[i] == '\'':
				return i + 1
			case s[i] == '\n':
				return -1
			}
		}
	}
	return -1
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, ":#{}[],&*!|>'\"%@`") || strings.TrimSpace(s) != s {
		return strconv.Quote(s)
	}
	return s
}

func documentMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	return doc.Content[0]
}

func lookup(doc *yaml.Node, keys ...string) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	node := doc.Content[0]
	for _, key := range keys {
		node = mappingValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
