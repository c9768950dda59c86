// Package modeldoc scaffolds dbt schema YAML for a model from the columns
// its SQL selects.
package modeldoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ae-kit/tools/internal/dbt"
	"github.com/ae-kit/tools/pkg/sqlscan"
)

// TODODescription is written for columns without a doc block.
const TODODescription = "TODO: Add Description"

var (
	// ErrDocExists is returned when the model already has a .yml file.
	ErrDocExists = errors.New("a .yml file already exists for the selected model")
	// ErrModelNotFound is returned when the model has no .sql file.
	ErrModelNotFound = dbt.ErrModelNotFound
)

var jinjaBlock = regexp.MustCompile(`(?s)\{%-?.*?-?%\}|\{#.*?#\}`)

// StripJinja removes {% ... %} statements and {# ... #} comments. Expression
// tags ({{ ... }}) are kept; the scanner treats each as a single token.
func StripJinja(sql string) string {
	return jinjaBlock.ReplaceAllString(sql, "")
}

// Columns infers the output columns of sql. With lastCTE set a final
// star select is resolved against the last CTE.
func Columns(sql string, lastCTE bool) (*sqlscan.Result, error) {
	return sqlscan.Scan(StripJinja(sql), sqlscan.Options{LastCTE: lastCTE})
}

// DocIndex records which doc blocks exist under the documentation
// directory.
type DocIndex struct {
	Columns map[string]bool // column_level/<name>.md
	Models  map[string]bool // model_level/<name>.md
}

// LoadDocIndex reads column_level and model_level under docsDir
// concurrently. Missing directories are treated as empty.
func LoadDocIndex(ctx context.Context, docsDir string) (*DocIndex, error) {
	idx := &DocIndex{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := docNames(filepath.Join(docsDir, "column_level"))
		idx.Columns = names
		return err
	})
	g.Go(func() error {
		names, err := docNames(filepath.Join(docsDir, "model_level"))
		idx.Models = names
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

func docNames(dir string) (map[string]bool, error) {
	names := make(map[string]bool)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			names[strings.TrimSuffix(d.Name(), ".md")] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read docs in %s: %w", dir, err)
	}
	return names, nil
}

// Description returns the doc reference for name, or the TODO marker.
func description(name string, known map[string]bool) string {
	if known[name] {
		return fmt.Sprintf(`{{ doc("%s") }}`, name)
	}
	return TODODescription
}

type schemaFile struct {
	Version int           `yaml:"version"`
	Models  []modelSchema `yaml:"models"`
}

type modelSchema struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Columns     []columnSchema `yaml:"columns"`
}

type columnSchema struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Generate renders the schema YAML for model.
func Generate(model string, columns []string, idx *DocIndex) ([]byte, error) {
	if idx == nil {
		idx = &DocIndex{}
	}
	m := modelSchema{
		Name:        model,
		Description: description(model, idx.Models),
		Columns:     make([]columnSchema, 0, len(columns)),
	}
	for _, c := range columns {
		m.Columns = append(m.Columns, columnSchema{Name: c, Description: description(c, idx.Columns)})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(schemaFile{Version: 2, Models: []modelSchema{m}}); err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", model, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", model, err)
	}
	return buf.Bytes(), nil
}

// Options configures Scaffold.
type Options struct {
	ModelsDir string
	DocsDir   string
	Model     string
	LastCTE   bool
}

// Scaffolded describes a written schema file.
type Scaffolded struct {
	Path    string // the .yml written
	SQLPath string
	Scan    *sqlscan.Result
}

// Scaffold writes <model>.yml next to the model's SQL file. It never
// overwrites: an existing <model>.yml anywhere under ModelsDir is
// ErrDocExists.
func Scaffold(ctx context.Context, opts Options) (*Scaffolded, error) {
	existing, err := dbt.FindYAML(opts.ModelsDir, opts.Model)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		return nil, fmt.Errorf("%w: %s", ErrDocExists, existing)
	}

	model, err := dbt.FindModel(opts.ModelsDir, opts.Model)
	if err != nil {
		return nil, err
	}

	sql, err := os.ReadFile(model.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", model.Path, err)
	}
	res, err := Columns(string(sql), opts.LastCTE)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", model.Path, err)
	}

	idx, err := LoadDocIndex(ctx, opts.DocsDir)
	if err != nil {
		return nil, err
	}
	out, err := Generate(model.Name, res.Columns, idx)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(filepath.Dir(model.Path), model.Name+".yml")
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocExists, dest)
		}
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := f.Write(out); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return &Scaffolded{Path: dest, SQLPath: model.Path, Scan: res}, nil
}
