package dbt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrModelNotFound is returned when no .sql file has the requested name.
var ErrModelNotFound = errors.New("model not found")

// Model is a dbt model file.
type Model struct {
	Name string // file name without .sql
	Path string
}

// DiscoverModels walks dir for .sql files, sorted by name then path.
func DiscoverModels(dir string) ([]Model, error) {
	var models []Model
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".sql" {
			return nil
		}
		models = append(models, Model{
			Name: strings.TrimSuffix(d.Name(), ".sql"),
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan models in %s: %w", dir, err)
	}

	sort.Slice(models, func(i, j int) bool {
		if models[i].Name != models[j].Name {
			return models[i].Name < models[j].Name
		}
		return models[i].Path < models[j].Path
	})
	return models, nil
}

// Names returns the model names.
func Names(models []Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

// FindModel returns the first model named name under dir.
func FindModel(dir, name string) (Model, error) {
	models, err := DiscoverModels(dir)
	if err != nil {
		return Model{}, err
	}
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// FindYAML returns the path of an existing <name>.yml or <name>.yaml
// anywhere under dir, or "" when there is none.
func FindYAML(dir, name string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == name+".yml" || d.Name() == name+".yaml" {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", dir, err)
	}
	return found, nil
}

// MartSchemas lists the mart_* directories under modelsDir/martsDir.
func MartSchemas(modelsDir, martsDir string) ([]string, error) {
	root := filepath.Join(modelsDir, martsDir)
	var schemas []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), "mart_") {
			schemas = append(schemas, d.Name())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mart schemas: %w", err)
	}
	sort.Strings(schemas)
	return schemas, nil
}

// Layout maps schema names to directories under the models directory.
type Layout struct {
	ModelsDir  string
	MartsDir   string
	SchemaDirs map[string]string
}

// Schemas returns the fixed schemas in layer order followed by the marts.
func (l Layout) Schemas() ([]string, error) {
	fixed := make([]string, 0, len(l.SchemaDirs))
	for name := range l.SchemaDirs {
		fixed = append(fixed, name)
	}
	sort.Slice(fixed, func(i, j int) bool {
		return l.SchemaDirs[fixed[i]] < l.SchemaDirs[fixed[j]]
	})

	marts, err := MartSchemas(l.ModelsDir, l.MartsDir)
	if err != nil {
		return nil, err
	}
	return append(fixed, marts...), nil
}

// SchemaDir returns the directory holding schema's models.
func (l Layout) SchemaDir(schema string) string {
	if dir, ok := l.SchemaDirs[schema]; ok {
		return filepath.Join(l.ModelsDir, dir)
	}
	return filepath.Join(l.ModelsDir, l.MartsDir, schema)
}

// Exists reports whether dir exists.
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
