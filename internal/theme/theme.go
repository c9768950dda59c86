// Package theme loads the colour palettes used for prompts and status
// output. Themes are small YAML files; a set is embedded in the binary and
// users can add or override themes in a themes/ directory next to their
// config.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes/*.yaml
var builtin embed.FS

// DefaultName is the theme used when none is configured.
const DefaultName = "iron_gold"

// ErrThemeNotFound is returned when no embedded or user theme has the
// requested name.
var ErrThemeNotFound = errors.New("no theme file found")

// Palette is the resolved set of colours and icons for a theme.
type Palette struct {
	Name         string
	Primary      string
	Secondary    string
	Tertiary     string
	Quaternary   string
	Prompt       string
	CursorStyle  string
	CursorColor  string
	FilterPrompt string
}

// file mirrors the on-disk theme layout. The color_pallette spelling is
// what existing theme files use.
type file struct {
	Colors struct {
		User   string `yaml:"hex_user_color"`
		Path   string `yaml:"hex_path_color"`
		GitRef string `yaml:"hex_git_ref_color"`
		Prompt string `yaml:"hex_prompt_color"`
		Branch string `yaml:"hex_branch_color"`
	} `yaml:"color_pallette"`
	Icons struct {
		Prompt string `yaml:"prompt_icon"`
		Filter string `yaml:"gum_filter_icon"`
	} `yaml:"icons"`
}

func (f file) palette(name string) Palette {
	return Palette{
		Name:         name,
		Primary:      f.Colors.User,
		Secondary:    f.Colors.Path,
		Tertiary:     f.Colors.GitRef,
		Quaternary:   f.Colors.Branch,
		Prompt:       f.Colors.Prompt,
		CursorStyle:  f.Icons.Prompt,
		CursorColor:  f.Colors.User,
		FilterPrompt: f.Icons.Filter,
	}
}

// UserDirs returns the directories searched for user themes, highest
// priority first.
func UserDirs() []string {
	dirs := []string{
		filepath.Join("tools", "themes"),
		filepath.Join(".tools", "themes"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".tools", "themes"))
	}
	return dirs
}

// Loader resolves themes from user directories and the embedded set.
type Loader struct {
	Dirs []string
}

// NewLoader returns a Loader over UserDirs.
func NewLoader() *Loader {
	return &Loader{Dirs: UserDirs()}
}

// Load returns the palette for name. Environment references in name are
// expanded, so a config value of "$TERMINAL_THEME" follows the shell.
func (l *Loader) Load(name string) (Palette, error) {
	name = strings.TrimSpace(os.ExpandEnv(name))
	if name == "" {
		name = DefaultName
	}
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")

	for _, dir := range l.Dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			data, err := os.ReadFile(filepath.Join(dir, name+ext))
			if err != nil {
				continue
			}
			return parse(name, data)
		}
	}

	data, err := builtin.ReadFile("themes/" + name + ".yaml")
	if err != nil {
		return Palette{}, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	return parse(name, data)
}

// List returns the sorted names of every available theme.
func (l *Loader) List() ([]string, error) {
	seen := make(map[string]bool)

	entries, err := fs.ReadDir(builtin, "themes")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded themes: %w", err)
	}
	for _, e := range entries {
		seen[themeName(e.Name())] = true
	}

	for _, dir := range l.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if n := themeName(e.Name()); n != "" {
				seen[n] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func themeName(filename string) string {
	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		return strings.TrimSuffix(filename, ext)
	}
	return ""
}

func parse(name string, data []byte) (Palette, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Palette{}, fmt.Errorf("invalid theme %s: %w", name, err)
	}
	if f.Colors.User == "" {
		return Palette{}, fmt.Errorf("invalid theme %s: color_pallette.hex_user_color is required", name)
	}
	return f.palette(name), nil
}

// Load resolves name with the default search directories.
func Load(name string) (Palette, error) {
	return NewLoader().Load(name)
}

// List returns every theme name visible from the working directory.
func List() ([]string, error) {
	return NewLoader().List()
}

// Default returns the built-in default palette.
func Default() Palette {
	p, err := (&Loader{}).Load(DefaultName)
	if err != nil {
		panic(fmt.Sprintf("embedded theme %s is invalid: %v", DefaultName, err))
	}
	return p
}
