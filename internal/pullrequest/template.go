package pullrequest

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.md
var builtin embed.FS

// ErrNoTemplate is returned when a template exists neither in the override
// directory nor in the built-in set.
var ErrNoTemplate = errors.New("pull request template not found")

// TicketPlaceholder is replaced with the ticket reference when rendering.
const TicketPlaceholder = "replace_ticket_ref"

// Template names.
const (
	TemplateDbt        = "data_dbt.md"
	TemplateTicketOnly = "data_dbt_ticket_only.md"
	TemplateTableau    = "data_tableau.md"
	TemplateCrossTeam  = "cross_team.md"
)

// Kind selects a template from command flags.
type Kind struct {
	Tableau    bool
	TicketOnly bool
	CrossTeam  bool
}

// Name returns the template file for k.
func (k Kind) Name() string {
	switch {
	case k.CrossTeam:
		return TemplateCrossTeam
	case k.Tableau:
		return TemplateTableau
	case k.TicketOnly:
		return TemplateTicketOnly
	default:
		return TemplateDbt
	}
}

// Templates loads pull request body templates. Files in Dir take priority
// over the built-in ones.
type Templates struct {
	Dir string
}

// Load returns the raw template called name. A name with a path separator
// is read as a file path.
func (t Templates) Load(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNoTemplate, name)
		}
		return string(data), nil
	}

	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	if t.Dir != "" {
		data, err := os.ReadFile(filepath.Join(t.Dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}

	data, err := builtin.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, name)
	}
	return string(data), nil
}

// Render loads name and substitutes ticketRef for the placeholder.
func (t Templates) Render(name, ticketRef string) (string, error) {
	body, err := t.Load(name)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(body, TicketPlaceholder, ticketRef), nil
}
