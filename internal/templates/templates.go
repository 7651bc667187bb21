// Package templates exposes the static letter template catalog and the
// placeholder substitution used by the manual editor.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrTemplateNotFound is returned by ByID for an unknown id.
var ErrTemplateNotFound = errors.New("template not found")

type catalogFile struct {
	Templates []models.Template `yaml:"templates"`
}

var (
	loadOnce sync.Once
	catalog  []models.Template
	byID     map[string]int
	loadErr  error
)

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]models.Template, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode template catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Templates))
	for _, tpl := range f.Templates {
		if tpl.ID == "" {
			return nil, errors.New("template with empty id")
		}
		if seen[tpl.ID] {
			return nil, fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		seen[tpl.ID] = true
		if !models.IsValidCategory(tpl.Category) {
			return nil, fmt.Errorf("template %q: invalid category %q", tpl.ID, tpl.Category)
		}
		keys := make(map[string]bool, len(tpl.Placeholders))
		for _, p := range tpl.Placeholders {
			if strings.TrimSpace(p.Key) == "" {
				return nil, fmt.Errorf("template %q: placeholder with empty key", tpl.ID)
			}
			if keys[p.Key] {
				return nil, fmt.Errorf("template %q: duplicate placeholder %q", tpl.ID, p.Key)
			}
			keys[p.Key] = true
			if !strings.Contains(tpl.Body, p.Token()) {
				return nil, fmt.Errorf("template %q: placeholder %q not found in body", tpl.ID, p.Key)
			}
		}
	}
	return f.Templates, nil
}

func load() {
	catalog, loadErr = Parse(catalogYAML)
	if loadErr != nil {
		slog.Error("templates.load: catalog invalid", "error", loadErr)
		return
	}
	byID = make(map[string]int, len(catalog))
	for i, tpl := range catalog {
		byID[tpl.ID] = i
	}
	slog.Debug("templates.load: catalog loaded", "count", len(catalog))
}

// Load returns the embedded catalog, or the error that made it unusable.
func Load() ([]models.Template, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	return cloneAll(catalog), nil
}

// All returns every template in catalog order. It returns nil if the
// embedded catalog failed to load.
func All() []models.Template {
	all, _ := Load()
	return all
}

// ByID returns the template with the given id.
func ByID(id string) (models.Template, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return models.Template{}, loadErr
	}
	i, ok := byID[id]
	if !ok {
		return models.Template{}, ErrTemplateNotFound
	}
	return clone(catalog[i]), nil
}

// ByCategory returns the templates of one category in catalog order.
func ByCategory(c models.Category) []models.Template {
	var out []models.Template
	for _, tpl := range All() {
		if tpl.Category == c {
			out = append(out, tpl)
		}
	}
	return out
}

// Substitute replaces every literal [key] token of each declared placeholder
// with its value from values. Empty or missing values leave the token in
// place; keys that are not declared on tpl are ignored. Tokens are replaced
// in a single pass over the template body, so a value that itself looks like
// a token is inserted verbatim.
func Substitute(tpl models.Template, values map[string]string) string {
	pairs := make([]string, 0, 2*len(tpl.Placeholders))
	for _, p := range tpl.Placeholders {
		if v := values[p.Key]; v != "" {
			pairs = append(pairs, p.Token(), v)
		}
	}
	if len(pairs) == 0 {
		return tpl.Body
	}
	return strings.NewReplacer(pairs...).Replace(tpl.Body)
}

// Unresolved lists the declared placeholder keys whose tokens still appear in body.
func Unresolved(tpl models.Template, body string) []string {
	var keys []string
	for _, p := range tpl.Placeholders {
		if strings.Contains(body, p.Token()) {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

func clone(tpl models.Template) models.Template {
	tpl.Placeholders = append([]models.Placeholder(nil), tpl.Placeholders...)
	return tpl
}

func cloneAll(in []models.Template) []models.Template {
	out := make([]models.Template, len(in))
	for i, tpl := range in {
		out[i] = clone(tpl)
	}
	return out
}
