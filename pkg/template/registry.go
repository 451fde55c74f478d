package template

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/corebrain-ai/querycore/pkg/models"
)

// customTemplate is the persisted JSON shape of a user-supplied template.
type customTemplate struct {
	Pattern          string   `json:"pattern"`
	Description      string   `json:"description"`
	SQLTemplate      *string  `json:"sql_template"`
	DBType           string   `json:"db_type"`
	ApplicableTables []string `json:"applicable_tables"`
}

// Registry holds built-in and custom templates in match order: built-ins
// first, then custom templates in load order. Matching is read-locked so
// concurrent matchers never observe a half-applied registration.
type Registry struct {
	mu        sync.RWMutex
	templates []*Template
	builtins  int
	path      string
	log       zerolog.Logger
}

// NewRegistry builds a registry with the built-in templates and appends any
// custom templates persisted at templatePath. An unreadable custom-template
// file degrades to the built-in set.
func NewRegistry(templatePath string, logger zerolog.Logger) *Registry {
	r := &Registry{
		templates: builtinTemplates(),
		path:      templatePath,
		log:       logger,
	}
	r.builtins = len(r.templates)

	if err := r.loadCustom(); err != nil {
		r.log.Warn().Err(err).Str("path", templatePath).Msg("custom templates not loaded")
	}
	return r
}

func (r *Registry) loadCustom() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read templates: %w", err)
	}

	var customs []customTemplate
	if err := json.Unmarshal(data, &customs); err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	for _, ct := range customs {
		t, err := fromCustom(ct)
		if err != nil {
			r.log.Warn().Err(err).Str("pattern", ct.Pattern).Msg("skipping invalid custom template")
			continue
		}
		r.templates = append(r.templates, t)
	}
	return nil
}

func fromCustom(ct customTemplate) (*Template, error) {
	gen := NoQuery
	if ct.SQLTemplate != nil {
		gen = SQLTemplate(*ct.SQLTemplate)
	}
	return New(ct.Pattern, ct.Description, gen, ct.DBType, ct.ApplicableTables)
}

// FindMatching returns the first template matching the query whose
// applicable-table list (if any) intersects the schema, along with the
// captured parameters. First match wins; this ordering is contractual.
func (r *Registry) FindMatching(query string, schema models.Schema) (*Template, []string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.templates {
		ok, params := t.Matches(query)
		if !ok {
			continue
		}
		if len(t.ApplicableTables) > 0 && !intersects(t.ApplicableTables, schema) {
			continue
		}
		return t, params, true
	}
	return nil, nil, false
}

func intersects(tables []string, schema models.Schema) bool {
	for _, t := range tables {
		if schema.HasTable(t) {
			return true
		}
	}
	return false
}

// SaveCustom persists a custom template and publishes it to the registry.
// A template whose pattern equals an existing custom template's replaces it
// in place; otherwise it is appended. Built-ins are never overwritten.
func (r *Registry) SaveCustom(t *Template) error {
	if t == nil || t.Pattern == "" {
		return ErrEmptyPattern
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	customs := r.readCustomFile()

	entry := customTemplate{
		Pattern:          t.Pattern,
		Description:      t.Description,
		DBType:           t.DBType,
		ApplicableTables: t.ApplicableTables,
	}
	if st, ok := t.gen.(SQLTemplate); ok {
		s := string(st)
		entry.SQLTemplate = &s
	}

	replaced := false
	for i, existing := range customs {
		if existing.Pattern == t.Pattern {
			customs[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		customs = append(customs, entry)
	}

	data, err := json.MarshalIndent(customs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write templates: %w", err)
	}

	for i := r.builtins; i < len(r.templates); i++ {
		if r.templates[i].Pattern == t.Pattern {
			r.templates[i] = t
			return nil
		}
	}
	r.templates = append(r.templates, t)
	return nil
}

// readCustomFile loads the persisted custom list, tolerating a missing or
// unparseable file.
func (r *Registry) readCustomFile() []customTemplate {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}
	var customs []customTemplate
	if err := json.Unmarshal(data, &customs); err != nil {
		return nil
	}
	return customs
}

// Templates returns a snapshot of the registry in match order.
func (r *Registry) Templates() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, len(r.templates))
	copy(out, r.templates)
	return out
}
