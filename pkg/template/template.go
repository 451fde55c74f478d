// Package template recognizes fixed natural-language query shapes and turns
// them into structured queries without invoking any reasoning service.
// Patterns carry typed placeholders ({table}, {field}, {value}, {number})
// compiled once into anchored case-insensitive matchers.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/corebrain-ai/querycore/pkg/models"
)

// ErrEmptyPattern is returned when registering a template without a pattern.
var ErrEmptyPattern = errors.New("template: empty pattern")

// Generator produces a structured query from the parameters captured by a
// pattern match. A false return means the template cannot produce a complete
// query for these inputs and the caller should fall back to another path.
type Generator interface {
	Generate(params []string, schema models.Schema) (models.StructuredQuery, bool)
}

// SQLTemplate is a declarative generator: positional placeholders $1..$n are
// substituted with the captured parameters. Generation fails if any
// placeholder remains, so an incomplete query is never leaked.
type SQLTemplate string

// Generate implements Generator.
func (t SQLTemplate) Generate(params []string, _ models.Schema) (models.StructuredQuery, bool) {
	sql := string(t)
	for i, p := range params {
		sql = strings.ReplaceAll(sql, fmt.Sprintf("$%d", i+1), p)
	}
	if strings.Contains(sql, "$") {
		return models.StructuredQuery{}, false
	}
	return models.StructuredQuery{Kind: models.KindSQL, SQL: sql}, true
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(params []string, schema models.Schema) (models.StructuredQuery, bool)

// Generate implements Generator.
func (f GeneratorFunc) Generate(params []string, schema models.Schema) (models.StructuredQuery, bool) {
	return f(params, schema)
}

// NoQuery is the generator for templates registered without a query body:
// they match and capture parameters but never produce a query.
var NoQuery Generator = noQuery{}

type noQuery struct{}

func (noQuery) Generate([]string, models.Schema) (models.StructuredQuery, bool) {
	return models.StructuredQuery{}, false
}

// Template pairs a natural-language pattern with a query generator.
// Immutable once built; registries replace rather than mutate.
type Template struct {
	Pattern          string
	Description      string
	DBType           string
	ApplicableTables []string

	gen Generator
	re  *regexp.Regexp
}

// New compiles pattern and builds a template. gen must not be nil.
func New(pattern, description string, gen Generator, dbType string, applicableTables []string) (*Template, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	if dbType == "" {
		dbType = string(models.KindSQL)
	}
	return &Template{
		Pattern:          pattern,
		Description:      description,
		DBType:           dbType,
		ApplicableTables: applicableTables,
		gen:              gen,
		re:               re,
	}, nil
}

var placeholders = strings.NewReplacer(
	"{table}", `(\w+)`,
	"{field}", `(\w+)`,
	"{value}", `([^,.\s]+)`,
	"{number}", `(\d+)`,
)

// compilePattern substitutes the typed placeholders with capture classes and
// anchors the expression to the whole query, case-insensitively.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)^" + placeholders.Replace(pattern) + "$")
}

// Matches reports whether the query matches this template and returns the
// captured parameters in pattern order.
func (t *Template) Matches(query string) (bool, []string) {
	m := t.re.FindStringSubmatch(query)
	if m == nil {
		return false, nil
	}
	return true, m[1:]
}

// Generate delegates to the template's generator.
func (t *Template) Generate(params []string, schema models.Schema) (models.StructuredQuery, bool) {
	return t.gen.Generate(params, schema)
}
