package analyzer

import (
	"regexp"
	"strings"

	"github.com/corebrain-ai/querycore/pkg/template"
)

// SuggestTemplate proposes a reusable template generalized from a query and
// the structured query it produced: numeric literals, email-shaped tokens and
// quoted strings become placeholders in both the pattern label and the SQL.
// The candidate is returned for review, never registered automatically.
// Returns false when the query has no detectable pattern.
func SuggestTemplate(query, sqlQuery string) (*template.Template, bool) {
	pattern := detectPattern(query)
	if pattern == "" {
		return nil, false
	}

	generalized := sqlQuery

	for _, token := range strings.Fields(strings.ToLower(query)) {
		switch {
		case isDigits(token):
			generalized = replaceToken(generalized, token)
			pattern = strings.ReplaceAll(pattern, token, "{number}")
		case strings.Contains(token, "@") && strings.Contains(token, "."):
			generalized = replaceToken(generalized, token)
			pattern = strings.ReplaceAll(pattern, token, "{value}")
		case strings.HasPrefix(token, `"`) || strings.HasPrefix(token, "'"):
			value := strings.Trim(token, `"'`)
			// Very short strings are too ambiguous to parameterize.
			if len(value) > 2 {
				quoted := regexp.MustCompile(`['"]` + regexp.QuoteMeta(value) + `['"]`)
				generalized = quoted.ReplaceAllString(generalized, "'$$1'")
				pattern = strings.ReplaceAll(pattern, token, "{value}")
			}
		}
	}

	t, err := template.New(
		pattern,
		"Plantilla generada automáticamente para: "+pattern,
		template.SQLTemplate(generalized),
		"sql",
		nil,
	)
	if err != nil {
		return nil, false
	}
	return t, true
}

// replaceToken substitutes whole-word occurrences of token with the first
// positional placeholder. $$ keeps the dollar literal in the replacement.
func replaceToken(s, token string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
	return re.ReplaceAllString(s, "$$1")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
