package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebrain-ai/querycore/pkg/models"
)

func TestSuggestTemplateGeneralizesNumbers(t *testing.T) {
	tpl, ok := SuggestTemplate(
		"muestra todos los pedidos de 2023",
		"SELECT * FROM pedidos WHERE year = 2023",
	)
	require.True(t, ok)

	assert.Equal(t, `muestra\s+(?:todos\s+)?los\s+pedidos`, tpl.Pattern)

	q, ok := tpl.Generate([]string{"2024"}, models.Schema{})
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM pedidos WHERE year = 2024", q.SQL)
}

func TestSuggestTemplateGeneralizesEmails(t *testing.T) {
	tpl, ok := SuggestTemplate(
		"lista los usuarios con correo ana@example.com",
		"SELECT * FROM usuarios WHERE email = 'ana@example.com'",
	)
	require.True(t, ok)

	q, ok := tpl.Generate([]string{"bob@example.com"}, models.Schema{})
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM usuarios WHERE email = 'bob@example.com'", q.SQL)
}

func TestSuggestTemplateNoPattern(t *testing.T) {
	_, ok := SuggestTemplate("xyzzy plugh", "SELECT 1")
	assert.False(t, ok)
}
