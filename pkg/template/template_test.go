package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebrain-ai/querycore/pkg/models"
)

func TestMatchesCapturesParams(t *testing.T) {
	tpl, err := New("muestra todos los {table}", "list", SQLTemplate("SELECT * FROM $1 LIMIT 100"), "sql", nil)
	require.NoError(t, err)

	ok, params := tpl.Matches("muestra todos los clientes")
	require.True(t, ok)
	assert.Equal(t, []string{"clientes"}, params)

	ok, _ = tpl.Matches("xyzzy plugh")
	assert.False(t, ok)

	// Anchored: extra words before or after break the match.
	ok, _ = tpl.Matches("por favor muestra todos los clientes")
	assert.False(t, ok)
}

func TestMatchesCaseInsensitive(t *testing.T) {
	tpl, err := New("cuántos {table} hay", "count", SQLTemplate("SELECT COUNT(*) FROM $1"), "sql", nil)
	require.NoError(t, err)

	ok, params := tpl.Matches("CUÁNTOS Pedidos HAY")
	require.True(t, ok)
	assert.Equal(t, []string{"Pedidos"}, params)
}

func TestPlaceholderClasses(t *testing.T) {
	tpl, err := New("busca el {table} con id {value}", "by id", SQLTemplate("SELECT * FROM $1 WHERE id = $2"), "sql", nil)
	require.NoError(t, err)

	ok, params := tpl.Matches("busca el producto con id abc123")
	require.True(t, ok)
	assert.Equal(t, []string{"producto", "abc123"}, params)

	num, err := New("últimos {number} registros de {table}", "recent", SQLTemplate("SELECT * FROM $2 LIMIT $1"), "sql", nil)
	require.NoError(t, err)

	ok, params = num.Matches("últimos 25 registros de ventas")
	require.True(t, ok)
	assert.Equal(t, []string{"25", "ventas"}, params)

	ok, _ = num.Matches("últimos muchos registros de ventas")
	assert.False(t, ok, "{number} must only match digits")
}

func TestSQLTemplateGenerate(t *testing.T) {
	tpl := SQLTemplate("SELECT * FROM $1 WHERE id = $2")

	q, ok := tpl.Generate([]string{"users", "7"}, models.Schema{})
	require.True(t, ok)
	assert.Equal(t, models.KindSQL, q.Kind)
	assert.Equal(t, "SELECT * FROM users WHERE id = 7", q.SQL)
}

func TestSQLTemplateUnresolvedPlaceholder(t *testing.T) {
	tpl := SQLTemplate("SELECT * FROM $1 WHERE id = $2")

	// Not enough parameters: generation must fail rather than leak an
	// incomplete query.
	_, ok := tpl.Generate([]string{"users"}, models.Schema{})
	assert.False(t, ok)
}

func TestGeneratorFuncDispatch(t *testing.T) {
	tpl, err := New("muestra todos los documentos de {table}", "docs",
		GeneratorFunc(func(params []string, _ models.Schema) (models.StructuredQuery, bool) {
			return models.StructuredQuery{Kind: models.KindDocument, Collection: params[0], Operation: "find", Limit: 100}, true
		}), "mongodb", nil)
	require.NoError(t, err)

	ok, params := tpl.Matches("muestra todos los documentos de pedidos")
	require.True(t, ok)

	q, ok := tpl.Generate(params, models.Schema{})
	require.True(t, ok)
	assert.Equal(t, models.KindDocument, q.Kind)
	assert.Equal(t, "pedidos", q.Collection)
	assert.Equal(t, "find", q.Operation)
	assert.Equal(t, 100, q.Limit)
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	_, err := New("", "desc", SQLTemplate("SELECT 1"), "sql", nil)
	assert.ErrorIs(t, err, ErrEmptyPattern)
}
