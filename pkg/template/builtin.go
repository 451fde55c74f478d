package template

import "github.com/corebrain-ai/querycore/pkg/models"

func mustTemplate(pattern, description string, gen Generator, dbType string, tables []string) *Template {
	t, err := New(pattern, description, gen, dbType, tables)
	if err != nil {
		panic(err)
	}
	return t
}

// builtinTemplates returns the predefined templates for common queries, in
// match order. The first matching template wins, so more specific shapes are
// listed before broader ones of the same verb.
func builtinTemplates() []*Template {
	return []*Template{
		mustTemplate(
			"muestra todos los {table}",
			"Listar todos los registros de una tabla",
			SQLTemplate("SELECT * FROM $1 LIMIT 100"),
			"sql", nil,
		),
		mustTemplate(
			"cuántos {table} hay",
			"Contar registros en una tabla",
			SQLTemplate("SELECT COUNT(*) FROM $1"),
			"sql", nil,
		),
		mustTemplate(
			"busca el {table} con id {value}",
			"Buscar registro por ID",
			SQLTemplate("SELECT * FROM $1 WHERE id = $2"),
			"sql", nil,
		),
		mustTemplate(
			"lista los {table} ordenados por {field}",
			"Listar registros ordenados por campo",
			SQLTemplate("SELECT * FROM $1 ORDER BY $2 LIMIT 100"),
			"sql", nil,
		),
		mustTemplate(
			"busca el usuario con email {value}",
			"Buscar usuario por email",
			SQLTemplate("SELECT * FROM users WHERE email = '$1'"),
			"sql", nil,
		),
		mustTemplate(
			"cuántos {table} hay por {field}",
			"Contar registros agrupados por campo",
			SQLTemplate("SELECT $2, COUNT(*) FROM $1 GROUP BY $2"),
			"sql", nil,
		),
		mustTemplate(
			"cuántos usuarios activos hay",
			"Contar usuarios activos",
			SQLTemplate("SELECT COUNT(*) FROM users WHERE is_active = TRUE"),
			"sql", []string{"users"},
		),
		mustTemplate(
			"usuarios registrados en los últimos {number} días",
			"Listar usuarios recientes",
			SQLTemplate("SELECT * FROM users WHERE created_at >= datetime('now', '-$1 days') ORDER BY created_at DESC LIMIT 100"),
			"sql", []string{"users"},
		),
		mustTemplate(
			"usuarios que tienen empresa",
			"Buscar usuarios con empresa asignada",
			SQLTemplate("SELECT u.* FROM users u INNER JOIN businesses b ON u.id = b.owner_id WHERE u.is_business = TRUE LIMIT 100"),
			"sql", []string{"users", "businesses"},
		),
		mustTemplate(
			"busca negocios en {value}",
			"Buscar negocios por ubicación",
			SQLTemplate("SELECT * FROM businesses WHERE address_city LIKE '%$1%' OR address_province LIKE '%$1%' LIMIT 100"),
			"sql", []string{"businesses"},
		),
		mustTemplate(
			"muestra todos los documentos de {table}",
			"Listar documentos en una colección",
			GeneratorFunc(func(params []string, _ models.Schema) (models.StructuredQuery, bool) {
				return models.StructuredQuery{
					Kind:       models.KindDocument,
					Collection: params[0],
					Operation:  "find",
					Filter:     map[string]any{},
					Limit:      100,
				}, true
			}),
			"mongodb", nil,
		),
	}
}
