package models

// QueryKind distinguishes structural (SQL) targets from document-oriented ones.
type QueryKind string

const (
	// KindSQL targets a relational engine.
	KindSQL QueryKind = "sql"
	// KindDocument targets a document store such as MongoDB.
	KindDocument QueryKind = "mongodb"
)

// StructuredQuery is the executable form handed to a database connector.
// Exactly one of the SQL or document fields is populated, according to Kind.
type StructuredQuery struct {
	Kind       QueryKind      `json:"kind"`
	SQL        string         `json:"sql,omitempty"`
	Collection string         `json:"collection,omitempty"`
	Operation  string         `json:"operation,omitempty"`
	Filter     map[string]any `json:"filter,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

// Schema is the simplified descriptor of a configured database: the set of
// table or collection names visible to template matching.
type Schema struct {
	Tables []string `json:"tables"`
}

// HasTable reports whether the schema contains the named table or collection.
func (s Schema) HasTable(name string) bool {
	for _, t := range s.Tables {
		if t == name {
			return true
		}
	}
	return false
}
