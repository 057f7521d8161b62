package domain

import "strings"

// StorageKind is the coarse in-memory representation of a loaded column.
type StorageKind int

const (
	// StorageAmbiguous covers representations that do not distinguish text
	// from other non-numeric content (VARCHAR, BLOB, nested types, ...).
	StorageAmbiguous StorageKind = iota
	StorageInteger
	StorageFloat
	StorageBoolean
	StorageDateTime
	StorageOther
)

// StorageType is the host representation of a column: its kind plus the
// engine's own type name (e.g. "BIGINT", "VARCHAR").
type StorageType struct {
	Kind StorageKind
	Name string
}

// Column is one loaded column. Null values are nil.
type Column struct {
	Name    string
	Storage StorageType
	Values  []any
}

// NonNull returns the column's non-null values in row order.
func (c Column) NonNull() []any {
	out := make([]any, 0, len(c.Values))
	for _, v := range c.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of nil values.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Table is a source file loaded fully into memory. Column names are unique
// and every column holds RowCount values.
type Table struct {
	Columns  []Column
	RowCount int
}

// DeclaredField is one entry of a file's embedded type schema.
type DeclaredField struct {
	Name string
	Type string
}

// IsTextual reports whether the declared storage type is a string type.
func (f DeclaredField) IsTextual() bool {
	t := strings.ToLower(f.Type)
	return strings.Contains(t, "string") || strings.Contains(t, "utf8")
}

// DeclaredSchema maps field names to their declared types.
type DeclaredSchema struct {
	fields map[string]DeclaredField
}

// NewDeclaredSchema builds a schema from fields. On duplicate names the
// first field wins.
func NewDeclaredSchema(fields []DeclaredField) DeclaredSchema {
	m := make(map[string]DeclaredField, len(fields))
	for _, f := range fields {
		if _, ok := m[f.Name]; !ok {
			m[f.Name] = f
		}
	}
	return DeclaredSchema{fields: m}
}

// Lookup returns the declared field for name. A miss is a normal outcome:
// schema and loaded columns are not guaranteed to match.
func (s DeclaredSchema) Lookup(name string) (DeclaredField, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Len returns the number of declared fields.
func (s DeclaredSchema) Len() int { return len(s.fields) }
