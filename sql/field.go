package sql

import (
	"fmt"
	"strings"
)

// Field is one resolved output column of a relation, produced once during
// name resolution. Two fields can share a name, so field identity is the
// *Field pointer itself, never the name.
type Field struct {
	// Table is the name of the relation the field belongs to, empty for
	// derived columns.
	Table string
	// Name is the field name.
	Name string
	// Type is the field type.
	Type Type
	// Index is the position of the field within its scope.
	Index int
}

func (f *Field) String() string {
	if f.Table == "" {
		return f.Name
	}
	return fmt.Sprintf("%s.%s", f.Table, f.Name)
}

// Scope is the ordered set of fields visible to the expressions of one
// query, built once when its relations are resolved. It owns its fields:
// resolving the same name always yields the same *Field pointers, which is
// what makes pointer identity the field equality of the whole analysis.
type Scope struct {
	fields []*Field
}

// NewScope creates a scope holding the given fields, assigning their
// indexes by position.
func NewScope(fields ...*Field) *Scope {
	for i, f := range fields {
		f.Index = i
	}
	return &Scope{fields: fields}
}

// ScopeForSchema creates a scope with one field per column of the given
// schema, in schema order.
func ScopeForSchema(schema Schema) *Scope {
	fields := make([]*Field, len(schema))
	for i, col := range schema {
		fields[i] = &Field{
			Table: col.Source,
			Name:  col.Name,
			Type:  col.Type,
		}
	}
	return NewScope(fields...)
}

// Fields returns all fields of the scope in resolution order.
func (s *Scope) Fields() []*Field {
	return s.fields
}

// Resolve returns all fields matching the given name, qualified by table if
// table is not empty. Matching is case insensitive. Zero and multiple
// matches are both possible results, not errors; the caller decides whether
// ambiguity matters.
func (s *Scope) Resolve(table, name string) []*Field {
	var matches []*Field
	for _, f := range s.fields {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		if table != "" && !strings.EqualFold(f.Table, table) {
			continue
		}
		matches = append(matches, f)
	}
	return matches
}
