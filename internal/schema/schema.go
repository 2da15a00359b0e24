// Package schema describes the typed shape of a record batch: an ordered,
// uniquely-named sequence of fields (spec §3).
package schema

import (
	"fmt"
	"strings"

	"exprc/internal/types"
)

// Field is an immutable (name, kind, nullable) triple. Names are
// case-sensitive.
type Field struct {
	Name     string
	Kind     types.Kind
	Nullable bool
}

// NewField builds a nullable field, the common case for batch columns.
func NewField(name string, kind types.Kind) Field {
	return Field{Name: name, Kind: kind, Nullable: true}
}

func (f Field) String() string {
	n := ""
	if f.Nullable {
		n = "?"
	}
	return fmt.Sprintf("%s:%s%s", f.Name, f.Kind, n)
}

// Schema is an ordered sequence of fields with unique names.
type Schema struct {
	fields []Field
	byName map[string]int
}

// New builds a Schema from fields, indexing them by name. Duplicate names
// are rejected with a panic: schemas are constructed once by trusted
// callers, not on the hot per-batch path.
func New(fields ...Field) *Schema {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field name %q", f.Name))
		}
		byName[f.Name] = i
	}
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &Schema{fields: cp, byName: byName}
}

// Fields returns the ordered field list. Callers must not mutate it.
func (s *Schema) Fields() []Field { return s.fields }

// Lookup resolves a field by name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len reports the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fingerprint renders a canonical string identifying the schema's shape,
// used as a cache-key component (spec §4.10).
func (s *Schema) Fingerprint() string {
	var b strings.Builder
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// Equal reports structural equality between two schemas.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}
