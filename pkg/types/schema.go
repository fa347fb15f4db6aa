package types

import (
	"errors"
	"fmt"
)

// Schema construction errors.
var (
	ErrTableEmpty     = errors.New("table name must not be empty")
	ErrModelEmpty     = errors.New("model name must not be empty")
	ErrFieldEmpty     = errors.New("field name must not be empty")
	ErrFieldDuplicate = errors.New("duplicate field name")
)

// UnknownFieldError is the panic value raised when a filter, sort, or update
// request names a field the schema does not declare. This is a programming
// error in the caller, not a runtime condition; it is never caught or
// translated by the store.
type UnknownFieldError struct {
	Model string
	Field string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q on %s", e.Field, e.Model)
}

// Field describes one persisted column of a record type.
// SearchLike marks the field eligible for free-text substring matching.
type Field struct {
	Name       string
	SearchLike bool
}

// Schema is the validated field registry for one record type: the table it
// persists to, the model name used in error messages, and the ordered field
// list. Build one per record type at startup with NewSchema; lookups of
// undeclared fields fail loudly via MustField.
type Schema struct {
	table  string
	model  string
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema, rejecting empty names and duplicate fields.
func NewSchema(table, model string, fields ...Field) (*Schema, error) {
	if table == "" {
		return nil, ErrTableEmpty
	}
	if model == "" {
		return nil, ErrModelEmpty
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, ErrFieldEmpty
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrFieldDuplicate, f.Name)
		}
		index[f.Name] = i
	}
	return &Schema{table: table, model: model, fields: fields, index: index}, nil
}

// MustSchema is NewSchema for package-level schema variables; it panics on
// a malformed definition.
func MustSchema(table, model string, fields ...Field) *Schema {
	s, err := NewSchema(table, model, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Table returns the backing table name.
func (s *Schema) Table() string { return s.table }

// Model returns the record type name used in error messages.
func (s *Schema) Model() string { return s.model }

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns the declared field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// MustField returns the named field, panicking with UnknownFieldError when
// the schema does not declare it.
func (s *Schema) MustField(name string) Field {
	i, ok := s.index[name]
	if !ok {
		panic(UnknownFieldError{Model: s.model, Field: name})
	}
	return s.fields[i]
}

// SearchLikeFields returns the fields flagged for substring search, in
// declaration order. The slice is empty when none are flagged.
func (s *Schema) SearchLikeFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.SearchLike {
			out = append(out, f)
		}
	}
	return out
}
