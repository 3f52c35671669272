package form

import (
	"fmt"

	"github.com/a3tai/pdf-form-export/internal/pdf/wrapper"
)

// Alignment selects how a document's values are lined up with the schema.
type Alignment string

const (
	// AlignPosition takes values in field order and relies on every document
	// sharing the seed document's field order.
	AlignPosition Alignment = "position"
	// AlignName matches values to schema columns by field name.
	AlignName Alignment = "name"
)

// ParseAlignment maps a configuration string to an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(s); a {
	case AlignPosition, AlignName:
		return a, nil
	default:
		return "", fmt.Errorf("invalid alignment %q (must be one of: position, name)", s)
	}
}

// Schema is the ordered list of field names used as table columns.
type Schema []string

// FieldName decodes a field's T entry.
func FieldName(f wrapper.RawField) (string, error) {
	if f.Name.Kind != wrapper.KindString {
		return "", ErrFieldName
	}
	name, ok := DecodeText(f.Name.Bytes)
	if !ok {
		return "", ErrFieldName
	}
	return name, nil
}

// SchemaFromFields returns the names of fields in order. Repeated names are
// kept as separate columns.
func SchemaFromFields(fields []wrapper.RawField) (Schema, error) {
	schema := make(Schema, 0, len(fields))
	for i, f := range fields {
		name, err := FieldName(f)
		if err != nil {
			return nil, &FieldError{Index: i, Err: err}
		}
		schema = append(schema, name)
	}
	return schema, nil
}

// Values coerces every field's value, in field order.
func Values(fields []wrapper.RawField, literals Literals) []Value {
	values := make([]Value, len(fields))
	for i, f := range fields {
		values[i] = Decode(f.Value, literals)
	}
	return values
}

// Project coerces the document's fields and orders them by schema column.
// Both the schema and the document must have unique names, and the two name
// sets must be equal.
func Project(schema Schema, fields []wrapper.RawField, literals Literals) ([]Value, error) {
	columns := make(map[string]int, len(schema))
	for i, name := range schema {
		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("schema: %w: %s", ErrDuplicateField, name)
		}
		columns[name] = i
	}

	row := make([]Value, len(schema))
	seen := make(map[string]bool, len(fields))
	mismatch := &MismatchError{}

	for i, f := range fields {
		name, err := FieldName(f)
		if err != nil {
			return nil, &FieldError{Index: i, Err: err}
		}
		if seen[name] {
			return nil, &FieldError{Index: i, Err: fmt.Errorf("%w: %s", ErrDuplicateField, name)}
		}
		seen[name] = true

		col, ok := columns[name]
		if !ok {
			mismatch.Unexpected = append(mismatch.Unexpected, name)
			continue
		}
		row[col] = Decode(f.Value, literals)
	}

	for _, name := range schema {
		if !seen[name] {
			mismatch.Missing = append(mismatch.Missing, name)
		}
	}

	if len(mismatch.Missing) > 0 || len(mismatch.Unexpected) > 0 {
		return nil, mismatch
	}
	return row, nil
}
