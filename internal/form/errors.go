package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldName is returned when a field's T entry is missing or is not
	// decodable text.
	ErrFieldName = errors.New("field name is not decodable text")
	// ErrDuplicateField is returned by name alignment when a name repeats.
	ErrDuplicateField = errors.New("duplicate field name")
	// ErrSchemaMismatch is returned by name alignment when a document's
	// field set differs from the schema.
	ErrSchemaMismatch = errors.New("document fields do not match schema")
)

// FieldError locates a failure at one entry of the Fields array.
type FieldError struct {
	Index int
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", e.Index, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MismatchError lists the names that keep a document from lining up with
// the schema.
type MismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrSchemaMismatch, strings.Join(parts, "; "))
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
