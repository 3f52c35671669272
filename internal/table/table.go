// Package table accumulates coerced form rows and exports them.
package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/a3tai/pdf-form-export/internal/form"
)

// ErrRowLength is matched by RowLengthError.
var ErrRowLength = errors.New("row length does not match column count")

// RowLengthError reports a row whose width differs from the table's.
type RowLengthError struct {
	Want int
	Got  int
}

func (e *RowLengthError) Error() string {
	return fmt.Sprintf("%s: want %d values, got %d", ErrRowLength, e.Want, e.Got)
}

func (e *RowLengthError) Is(target error) bool {
	return target == ErrRowLength
}

// Table is an immutable set of rows under a fixed header. The zero value
// is an empty table with no columns.
type Table struct {
	columns []string
	rows    [][]form.Value
}

// New returns an empty table with the given column headers.
func New(columns []string) Table {
	return Table{columns: slices.Clone(columns)}
}

// Append returns a new table with row added at the end. The receiver is not
// modified.
func (t Table) Append(row []form.Value) (Table, error) {
	if len(row) != len(t.columns) {
		return t, &RowLengthError{Want: len(t.columns), Got: len(row)}
	}

	rows := make([][]form.Value, len(t.rows), len(t.rows)+1)
	copy(rows, t.rows)
	rows = append(rows, slices.Clone(row))

	return Table{columns: t.columns, rows: rows}, nil
}

// Columns returns a copy of the column headers.
func (t Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Rows returns a copy of the rows.
func (t Table) Rows() [][]form.Value {
	rows := make([][]form.Value, len(t.rows))
	for i, r := range t.rows {
		rows[i] = slices.Clone(r)
	}
	return rows
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}
