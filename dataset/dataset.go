// Package dataset defines the in-memory representation of a SAS transport member.
//
// A Dataset is a Member (name, label, ordered columns) plus its rows. Column order is
// physical order. Rows hold one Value per column; AddRow enforces the width, while
// name and label limits are checked by the validate package so that datasets can be
// built up in stages.
//
// Writers never modify a Dataset handed to them. The streaming reader yields Rows
// without ever building a Dataset.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/xport/errs"
)

// Member holds the metadata of one dataset: everything except the rows.
type Member struct {
	Name     string
	Label    string
	Type     string
	Created  time.Time
	Modified time.Time
	Columns  []Column
}

// ColumnIndex returns the index of the named column, compared case-insensitively,
// or -1 if there is none.
func (m *Member) ColumnIndex(name string) int {
	for i := range m.Columns {
		if strings.EqualFold(m.Columns[i].Name, name) {
			return i
		}
	}

	return -1
}

// Column returns the named column, compared case-insensitively.
func (m *Member) Column(name string) (Column, bool) {
	if i := m.ColumnIndex(name); i >= 0 {
		return m.Columns[i], true
	}

	return Column{}, false
}

// NumColumns returns the number of columns.
func (m *Member) NumColumns() int {
	return len(m.Columns)
}

// Dataset is a member with its rows held in memory.
type Dataset struct {
	Member
	Rows []Row
}

// New creates an empty dataset with the given name and columns.
func New(name string, columns ...Column) *Dataset {
	return &Dataset{
		Member: Member{
			Name:    name,
			Columns: columns,
		},
	}
}

// AddColumn appends a column. Columns cannot be added once rows exist.
func (d *Dataset) AddColumn(c Column) error {
	if len(d.Rows) > 0 {
		return fmt.Errorf("%w: cannot add column %s to a dataset with rows", errs.ErrRowWidthMismatch, c.Name)
	}
	d.Columns = append(d.Columns, c)

	return nil
}

// AddRow appends a row of values.
//
// Returns:
//   - error: ErrRowWidthMismatch if len(values) differs from the column count
func (d *Dataset) AddRow(values ...Value) error {
	if len(values) != len(d.Columns) {
		return fmt.Errorf("%w: got %d values for %d columns", errs.ErrRowWidthMismatch, len(values), len(d.Columns))
	}

	row := make(Row, len(values))
	copy(row, values)
	d.Rows = append(d.Rows, row)

	return nil
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// Value returns the value at row i and column j.
func (d *Dataset) Value(i, j int) Value {
	return d.Rows[i][j]
}

// ColumnValues returns the values of column j in row order.
func (d *Dataset) ColumnValues(j int) []Value {
	values := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[j]
	}

	return values
}
