// Package grid holds the table model: ordered columns and rows that carry a
// stable identifier assigned once at construction.
package grid

import (
	"github.com/oakwood-commons/jsontable/internal/shape"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// DefaultSampleRows bounds how many rows are inspected for column discovery.
const DefaultSampleRows = 200

// Row is one table entry. ID is its position in the unfiltered row sequence
// and never changes afterwards.
type Row struct {
	ID     int
	Fields *jsonvalue.Object
}

// Get returns the value of column col.
func (r Row) Get(col string) (jsonvalue.Value, bool) {
	return r.Fields.Get(col)
}

// Value returns the row fields as an object value.
func (r Row) Value() jsonvalue.Value {
	return jsonvalue.FromObject(r.Fields)
}

// Table is the derived row/column model for one focused value.
type Table struct {
	Columns []string
	Rows    []Row
}

// Options controls table construction.
type Options struct {
	Policy     shape.Policy
	SampleRows int
}

// Build runs shape inference on v and assigns row IDs.
func Build(v jsonvalue.Value, opts Options) *Table {
	return FromRecords(shape.Infer(v, opts.Policy), opts.SampleRows)
}

// FromRecords assigns sequential IDs to records and derives the columns.
func FromRecords(records []*jsonvalue.Object, sample int) *Table {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{ID: i, Fields: rec}
	}
	return &Table{
		Columns: shape.Columns(records, sample),
		Rows:    rows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// Records returns rows as a JSON array of their field objects.
func (t *Table) Records() jsonvalue.Value {
	return RowsValue(t.Rows)
}

// RowsValue returns rows as a JSON array of their field objects.
func RowsValue(rows []Row) jsonvalue.Value {
	items := make([]jsonvalue.Value, len(rows))
	for i, r := range rows {
		items[i] = r.Value()
	}
	return jsonvalue.Array(items...)
}
