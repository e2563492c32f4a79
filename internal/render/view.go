package render

import (
	"strconv"

	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/internal/focus"
	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/internal/shape"
)

// Header is a table column as displayed.
type Header struct {
	Key   string
	Label string
	Wide  bool
}

// Row is one rendered table row.
type Row struct {
	ID    int
	Cells []Cell
}

// View is the complete, paint-agnostic description of the table screen.
type View struct {
	Title        string
	DisplayName  string
	Focused      bool
	Breadcrumbs  []focus.Crumb
	Columns      []Header
	Rows         []Row
	Query        string
	TotalRows    int
	EmptyMessage string
}

// Empty reports whether the view shows no rows.
func (v View) Empty() bool { return len(v.Rows) == 0 }

// Input is the state a View is rendered from.
type Input struct {
	Columns     []string
	Rows        []grid.Row
	TotalRows   int
	Breadcrumb  []string
	DisplayName string
	Depth       int
	Query       string
}

// Messages shown instead of rows.
const (
	EmptyTableMessage = "No data to display"
	NoMatchMessage    = "No rows match the search"
)

// Title returns "JSON Table (N rows)", with the focused name appended when
// the view is not the root.
func Title(rows, depth int, displayName string) string {
	title := "JSON Table (" + strconv.Itoa(rows) + " rows)"
	if depth > 0 {
		title += " - " + displayName
	}
	return title
}

// View renders the whole table. The focus registry is reset first and
// repopulated as container cells are rendered.
func (r *Renderer) View(in Input) View {
	r.registry.Reset()
	r.parent = in.Breadcrumb

	view := View{
		Title:       Title(len(in.Rows), in.Depth, in.DisplayName),
		DisplayName: in.DisplayName,
		Focused:     in.Depth > 0,
		Breadcrumbs: focus.Breadcrumbs(in.Breadcrumb),
		Query:       in.Query,
		TotalRows:   in.TotalRows,
		Columns:     make([]Header, len(in.Columns)),
		Rows:        make([]Row, 0, len(in.Rows)),
	}
	for i, col := range in.Columns {
		view.Columns[i] = Header{Key: col, Label: FormatColumnName(col)}
	}

	for _, row := range in.Rows {
		out := Row{ID: row.ID, Cells: make([]Cell, len(in.Columns))}
		for i, col := range in.Columns {
			v, ok := row.Get(col)
			if !ok {
				out.Cells[i] = Missing()
				continue
			}
			out.Cells[i] = r.Cell(v, Context{
				Key:   expansion.CellKey(row.ID, col),
				Mode:  ModeCell,
				Label: cellLabel(row, col),
				Query: in.Query,
			})
			if out.Cells[i].Wide {
				view.Columns[i].Wide = true
			}
		}
		view.Rows = append(view.Rows, out)
	}

	switch {
	case in.TotalRows == 0:
		view.EmptyMessage = EmptyTableMessage
	case len(in.Rows) == 0:
		view.EmptyMessage = NoMatchMessage
	}
	return view
}

// cellLabel names a cell for focus display names. In property/value tables
// the value cell is named after its property.
func cellLabel(row grid.Row, col string) string {
	if col != shape.ValueColumn {
		return col
	}
	if p, ok := row.Get(shape.PropertyColumn); ok && p.Str() != "" {
		return p.Str()
	}
	return col
}

// Walk calls fn for every cell in the view, depth first, including cells of
// expanded mini-tables.
func (v View) Walk(fn func(Cell)) {
	for _, row := range v.Rows {
		for _, c := range row.Cells {
			walkCell(c, fn)
		}
	}
}

func walkCell(c Cell, fn func(Cell)) {
	fn(c)
	if c.Nested == nil {
		return
	}
	for _, row := range c.Nested.Rows {
		for _, nc := range row.Cells {
			walkCell(nc, fn)
		}
	}
}

// Collapsed returns the keys of every visible expandable cell that is not
// expanded yet.
func (v View) Collapsed() []expansion.Key {
	var keys []expansion.Key
	v.Walk(func(c Cell) {
		if c.Expandable && !c.Expanded {
			keys = append(keys, c.Key)
		}
	})
	return keys
}

// Affordances returns every visible cell that can be toggled or focused, in
// display order.
func (v View) Affordances() []Cell {
	var cells []Cell
	v.Walk(func(c Cell) {
		if c.Expandable || c.FocusID != "" {
			cells = append(cells, c)
		}
	})
	return cells
}
