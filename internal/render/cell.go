// Package render turns table state into a paint-agnostic view description.
//
// Rendering is a pure function of the value, its cell key, the expansion set
// and the search query. The only side effect is populating the focus
// Registry, whose IDs are derived from cell keys and therefore stable.
package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/internal/search"
	"github.com/oakwood-commons/jsontable/internal/shape"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Kind classifies a rendered cell.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindDate
	KindImage
	KindArray
	KindObject
	KindEmptyObject
	KindSummary
)

// Mode says where a value sits, which decides how objects are shown.
type Mode int

const (
	// ModeCell is a top-level table cell.
	ModeCell Mode = iota
	// ModeNested is a property value or primitive item inside an expansion.
	ModeNested
	// ModeArrayItem is a field of an object item in an expanded array. Small
	// objects here render as an inline summary instead of a badge.
	ModeArrayItem
)

// InlineSummaryMaxKeys is the largest object shown as an inline summary.
const InlineSummaryMaxKeys = 4

// WideTextLen is the string length beyond which a cell asks for extra width.
const WideTextLen = 30

// Context locates a value being rendered.
type Context struct {
	Key   expansion.Key
	Mode  Mode
	Label string
	Query string
}

// Cell is the description of one rendered value.
type Cell struct {
	Kind Kind
	// Text is the display text; for containers it is the badge label without
	// the open/closed glyph.
	Text  string
	Spans []search.Span
	Bool  bool
	Image *Image
	Count int
	Wide  bool

	Expandable bool
	Expanded   bool
	Key        expansion.Key
	FocusID    string

	Nested *Nested
}

// Glyph returns the open/closed marker of an expandable cell.
func (c Cell) Glyph() string {
	if !c.Expandable {
		return ""
	}
	if c.Expanded {
		return "[-]"
	}
	return "[+]"
}

// Badge returns the glyph followed by the label, or Text for plain cells.
func (c Cell) Badge() string {
	if g := c.Glyph(); g != "" {
		return g + " " + c.Text
	}
	return c.Text
}

// NestedKind distinguishes the two kinds of inline expansion.
type NestedKind int

const (
	NestedArray NestedKind = iota
	NestedObject
)

// Nested is the mini-table revealed beneath an expanded badge.
type Nested struct {
	Kind    NestedKind
	Header  string
	Columns []string
	Rows    []NestedRow
}

// NestedRow is one row of a mini-table. A FullWidth row holds a single cell
// spanning every column (a primitive array item).
type NestedRow struct {
	Cells     []Cell
	FullWidth bool
}

// Options tunes rendering.
type Options struct {
	DateLayout       string
	Location         *time.Location
	NestedSample     int
	NestedMaxColumns int
}

// Defaults used when Options fields are zero.
const (
	DefaultDateLayout       = "2006-01-02 15:04"
	DefaultNestedSample     = 50
	DefaultNestedMaxColumns = 10
)

func (o Options) withDefaults() Options {
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.NestedSample <= 0 {
		o.NestedSample = DefaultNestedSample
	}
	if o.NestedMaxColumns <= 0 {
		o.NestedMaxColumns = DefaultNestedMaxColumns
	}
	return o
}

// Renderer renders cells against one expansion set and focus registry.
type Renderer struct {
	opts     Options
	store    *expansion.Store
	registry *Registry
	parent   []string
}

// New returns a renderer. parent is the breadcrumb path of the table being
// rendered; registered focus targets extend it.
func New(store *expansion.Store, registry *Registry, parent []string, opts Options) *Renderer {
	return &Renderer{
		opts:     opts.withDefaults(),
		store:    store,
		registry: registry,
		parent:   parent,
	}
}

// Missing is the cell shown for an absent field.
func Missing() Cell {
	return Cell{Kind: KindMissing, Text: "-"}
}

// Cell renders v in ctx.
func (r *Renderer) Cell(v jsonvalue.Value, ctx Context) Cell {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return Cell{Kind: KindNull, Text: "null"}
	case jsonvalue.KindBool:
		text := strconv.FormatBool(v.Bool())
		return Cell{Kind: KindBool, Text: text, Bool: v.Bool(), Spans: search.Highlight(text, ctx.Query)}
	case jsonvalue.KindNumber:
		text := FormatNumber(v)
		return Cell{Kind: KindNumber, Text: text, Spans: search.Highlight(text, ctx.Query)}
	case jsonvalue.KindString:
		return r.stringCell(v.Str(), ctx)
	case jsonvalue.KindArray:
		return r.arrayCell(v, ctx)
	case jsonvalue.KindObject:
		return r.objectCell(v, ctx)
	}
	return Missing()
}

func (r *Renderer) stringCell(s string, ctx Context) Cell {
	if IsImage(s) {
		img := NewImage(s)
		return Cell{Kind: KindImage, Text: img.Label, Image: &img, Spans: search.Highlight(img.Label, ctx.Query)}
	}
	if text, ok := FormatTimestamp(s, r.opts.DateLayout, r.opts.Location); ok {
		return Cell{Kind: KindDate, Text: text, Spans: search.Highlight(text, ctx.Query)}
	}
	return Cell{
		Kind:  KindString,
		Text:  s,
		Spans: search.Highlight(s, ctx.Query),
		Wide:  len([]rune(s)) > WideTextLen,
	}
}

func (r *Renderer) arrayCell(v jsonvalue.Value, ctx Context) Cell {
	n := v.Len()
	cell := Cell{
		Kind:       KindArray,
		Text:       "[" + strconv.Itoa(n) + "] " + plural(n, "item", "items"),
		Count:      n,
		Expandable: true,
		Key:        ctx.Key,
		Expanded:   r.store.IsExpanded(ctx.Key),
	}
	cell.FocusID = r.registry.Register(ctx.Key, v, ctx.Label+" (Array)", r.parent)
	if !cell.Expanded || n == 0 {
		return cell
	}
	cell.Wide = true

	items := v.Items()
	cols := shape.NestedColumns(items, r.opts.NestedSample, r.opts.NestedMaxColumns)
	nested := &Nested{
		Kind:    NestedArray,
		Header:  "Array Items (" + strconv.Itoa(n) + "):",
		Columns: cols,
		Rows:    make([]NestedRow, 0, n),
	}
	for i, item := range items {
		obj := item.Object()
		if obj == nil {
			nested.Rows = append(nested.Rows, NestedRow{
				FullWidth: true,
				Cells: []Cell{r.Cell(item, Context{
					Key:   ctx.Key.Child(expansion.Item(i)),
					Mode:  ModeNested,
					Label: ctx.Label + "[" + strconv.Itoa(i) + "]",
					Query: ctx.Query,
				})},
			})
			continue
		}
		row := NestedRow{Cells: make([]Cell, len(cols))}
		for c, col := range cols {
			fv, ok := obj.Get(col)
			if !ok {
				row.Cells[c] = Missing()
				continue
			}
			row.Cells[c] = r.Cell(fv, Context{
				Key:   ctx.Key.Child(expansion.Item(i), expansion.Prop(col)),
				Mode:  ModeArrayItem,
				Label: col,
				Query: ctx.Query,
			})
		}
		nested.Rows = append(nested.Rows, row)
	}
	cell.Nested = nested
	return cell
}

func (r *Renderer) objectCell(v jsonvalue.Value, ctx Context) Cell {
	obj := v.Object()
	n := obj.Len()
	if n == 0 {
		return Cell{Kind: KindEmptyObject, Text: "{}"}
	}
	if ctx.Mode == ModeArrayItem && n <= InlineSummaryMaxKeys {
		text := Summary(obj)
		return Cell{
			Kind:    KindSummary,
			Text:    text,
			Count:   n,
			Spans:   search.Highlight(text, ctx.Query),
			Key:     ctx.Key,
			FocusID: r.registry.Register(ctx.Key, v, ctx.Label+" (Object)", r.parent),
		}
	}

	cell := Cell{
		Kind:       KindObject,
		Text:       "{" + strconv.Itoa(n) + "} " + plural(n, "property", "properties"),
		Count:      n,
		Expandable: true,
		Key:        ctx.Key,
		Expanded:   r.store.IsExpanded(ctx.Key),
	}
	cell.FocusID = r.registry.Register(ctx.Key, v, ctx.Label+" (Object)", r.parent)
	if !cell.Expanded {
		return cell
	}
	cell.Wide = true

	nested := &Nested{
		Kind:    NestedObject,
		Header:  "Properties (" + strconv.Itoa(n) + "):",
		Columns: []string{shape.PropertyColumn, shape.ValueColumn},
		Rows:    make([]NestedRow, 0, n),
	}
	for _, m := range obj.Members() {
		name := Cell{Kind: KindString, Text: m.Key, Spans: search.Highlight(m.Key, ctx.Query)}
		val := r.Cell(m.Value, Context{
			Key:   ctx.Key.Child(expansion.Prop(m.Key)),
			Mode:  ModeNested,
			Label: m.Key,
			Query: ctx.Query,
		})
		nested.Rows = append(nested.Rows, NestedRow{Cells: []Cell{name, val}})
	}
	cell.Nested = nested
	return cell
}

// Summary renders a small object as "{k: v, k2: [2 items]}".
func Summary(obj *jsonvalue.Object) string {
	parts := make([]string, 0, obj.Len())
	for _, m := range obj.Members() {
		parts = append(parts, m.Key+": "+ScalarText(m.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
