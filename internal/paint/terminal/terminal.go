// Package terminal paints a rendered table view as styled terminal text.
package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/internal/focus"
	"github.com/oakwood-commons/jsontable/internal/render"
)

const (
	// DefaultColumnWidth caps a column; columns holding wide content get
	// twice as much.
	DefaultColumnWidth = 30
	minColumnWidth     = 3
	columnSeparator    = " │ "
	nestedSeparator    = "  "
	// FocusMarker follows every cell that can be focused.
	FocusMarker = " »"
)

// Options configures a Painter.
type Options struct {
	// Width is the terminal width. Zero leaves columns at their natural
	// (capped) widths.
	Width       int
	NoColor     bool
	Theme       config.ThemeConfig
	ColumnWidth int
	// Selected is the expansion key (Key.String) of the highlighted cell.
	Selected string
}

// Painter turns views into text.
type Painter struct {
	opts Options
	st   Styles
}

// New returns a painter.
func New(opts Options) *Painter {
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	return &Painter{opts: opts, st: NewStyles(opts.Theme)}
}

// SetWidth changes the terminal width.
func (p *Painter) SetWidth(w int) { p.opts.Width = w }

// SetSelected changes the highlighted cell.
func (p *Painter) SetSelected(key string) { p.opts.Selected = key }

// Table paints the title, breadcrumbs, search status and table of v.
func (p *Painter) Table(v render.View) string {
	out := []line{{styled(v.Title, p.st.Title)}}
	if v.Focused {
		out = append(out, p.crumbs(v.Breadcrumbs))
	}
	if v.Query != "" {
		out = append(out, line{styled(fmt.Sprintf("Search %q: %d of %d rows", v.Query, len(v.Rows), v.TotalRows), p.st.Muted)})
	}
	out = append(out, nil)

	if len(v.Columns) > 0 {
		out = append(out, p.table(v)...)
	}
	if v.EmptyMessage != "" {
		out = append(out, line{styled(v.EmptyMessage, p.st.Muted)})
	}
	return p.join(out)
}

// Lines paints only the table body of v, one entry per terminal line.
func (p *Painter) Lines(v render.View) []string {
	lines := p.table(v)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String(p.opts.NoColor)
	}
	return out
}

// JSON paints syntax-coloured JSON tokens.
func (p *Painter) JSON(tokens []render.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		st, ok := p.st.forToken(t.Class)
		if !ok || p.opts.NoColor {
			b.WriteString(t.Text)
			continue
		}
		b.WriteString(st.Render(t.Text))
	}
	return b.String()
}

// Crumbs paints the breadcrumb trail with level numbers.
func (p *Painter) Crumbs(cs []focus.Crumb) string {
	return p.crumbs(cs).String(p.opts.NoColor)
}

func (p *Painter) crumbs(cs []focus.Crumb) line {
	var l line
	for i, c := range cs {
		if i > 0 {
			l = append(l, styled(" › ", p.st.Muted))
		}
		st := p.st.Active
		if c.Link {
			st = p.st.Crumb
		}
		l = append(l, styled(strconv.Itoa(c.Level), p.st.Muted), text(" "), styled(c.Label, st))
	}
	return l
}

type gridRow struct {
	cells [][]line
	// full is set for rows that span every column.
	full []line
}

func (p *Painter) table(v render.View) []line {
	header := make([]line, len(v.Columns))
	caps := make([]int, len(v.Columns))
	for i, h := range v.Columns {
		header[i] = line{styled(h.Label, p.st.Header)}
		caps[i] = p.opts.ColumnWidth
		if h.Wide {
			caps[i] *= 2
		}
	}
	rows := make([]gridRow, len(v.Rows))
	for i, r := range v.Rows {
		cells := make([][]line, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = p.cellLines(c)
		}
		rows[i] = gridRow{cells: cells}
	}
	widths := naturalWidths(header, rows)
	for i := range widths {
		widths[i] = min(widths[i], caps[i])
	}
	widths = fit(widths, p.opts.Width, len(columnSeparator))
	return p.grid(header, rows, widths, columnSeparator, true)
}

func (p *Painter) grid(header []line, rows []gridRow, widths []int, sep string, rule bool) []line {
	var out []line
	if header != nil {
		out = append(out, p.joinCells(header, widths, sep))
		if rule {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("─", w)
			}
			out = append(out, line{styled(strings.Join(parts, "─┼─"), p.st.Border)})
		}
	}
	for _, r := range rows {
		if r.full != nil {
			out = append(out, r.full...)
			continue
		}
		height := 0
		for _, c := range r.cells {
			height = max(height, len(c))
		}
		for h := 0; h < height; h++ {
			cells := make([]line, len(widths))
			for i := range widths {
				if i < len(r.cells) && h < len(r.cells[i]) {
					cells[i] = r.cells[i][h]
				}
			}
			out = append(out, p.joinCells(cells, widths, sep))
		}
	}
	return out
}

func (p *Painter) joinCells(cells []line, widths []int, sep string) line {
	var out line
	for i, w := range widths {
		if i > 0 {
			out = append(out, styled(sep, p.st.Border))
		}
		var c line
		if i < len(cells) {
			c = cells[i]
		}
		out = append(out, c.truncate(w).pad(w)...)
	}
	return out
}

func (p *Painter) cellLines(c render.Cell) []line {
	lines := []line{p.cellText(c)}
	if c.Nested != nil {
		lines = append(lines, p.nestedLines(c.Nested)...)
	}
	return lines
}

func (p *Painter) cellText(c render.Cell) line {
	base := p.st.forCell(c)
	var l line
	if g := c.Glyph(); g != "" {
		l = append(l, styled(g+" ", p.st.Badge))
	}
	if len(c.Spans) > 0 {
		for _, sp := range c.Spans {
			st := base
			if sp.Match {
				st = p.st.Match
			}
			l = append(l, styled(sanitize(sp.Text), st))
		}
	} else {
		l = append(l, styled(sanitize(c.Text), base))
	}
	if c.FocusID != "" {
		l = append(l, styled(FocusMarker, p.st.Link))
	}
	if p.opts.Selected != "" && (c.Expandable || c.FocusID != "") && c.Key.String() == p.opts.Selected {
		l = l.restyle(p.st.Selected)
	}
	return l
}

func (p *Painter) nestedLines(n *render.Nested) []line {
	lines := []line{{styled(n.Header, p.st.Muted)}}
	tabular := false
	for _, r := range n.Rows {
		tabular = tabular || !r.FullWidth
	}
	var header []line
	if n.Kind == render.NestedArray && tabular {
		header = make([]line, len(n.Columns))
		for i, col := range n.Columns {
			header[i] = line{styled(render.FormatColumnName(col), p.st.Key)}
		}
	}
	rows := make([]gridRow, len(n.Rows))
	for i, r := range n.Rows {
		if r.FullWidth {
			var full []line
			for _, c := range r.Cells {
				full = append(full, p.cellLines(c)...)
			}
			rows[i] = gridRow{full: full}
			continue
		}
		cells := make([][]line, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = p.cellLines(c)
		}
		if n.Kind == render.NestedObject && len(cells) > 0 {
			cells[0] = []line{cells[0][0].restyle(p.st.Key)}
		}
		rows[i] = gridRow{cells: cells}
	}
	widths := naturalWidths(header, rows)
	return append(lines, indent(p.grid(header, rows, widths, nestedSeparator, false), 2)...)
}

// naturalWidths is the widest line of each column, header included.
func naturalWidths(header []line, rows []gridRow) []int {
	n := len(header)
	for _, r := range rows {
		n = max(n, len(r.cells))
	}
	widths := make([]int, n)
	for i, h := range header {
		widths[i] = h.width()
	}
	for _, r := range rows {
		for i, c := range r.cells {
			for _, l := range c {
				widths[i] = max(widths[i], l.width())
			}
		}
	}
	return widths
}

// fit shrinks the widest columns one cell at a time until the row fits in
// total columns or every column is at the minimum.
func fit(widths []int, total, sepWidth int) []int {
	if total <= 0 || len(widths) == 0 {
		return widths
	}
	usable := total - sepWidth*(len(widths)-1)
	sum := 0
	for _, w := range widths {
		sum += w
	}
	for sum > usable {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
		sum--
	}
	return widths
}

func (p *Painter) join(lines []line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String(p.opts.NoColor)
	}
	return strings.Join(parts, "\n")
}
