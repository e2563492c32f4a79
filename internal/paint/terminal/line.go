package terminal

import (
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
)

// seg is a run of text sharing one style. Widths are measured on the plain
// text; styles are applied only when the line is written out.
type seg struct {
	text  string
	style lipgloss.Style
	plain bool
}

type line []seg

func text(s string) seg { return seg{text: s, plain: true} }

func styled(s string, st lipgloss.Style) seg { return seg{text: s, style: st} }

func (l line) width() int {
	w := 0
	for _, s := range l {
		w += runewidth.StringWidth(s.text)
	}
	return w
}

// truncate cuts l to width columns, ending with an ellipsis when anything
// was dropped.
func (l line) truncate(width int) line {
	if l.width() <= width {
		return l
	}
	if width <= 0 {
		return nil
	}
	out := make(line, 0, len(l))
	left := width - 1
	for _, s := range l {
		w := runewidth.StringWidth(s.text)
		if w <= left {
			out = append(out, s)
			left -= w
			continue
		}
		if left > 0 {
			s.text = runewidth.Truncate(s.text, left, "")
			out = append(out, s)
		}
		break
	}
	return append(out, text("…"))
}

// pad extends l with spaces to width columns.
func (l line) pad(width int) line {
	if w := l.width(); w < width {
		return append(l, text(strings.Repeat(" ", width-w)))
	}
	return l
}

func (l line) restyle(st lipgloss.Style) line {
	out := make(line, len(l))
	for i, s := range l {
		out[i] = seg{text: s.text, style: st}
	}
	return out
}

func indent(lines []line, n int) []line {
	prefix := text(strings.Repeat(" ", n))
	out := make([]line, len(lines))
	for i, l := range lines {
		out[i] = append(line{prefix}, l...)
	}
	return out
}

func (l line) String(noColor bool) string {
	var b strings.Builder
	for _, s := range l {
		if noColor || s.plain {
			b.WriteString(s.text)
			continue
		}
		b.WriteString(s.style.Render(s.text))
	}
	return b.String()
}

func sanitize(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}
