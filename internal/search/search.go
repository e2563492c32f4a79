// Package search filters rows by a free-text query and splits text into
// highlighted segments using the same case-insensitive matching.
package search

import (
	"strings"
	"unicode"

	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Blank reports whether q is empty or whitespace only.
func Blank(q string) bool {
	return strings.TrimSpace(q) == ""
}

func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// Contains reports whether s contains q, ignoring case.
func Contains(s, q string) bool {
	return strings.Contains(fold(s), fold(q))
}

// Filter returns the rows whose JSON serialization contains q, in their
// original order. Rows are returned as-is; IDs are never touched. A blank
// query returns rows unchanged.
func Filter(rows []grid.Row, q string) []grid.Row {
	if Blank(q) {
		return rows
	}
	needle := fold(q)
	out := make([]grid.Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(fold(jsonvalue.Marshal(r.Value())), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Span is a run of text that either matches the query or does not.
type Span struct {
	Text  string
	Match bool
}

// Highlight splits s into spans, marking every non-overlapping occurrence of
// q. A blank query yields a single unmatched span.
func Highlight(s, q string) []Span {
	if s == "" {
		return nil
	}
	if Blank(q) {
		return []Span{{Text: s}}
	}
	src := []rune(s)
	hay := []rune(fold(s))
	needle := []rune(fold(q))
	if len(hay) != len(src) {
		// ToLower is rune-for-rune, so this only guards malformed input.
		return []Span{{Text: s}}
	}

	var spans []Span
	start := 0
	for i := 0; i+len(needle) <= len(hay); {
		if runesEqual(hay[i:i+len(needle)], needle) {
			if i > start {
				spans = append(spans, Span{Text: string(src[start:i])})
			}
			spans = append(spans, Span{Text: string(src[i : i+len(needle)]), Match: true})
			i += len(needle)
			start = i
			continue
		}
		i++
	}
	if start < len(src) {
		spans = append(spans, Span{Text: string(src[start:])})
	}
	return spans
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HasMatch reports whether any span is a match.
func HasMatch(spans []Span) bool {
	for _, s := range spans {
		if s.Match {
			return true
		}
	}
	return false
}
