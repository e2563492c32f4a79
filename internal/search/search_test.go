package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

func buildTable(t *testing.T, s string) *grid.Table {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(s))
	require.NoError(t, err)
	return grid.Build(v, grid.Options{})
}

func ids(rows []grid.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestFilterCaseInsensitive(t *testing.T) {
	tbl := buildTable(t, `[{"city":"Berlin"}]`)
	assert.Len(t, Filter(tbl.Rows, "berlin"), 1)
	assert.Len(t, Filter(tbl.Rows, "BERL"), 1)
	assert.Empty(t, Filter(tbl.Rows, "paris"))
}

func TestFilterKeepsRowIDs(t *testing.T) {
	tbl := buildTable(t, `[{"n":"alpha"},{"n":"beta"},{"n":"alphabet"},{"n":"gamma"}]`)
	first := Filter(tbl.Rows, "alpha")
	second := Filter(tbl.Rows, "alpha")
	assert.Equal(t, []int{0, 2}, ids(first))
	assert.Equal(t, ids(first), ids(second))
	assert.Same(t, tbl.Rows[2].Fields, first[1].Fields)
}

func TestFilterBlankQueryReturnsAll(t *testing.T) {
	tbl := buildTable(t, `[{"a":1},{"a":2}]`)
	assert.Equal(t, []int{0, 1}, ids(Filter(tbl.Rows, "   ")))
	assert.Equal(t, []int{0, 1}, ids(Filter(tbl.Rows, "")))
}

func TestFilterMatchesKeyNames(t *testing.T) {
	tbl := buildTable(t, `[{"hidden":{"secretKey":1}},{"other":2}]`)
	assert.Equal(t, []int{0}, ids(Filter(tbl.Rows, "secretkey")))
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []Span
	}{
		{
			name:  "blank query",
			text:  "Berlin",
			query: " ",
			want:  []Span{{Text: "Berlin"}},
		},
		{
			name:  "case preserved in output",
			text:  "Berlin berlin",
			query: "BER",
			want: []Span{
				{Text: "Ber", Match: true},
				{Text: "lin "},
				{Text: "ber", Match: true},
				{Text: "lin"},
			},
		},
		{
			name:  "non overlapping",
			text:  "aaa",
			query: "aa",
			want:  []Span{{Text: "aa", Match: true}, {Text: "a"}},
		},
		{
			name:  "unicode",
			text:  "Straße ÄPFEL",
			query: "äpfel",
			want:  []Span{{Text: "Straße "}, {Text: "ÄPFEL", Match: true}},
		},
		{
			name:  "no match",
			text:  "abc",
			query: "z",
			want:  []Span{{Text: "abc"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}

func TestHighlightAgreesWithContains(t *testing.T) {
	for _, q := range []string{"BER", "xyz", "lin b", "É"} {
		text := "Berlin berlin éa"
		assert.Equal(t, Contains(text, q), HasMatch(Highlight(text, q)), q)
	}
}

func TestPendingOnlyLatestTickApplies(t *testing.T) {
	var p Pending
	first := p.Next("b")
	second := p.Next("be")
	assert.False(t, p.Ready(first))
	assert.True(t, p.Ready(second))
	assert.False(t, p.Ready(second), "tick fires once")
	assert.Equal(t, "be", p.Query())

	third := p.Next("ber")
	p.Cancel()
	assert.False(t, p.Ready(third))
	assert.False(t, p.Armed())
}
