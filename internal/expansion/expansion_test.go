package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleTwiceRestoresState(t *testing.T) {
	s := NewStore()
	s.Expand(CellKey(0, "other"))
	before := s.Clone()

	k := CellKey(1, "tags").Child(Item(2), Prop("reviews"))
	assert.True(t, s.Toggle(k))
	assert.True(t, s.IsExpanded(k))
	assert.False(t, s.Toggle(k))
	assert.False(t, s.IsExpanded(k))
	assert.True(t, s.Equal(before))
}

func TestKeysWithSeparatorsDoNotCollide(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
	}{
		{
			name: "column containing dash",
			a:    Key{RowID: 1, Column: "a-b"},
			b:    Key{RowID: 1, Column: "a", Path: []Segment{Prop("b")}},
		},
		{
			name: "row id and column digits",
			a:    Key{RowID: 1, Column: "1x"},
			b:    Key{RowID: 11, Column: "x"},
		},
		{
			name: "property versus index",
			a:    CellKey(0, "c").Child(Prop("0")),
			b:    CellKey(0, "c").Child(Item(0)),
		},
		{
			name: "name with encoded segment",
			a:    CellKey(0, "c").Child(Prop("x1:y")),
			b:    CellKey(0, "c").Child(Prop("x"), Prop("y")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, tt.a.String(), tt.b.String())
			s := NewStore()
			s.Expand(tt.a)
			assert.False(t, s.IsExpanded(tt.b))
		})
	}
}

func TestChildDoesNotAliasParent(t *testing.T) {
	parent := CellKey(0, "c").Child(Item(0))
	a := parent.Child(Prop("x"))
	b := parent.Child(Prop("y"))
	assert.Equal(t, "x", a.Path[1].Name)
	assert.Equal(t, "y", b.Path[1].Name)
	assert.Len(t, parent.Path, 1)
}

func TestClearAndClone(t *testing.T) {
	s := NewStore()
	s.Expand(CellKey(0, "a"))
	s.Expand(CellKey(1, "a"))
	clone := s.Clone()
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 2, clone.Len())

	keys := clone.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, 0, keys[0].RowID)
	assert.False(t, clone.Expand(CellKey(0, "a")))
}
