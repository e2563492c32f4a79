// Package expansion tracks which nested cells are expanded.
//
// Cells are identified by a structured Key rather than a concatenated string,
// so property names containing separators can never collide.
package expansion

import (
	"sort"
	"strconv"
	"strings"
)

// Container is the kind of container a path segment steps into.
type Container uint8

const (
	InArray Container = iota
	InObject
)

// Segment is one step of a nested path: an array index or an object key.
type Segment struct {
	Kind  Container
	Index int
	Name  string
}

// Item returns an array-index segment.
func Item(i int) Segment { return Segment{Kind: InArray, Index: i} }

// Prop returns an object-key segment.
func Prop(name string) Segment { return Segment{Kind: InObject, Name: name} }

func (s Segment) String() string {
	if s.Kind == InArray {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "." + strconv.Quote(s.Name)
}

// Key identifies one expandable cell: a top-level cell when Path is empty,
// otherwise a region nested inside already expanded cells.
type Key struct {
	RowID  int
	Column string
	Path   []Segment
}

// CellKey returns the key of a top-level cell.
func CellKey(rowID int, column string) Key {
	return Key{RowID: rowID, Column: column}
}

// Child returns a new key extended by segs. k is left unchanged.
func (k Key) Child(segs ...Segment) Key {
	path := make([]Segment, 0, len(k.Path)+len(segs))
	path = append(path, k.Path...)
	path = append(path, segs...)
	return Key{RowID: k.RowID, Column: k.Column, Path: path}
}

// Depth returns the number of nested segments.
func (k Key) Depth() int { return len(k.Path) }

// String returns the canonical encoding of k. Names are length-prefixed, so
// two distinct keys never share an encoding.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(k.RowID))
	sb.WriteByte('/')
	writeName(&sb, k.Column)
	for _, s := range k.Path {
		if s.Kind == InArray {
			sb.WriteByte('a')
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteByte(';')
			continue
		}
		sb.WriteByte('o')
		writeName(&sb, s.Name)
	}
	return sb.String()
}

func writeName(sb *strings.Builder, name string) {
	sb.WriteString(strconv.Itoa(len(name)))
	sb.WriteByte(':')
	sb.WriteString(name)
}

// Store is a set of expanded keys. It is not safe for concurrent use.
type Store struct {
	keys map[string]Key
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{keys: make(map[string]Key)}
}

// Toggle flips membership of k and reports whether k is now expanded.
func (s *Store) Toggle(k Key) bool {
	id := k.String()
	if _, ok := s.keys[id]; ok {
		delete(s.keys, id)
		return false
	}
	s.keys[id] = k
	return true
}

// IsExpanded reports whether k is expanded.
func (s *Store) IsExpanded(k Key) bool {
	_, ok := s.keys[k.String()]
	return ok
}

// Expand adds k and reports whether it was newly added.
func (s *Store) Expand(k Key) bool {
	id := k.String()
	if _, ok := s.keys[id]; ok {
		return false
	}
	s.keys[id] = k
	return true
}

// Collapse removes k.
func (s *Store) Collapse(k Key) {
	delete(s.keys, k.String())
}

// Clear removes every key.
func (s *Store) Clear() {
	clear(s.keys)
}

// Len returns the number of expanded keys.
func (s *Store) Len() int { return len(s.keys) }

// Clone returns an independent copy of s.
func (s *Store) Clone() *Store {
	out := &Store{keys: make(map[string]Key, len(s.keys))}
	for id, k := range s.keys {
		out.keys[id] = k
	}
	return out
}

// Keys returns the expanded keys ordered by their canonical encoding.
func (s *Store) Keys() []Key {
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Key, len(ids))
	for i, id := range ids {
		out[i] = s.keys[id]
	}
	return out
}

// Equal reports whether two stores hold the same keys.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.keys {
		if _, ok := other.keys[id]; !ok {
			return false
		}
	}
	return true
}
