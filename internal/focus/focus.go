// Package focus implements drill-down navigation: re-rooting the table on a
// nested value and walking back through the saved history.
package focus

import (
	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/internal/grid"
	"github.com/oakwood-commons/jsontable/internal/shape"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// RootName is the display name of level 0.
const RootName = "Root"

// Context describes what the table is currently rooted on.
type Context struct {
	Data        jsonvalue.Value
	DisplayName string
	Breadcrumb  []string
}

// State is everything a level of the history restores: its context, table,
// the rows on screen, the expansion set and the query those rows reflect.
type State struct {
	Context   Context
	Table     *grid.Table
	Rows      []grid.Row
	Expansion *expansion.Store
	Query     string
}

// Options controls how tables are built for each level.
type Options struct {
	// RootPolicy applies to the root document only. Focused values always
	// use shape.PropertyValue.
	RootPolicy shape.Policy
	SampleRows int
}

// Navigator owns the current State and the stack of saved ones.
// It is not safe for concurrent use.
type Navigator struct {
	root  jsonvalue.Value
	opts  Options
	cur   State
	stack []State
}

// New returns a navigator rooted at root.
func New(root jsonvalue.Value, opts Options) *Navigator {
	n := &Navigator{root: root, opts: opts}
	n.resetToRoot()
	return n
}

func (n *Navigator) resetToRoot() {
	n.stack = nil
	n.cur = newState(Context{Data: n.root, DisplayName: RootName, Breadcrumb: []string{}},
		grid.Build(n.root, grid.Options{Policy: n.opts.RootPolicy, SampleRows: n.opts.SampleRows}))
}

func newState(ctx Context, tbl *grid.Table) State {
	return State{
		Context:   ctx,
		Table:     tbl,
		Rows:      tbl.Rows,
		Expansion: expansion.NewStore(),
	}
}

// Root returns the document level 0 is rooted on.
func (n *Navigator) Root() jsonvalue.Value { return n.root }

// Current returns the live state. Callers may replace Rows and Query and
// mutate Expansion; the navigator saves them verbatim on the next FocusOn.
func (n *Navigator) Current() *State { return &n.cur }

// Depth returns the number of saved levels; 0 means the root is shown.
func (n *Navigator) Depth() int { return len(n.stack) }

// FocusOn saves the current state and re-roots the table on data.
// The new state starts with an empty expansion set and unfiltered rows.
func (n *Navigator) FocusOn(data jsonvalue.Value, displayName string) {
	n.stack = append(n.stack, n.cur)
	path := make([]string, 0, len(n.cur.Context.Breadcrumb)+1)
	path = append(path, n.cur.Context.Breadcrumb...)
	path = append(path, displayName)
	n.cur = newState(Context{Data: data, DisplayName: displayName, Breadcrumb: path},
		grid.Build(data, grid.Options{Policy: shape.PropertyValue, SampleRows: n.opts.SampleRows}))
}

// FocusBack restores the most recently saved state exactly as it was saved.
// It reports false when already at the root.
func (n *Navigator) FocusBack() bool {
	if len(n.stack) == 0 {
		return false
	}
	last := len(n.stack) - 1
	n.cur = n.stack[last]
	n.stack[last] = State{}
	n.stack = n.stack[:last]
	return true
}

// FocusToLevel navigates to a breadcrumb level. Level 0 rebuilds the root
// table from scratch; other levels pop saved states until Depth() == level.
// Levels outside [0, Depth()) are ignored.
func (n *Navigator) FocusToLevel(level int) bool {
	if level == 0 {
		n.resetToRoot()
		return true
	}
	if level < 0 || level >= len(n.stack) {
		return false
	}
	for len(n.stack) > level {
		n.FocusBack()
	}
	return true
}

// Breadcrumbs returns the trail for the current context.
func (n *Navigator) Breadcrumbs() []Crumb {
	return Breadcrumbs(n.cur.Context.Breadcrumb)
}

// Crumb is one breadcrumb segment. Link segments navigate to Level.
type Crumb struct {
	Label string
	Level int
	Link  bool
}

// Breadcrumbs builds the trail "Root" + path. Every segment but the last is a
// link carrying its zero-based level.
func Breadcrumbs(path []string) []Crumb {
	labels := append([]string{RootName}, path...)
	out := make([]Crumb, len(labels))
	for i, l := range labels {
		out[i] = Crumb{Label: l, Level: i, Link: i < len(labels)-1}
	}
	return out
}
