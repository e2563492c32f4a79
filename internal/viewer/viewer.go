// Package viewer holds one interactive table instance: the focus history,
// expansion sets, search query and focus registry, plus the operations a
// host shell wires its controls to. Every mutating operation re-renders the
// view before returning.
//
// A Viewer is not safe for concurrent use; hosts that share one across
// goroutines must serialize access.
package viewer

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/focus"
	"github.com/oakwood-commons/jsontable/internal/navigator"
	"github.com/oakwood-commons/jsontable/internal/render"
	"github.com/oakwood-commons/jsontable/internal/search"
	"github.com/oakwood-commons/jsontable/internal/shape"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// MaxExpandPasses bounds ExpandAll. Each pass can reveal further nested
// badges, so deep documents are only expanded this many levels.
const MaxExpandPasses = 10

// Options configures a Viewer.
type Options struct {
	RootPolicy shape.Policy
	SampleRows int
	Render     render.Options
	AutoExpand bool
	Delimiter  string
	// Original is the document before any table transformation. JSON export
	// and the JSON view use it when set.
	Original *jsonvalue.Value
	Resolver *navigator.Resolver
	Logger   logr.Logger
}

// Viewer is one table instance.
type Viewer struct {
	opts     Options
	log      logr.Logger
	nav      *focus.Navigator
	registry *render.Registry
	resolver *navigator.Resolver
	query    string
	jsonView bool
	view     render.View
}

// New builds a viewer rooted at root and renders it. With AutoExpand set
// every expandable cell is opened right away.
func New(root jsonvalue.Value, opts Options) *Viewer {
	if opts.Delimiter == "" {
		opts.Delimiter = export.DefaultDelimiter
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = navigator.NewResolver(nil)
	}
	v := &Viewer{
		opts:     opts,
		log:      lgr,
		nav:      focus.New(root, focus.Options{RootPolicy: opts.RootPolicy, SampleRows: opts.SampleRows}),
		registry: render.NewRegistry(),
		resolver: resolver,
	}
	v.Render()
	v.autoExpand()
	return v
}

// Render rebuilds the view description from the current state.
func (v *Viewer) Render() render.View {
	cur := v.nav.Current()
	r := render.New(cur.Expansion, v.registry, cur.Context.Breadcrumb, v.opts.Render)
	v.view = r.View(render.Input{
		Columns:     cur.Table.Columns,
		Rows:        cur.Rows,
		TotalRows:   cur.Table.Len(),
		Breadcrumb:  cur.Context.Breadcrumb,
		DisplayName: cur.Context.DisplayName,
		Depth:       v.nav.Depth(),
		Query:       cur.Query,
	})
	return v.view
}

// View returns the most recently rendered view.
func (v *Viewer) View() render.View { return v.view }

// Current exposes the live focus state.
func (v *Viewer) Current() *focus.State { return v.nav.Current() }

// Toggle flips the expansion of key and returns whether it is now expanded.
func (v *Viewer) Toggle(key expansion.Key) bool {
	expanded := v.nav.Current().Expansion.Toggle(key)
	v.log.V(1).Info("toggled cell", "key", key.String(), "expanded", expanded)
	v.Render()
	return expanded
}

// ToggleKey toggles the visible expandable cell whose key encodes to token.
// The second result is false when no such cell is on screen.
func (v *Viewer) ToggleKey(token string) (expanded, found bool) {
	for _, c := range v.view.Affordances() {
		if c.Expandable && c.Key.String() == token {
			return v.Toggle(c.Key), true
		}
	}
	v.log.V(1).Info("toggle target not visible", "key", token)
	return false, false
}

// ExpandAll opens every expandable cell, repeating for cells revealed by the
// previous pass up to MaxExpandPasses times. It returns how many cells were
// opened.
func (v *Viewer) ExpandAll() int {
	store := v.nav.Current().Expansion
	opened := 0
	for pass := 0; pass < MaxExpandPasses; pass++ {
		keys := v.view.Collapsed()
		if len(keys) == 0 {
			break
		}
		for _, k := range keys {
			if store.Expand(k) {
				opened++
			}
		}
		v.Render()
	}
	v.log.V(1).Info("expanded all", "opened", opened)
	return opened
}

// CollapseAll closes every expanded cell at the current level.
func (v *Viewer) CollapseAll() {
	v.nav.Current().Expansion.Clear()
	v.log.V(1).Info("collapsed all")
	v.Render()
}

// SetAutoExpand changes whether focus changes expand everything.
func (v *Viewer) SetAutoExpand(on bool) { v.opts.AutoExpand = on }

// AutoExpand reports whether focus changes expand everything.
func (v *Viewer) AutoExpand() bool { return v.opts.AutoExpand }

func (v *Viewer) autoExpand() {
	if v.opts.AutoExpand {
		v.ExpandAll()
	}
}

// Search filters the current table by q and returns the number of rows
// left. Expansion state is kept. The query stays active across focus changes.
func (v *Viewer) Search(q string) int {
	v.query = q
	v.applyQuery()
	v.log.V(1).Info("search applied", "query", q, "rows", len(v.nav.Current().Rows))
	v.Render()
	return len(v.nav.Current().Rows)
}

// Query returns the active search query.
func (v *Viewer) Query() string { return v.query }

func (v *Viewer) applyQuery() {
	cur := v.nav.Current()
	cur.Rows = search.Filter(cur.Table.Rows, v.query)
	cur.Query = v.query
}

// FocusByID re-roots the table on the value registered under id during the
// last render. Unknown ids are ignored and reported as false.
func (v *Viewer) FocusByID(id string) bool {
	target, ok := v.registry.Lookup(id)
	if !ok {
		v.log.V(1).Info("focus target not found", "id", id)
		return false
	}
	v.FocusOn(target.Data, target.DisplayName)
	return true
}

// FocusOn re-roots the table on data.
func (v *Viewer) FocusOn(data jsonvalue.Value, displayName string) {
	v.nav.FocusOn(data, displayName)
	v.log.V(1).Info("focused", "name", displayName, "depth", v.nav.Depth())
	v.afterEnter()
}

// FocusBack restores the previous level. It reports false at the root.
func (v *Viewer) FocusBack() bool {
	if !v.nav.FocusBack() {
		return false
	}
	v.log.V(1).Info("focused back", "depth", v.nav.Depth())
	v.afterRestore()
	return true
}

// FocusToLevel jumps to a breadcrumb level. Level 0 rebuilds the root.
func (v *Viewer) FocusToLevel(level int) bool {
	if !v.nav.FocusToLevel(level) {
		v.log.V(1).Info("focus level out of range", "level", level, "depth", v.nav.Depth())
		return false
	}
	v.log.V(1).Info("focused level", "level", level)
	if level == 0 {
		v.afterEnter()
	} else {
		v.afterRestore()
	}
	return true
}

// FocusPath focuses each container along path, relative to the current
// level, so every step gets its own breadcrumb. Paths may be simple
// ("items[0].tags") or CEL expressions.
func (v *Viewer) FocusPath(path string) error {
	hops, err := v.resolver.Resolve(v.nav.Current().Context.Data, path)
	if err != nil {
		return fmt.Errorf("focus %q: %w", path, err)
	}
	for _, h := range hops {
		if !h.Value.IsContainer() {
			return fmt.Errorf("focus %q: %s is a %s, not an array or object", path, h.Label, h.Value.Kind())
		}
	}
	for _, h := range hops {
		v.nav.FocusOn(h.Value, h.DisplayName())
	}
	if len(hops) > 0 {
		v.log.V(1).Info("focused path", "path", path, "depth", v.nav.Depth())
		v.afterEnter()
	}
	return nil
}

// afterEnter runs once a fresh table is on screen.
func (v *Viewer) afterEnter() {
	v.applyQuery()
	v.Render()
	v.autoExpand()
}

// afterRestore runs once a saved level is back. Its rows only need
// refiltering when the query changed while it was hidden.
func (v *Viewer) afterRestore() {
	if v.nav.Current().Query != v.query {
		v.applyQuery()
	}
	v.Render()
}

// Depth returns the focus depth; 0 is the root.
func (v *Viewer) Depth() int { return v.nav.Depth() }

// Breadcrumbs returns the trail for the current level.
func (v *Viewer) Breadcrumbs() []focus.Crumb { return v.nav.Breadcrumbs() }

// SetDelimiter changes the CSV field delimiter. Empty restores the default.
func (v *Viewer) SetDelimiter(d string) {
	if d == "" {
		d = export.DefaultDelimiter
	}
	v.opts.Delimiter = d
}

// Delimiter returns the CSV field delimiter.
func (v *Viewer) Delimiter() string { return v.opts.Delimiter }

// ExportCSV exports the rows currently on screen.
func (v *Viewer) ExportCSV() export.Artifact {
	cur := v.nav.Current()
	return export.CSV(cur.Table.Columns, cur.Rows, v.opts.Delimiter)
}

// ExportJSON exports the original document, or the rows on screen when the
// viewer was built without one.
func (v *Viewer) ExportJSON() export.Artifact {
	return export.JSON(v.opts.Original, v.nav.Current().Rows)
}

// ToggleJSONView switches between the table and the raw JSON view and
// returns whether the JSON view is now shown.
func (v *Viewer) ToggleJSONView() bool {
	v.jsonView = !v.jsonView
	return v.jsonView
}

// JSONView reports whether the raw JSON view is shown.
func (v *Viewer) JSONView() bool { return v.jsonView }

// Document is the original document, or the root value when the viewer was
// built without one.
func (v *Viewer) Document() jsonvalue.Value {
	if v.opts.Original != nil {
		return *v.opts.Original
	}
	return v.nav.Root()
}

// JSONText is the root document pretty-printed for the JSON view.
func (v *Viewer) JSONText() string {
	return render.JSONDocument(v.Document())
}

// JSONTokens is JSONText split for syntax colouring.
func (v *Viewer) JSONTokens() []render.Token {
	return render.Tokenize(v.JSONText())
}
