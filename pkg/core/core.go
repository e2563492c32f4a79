// Package core is the library entry point: it loads a document, narrows it
// with an optional CEL expression and record limits, and builds a table
// viewer configured from stored preferences.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsontable/internal/cel"
	"github.com/oakwood-commons/jsontable/internal/limiter"
	"github.com/oakwood-commons/jsontable/internal/navigator"
	"github.com/oakwood-commons/jsontable/internal/render"
	"github.com/oakwood-commons/jsontable/internal/shape"
	"github.com/oakwood-commons/jsontable/internal/viewer"
	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
	"github.com/oakwood-commons/jsontable/pkg/loader"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
)

// Evaluator narrows a document with an expression.
type Evaluator interface {
	EvaluateValue(expr string, doc jsonvalue.Value) (jsonvalue.Value, error)
}

// Options tunes how documents become tables.
type Options struct {
	Load  loader.Options
	Expr  string
	Limit limiter.Config
	// Focus is a path or CEL expression focused after the viewer is built.
	Focus               string
	ExtractLargestArray bool
	SampleRows          int
	Render              render.Options
	// Delimiter overrides the stored CSV delimiter when set.
	Delimiter string
	// AutoExpand overrides the stored preference when set.
	AutoExpand *bool
}

// Engine loads documents and builds viewers.
type Engine struct {
	Evaluator Evaluator
	Prefs     prefs.Store
	Defaults  prefs.Prefs
	Logger    logr.Logger
	Options   Options
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets a custom evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithPrefs sets the preference store consulted by NewViewer.
func WithPrefs(s prefs.Store) Option {
	return func(c *Engine) {
		c.Prefs = s
	}
}

// WithDefaults sets the preferences used when the store has no value.
func WithDefaults(p prefs.Prefs) Option {
	return func(c *Engine) {
		c.Defaults = p
	}
}

// WithLogger sets the logger handed to viewers.
func WithLogger(l logr.Logger) Option {
	return func(c *Engine) {
		c.Logger = l
	}
}

// WithOptions replaces the table options.
func WithOptions(o Options) Option {
	return func(c *Engine) {
		c.Options = o
	}
}

// New creates an Engine with defaults.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		Defaults: prefs.Defaults(),
		Logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.Options.Limit.Validate(); err != nil {
		return nil, err
	}
	if engine.Evaluator == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	return engine, nil
}

// Load parses data with the engine's loader options.
func (e *Engine) Load(ctx context.Context, data []byte) (loader.Document, error) {
	return loader.LoadContext(ctx, data, e.Options.Load)
}

// LoadFile reads and parses path.
func (e *Engine) LoadFile(ctx context.Context, path string) (loader.Document, error) {
	return loader.LoadFile(ctx, path, e.Options.Load)
}

// Prepare applies the expression and record limits to doc.
func (e *Engine) Prepare(doc jsonvalue.Value) (jsonvalue.Value, error) {
	if e == nil || e.Evaluator == nil {
		return jsonvalue.Value{}, errors.New("evaluator is not configured")
	}
	out := doc
	if e.Options.Expr != "" {
		v, err := e.Evaluator.EvaluateValue(e.Options.Expr, doc)
		if err != nil {
			return jsonvalue.Value{}, fmt.Errorf("expression %q: %w", e.Options.Expr, err)
		}
		out = v
	}
	return e.Options.Limit.Apply(out), nil
}

// Preferences resolves the stored preferences over the engine defaults and
// the explicit overrides in Options. Store failures are logged and ignored.
func (e *Engine) Preferences(ctx context.Context) prefs.Prefs {
	p, _ := prefs.Resolve(ctx, e.Prefs, e.Defaults, e.Logger)
	if e.Options.AutoExpand != nil {
		p.AutoExpand = *e.Options.AutoExpand
	}
	if e.Options.Delimiter != "" {
		p.CSVDelimiter = e.Options.Delimiter
	}
	return p
}

// NewViewer prepares doc and builds a viewer over it, focusing
// Options.Focus when set.
func (e *Engine) NewViewer(ctx context.Context, doc jsonvalue.Value) (*viewer.Viewer, error) {
	data, err := e.Prepare(doc)
	if err != nil {
		return nil, err
	}
	p := e.Preferences(ctx)
	policy := shape.PropertyValue
	if e.Options.ExtractLargestArray {
		policy = shape.LargestArray
	}
	resolver := navigator.NewResolver(nil)
	if ev, ok := e.Evaluator.(*cel.Evaluator); ok {
		resolver = navigator.NewResolver(ev)
	}
	v := viewer.New(data, viewer.Options{
		RootPolicy: policy,
		SampleRows: e.Options.SampleRows,
		Render:     e.Options.Render,
		AutoExpand: p.AutoExpand,
		Delimiter:  p.CSVDelimiter,
		Original:   &data,
		Resolver:   resolver,
		Logger:     e.Logger,
	})
	if e.Options.Focus != "" {
		if err := v.FocusPath(e.Options.Focus); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Open loads data and builds a viewer over it.
func (e *Engine) Open(ctx context.Context, data []byte) (*viewer.Viewer, loader.Document, error) {
	doc, err := e.Load(ctx, data)
	if err != nil {
		return nil, doc, err
	}
	v, err := e.NewViewer(ctx, doc.Value)
	return v, doc, err
}
