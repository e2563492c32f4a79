// Package htmlview paints a rendered table view as an HTML page. With a
// link base set, badges, focus markers and breadcrumbs become links to the
// server's action routes; without one the page is static.
package htmlview

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/internal/expansion"
	"github.com/oakwood-commons/jsontable/internal/render"
)

//go:embed page.html.tmpl
var pageTemplate string

//go:embed help.md
var helpMarkdown []byte

// Theme modes.
const (
	ModeSystem = "system"
	ModeLight  = "light"
	ModeDark   = "dark"
)

var baseTemplate = template.Must(template.New("htmlview").Funcs(funcs(Options{})).Parse(pageTemplate))

// Options configures a page.
type Options struct {
	// Base prefixes action links, e.g. "/s/<session id>". Empty renders a
	// static page.
	Base string
	// Mode picks the palette: light, dark, or system to follow the
	// browser's preference.
	Mode  string
	Light config.ThemeConfig
	Dark  config.ThemeConfig
	// Delimiter prefills the CSV delimiter form.
	Delimiter string
}

type page struct {
	Title  string
	Vars   template.CSS
	Alt    template.CSS
	View   render.View
	JSON   bool
	Tokens []render.Token
	Help   template.HTML

	Delimiter string
}

// Table writes the page for v.
func Table(w io.Writer, v render.View, opts Options) error {
	return execute(w, opts, page{Title: v.Title, View: v})
}

// JSON writes the raw JSON view. v supplies the title and breadcrumbs.
func JSON(w io.Writer, v render.View, tokens []render.Token, opts Options) error {
	return execute(w, opts, page{Title: v.Title, View: v, JSON: true, Tokens: tokens})
}

// Help writes the help page.
func Help(w io.Writer, v render.View, opts Options) error {
	return execute(w, opts, page{Title: "Help", View: v, Help: HelpHTML()})
}

// HelpHTML is the usage guide rendered from markdown.
func HelpHTML() template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse(helpMarkdown)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.Render(doc, renderer)) //nolint:gosec // embedded, trusted markdown
}

// Render returns the table page as a string.
func Render(v render.View, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Table(&buf, v, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func execute(w io.Writer, opts Options, data page) error {
	switch opts.Mode {
	case ModeLight:
		data.Vars = template.CSS(cssVars(opts.Light)) //nolint:gosec // filtered by safeColor
	case ModeDark:
		data.Vars = template.CSS(cssVars(opts.Dark)) //nolint:gosec // filtered by safeColor
	default:
		data.Vars = template.CSS(cssVars(opts.Dark)) //nolint:gosec // filtered by safeColor
		data.Alt = template.CSS(cssVars(opts.Light)) //nolint:gosec // filtered by safeColor
	}
	data.Delimiter = opts.Delimiter
	t, err := baseTemplate.Clone()
	if err != nil {
		return err
	}
	return t.Funcs(funcs(opts)).ExecuteTemplate(w, "page", data)
}

func funcs(opts Options) template.FuncMap {
	base := strings.TrimRight(opts.Base, "/")
	return template.FuncMap{
		"links": func() bool { return opts.Base != "" },
		"toggleURL": func(k expansion.Key) string {
			return base + "/toggle?key=" + url.QueryEscape(k.String())
		},
		"focusURL": func(id string) string {
			return base + "/focus?id=" + url.QueryEscape(id)
		},
		"levelURL": func(level int) string {
			return base + "/level/" + strconv.Itoa(level)
		},
		"actionURL": func(name string) string {
			return base + "/" + name
		},
		"kindClass": kindClass,
		"colName":   render.FormatColumnName,
		"imgSrc":    imgSrc,
		"tabular":   tabular,
		"colspan": func(n *render.Nested) int {
			return max(1, len(n.Columns))
		},
		"tokenClass": tokenClass,
	}
}

func kindClass(k render.Kind) string {
	switch k {
	case render.KindMissing:
		return "missing"
	case render.KindNull:
		return "null"
	case render.KindBool:
		return "bool"
	case render.KindNumber:
		return "number"
	case render.KindDate:
		return "date"
	case render.KindImage:
		return "image"
	case render.KindArray:
		return "array"
	case render.KindObject:
		return "object"
	case render.KindEmptyObject:
		return "empty"
	case render.KindSummary:
		return "summary"
	}
	return "string"
}

// imgSrc only lets through the two shapes image detection accepts, so a
// thumbnail source can never be a script URL.
func imgSrc(img *render.Image) template.URL {
	if img == nil {
		return ""
	}
	src := img.Src
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:image/") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return template.URL(src) //nolint:gosec // scheme checked above
	}
	return ""
}

// tabular reports whether a mini-table has rows needing a column header.
func tabular(n *render.Nested) bool {
	if n.Kind != render.NestedArray || len(n.Columns) == 0 {
		return false
	}
	for _, r := range n.Rows {
		if !r.FullWidth {
			return true
		}
	}
	return false
}

func tokenClass(c render.TokenClass) string {
	switch c {
	case render.TokenKey:
		return "tok-key"
	case render.TokenString:
		return "tok-string"
	case render.TokenNumber:
		return "tok-number"
	case render.TokenBool:
		return "tok-bool"
	case render.TokenNull:
		return "tok-null"
	}
	return ""
}
