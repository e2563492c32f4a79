package tui

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/paint/terminal"
	"github.com/oakwood-commons/jsontable/pkg/core"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
)

// Config holds host-provided settings for running the table.
type Config struct {
	// Width and Height size the view. Zero detects the terminal size.
	Width   int
	Height  int
	NoColor bool
	// ThemeName picks a built-in palette (dark, light). Unknown names fall
	// back to dark.
	ThemeName string
	// Engine loads and prepares documents. Nil uses core.New().
	Engine *core.Engine
	// Prefs receives auto-expand changes made in the UI.
	Prefs prefs.Store
	// ExportDir is where CSV and JSON exports are written.
	ExportDir string
	// Sink overrides ExportDir with a custom export destination.
	Sink     export.Sink
	Debounce time.Duration
	// Query is applied as the search filter before the first frame.
	Query string
	// StartKeys are replayed in order before the first frame.
	StartKeys  []string
	HideFooter bool
	Logger     logr.Logger
}

// DefaultConfig returns a config with the same defaults as the CLI.
func DefaultConfig() Config {
	cfg, err := config.Default()
	out := Config{ThemeName: "dark", Debounce: 150 * time.Millisecond}
	if err == nil {
		out.ThemeName = cfg.Theme.Default
		out.Debounce = cfg.SearchDebounce()
	}
	return out
}

func (c Config) engine() (*core.Engine, error) {
	if c.Engine != nil {
		return c.Engine, nil
	}
	return core.New(core.WithPrefs(c.Prefs), core.WithLogger(c.logger()))
}

func (c Config) logger() logr.Logger {
	if c.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return c.Logger
}

func (c Config) painter(width int) *terminal.Painter {
	var th config.ThemeConfig
	if cfg, err := config.Default(); err == nil {
		th = terminal.ResolveTheme(cfg, c.ThemeName)
	}
	return terminal.New(terminal.Options{Width: width, NoColor: c.NoColor, Theme: th})
}

func (c Config) sink() export.Sink {
	if c.Sink != nil {
		return c.Sink
	}
	return export.FileSink{Dir: c.ExportDir, Logger: c.logger()}
}
