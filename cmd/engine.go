package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/internal/limiter"
	"github.com/oakwood-commons/jsontable/internal/paint/htmlview"
	"github.com/oakwood-commons/jsontable/internal/paint/terminal"
	"github.com/oakwood-commons/jsontable/internal/render"
	"github.com/oakwood-commons/jsontable/pkg/core"
	"github.com/oakwood-commons/jsontable/pkg/loader"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
)

// newPrefsStore opens the preference backend named in cfg. "none" and ""
// return a nil store.
func newPrefsStore(cfg config.PrefsConfig) (prefs.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "file":
		s, err := prefs.NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		return prefs.NewRedisStore(prefs.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		}), nil
	}
	return nil, fmt.Errorf("unknown preference backend %q", cfg.Backend)
}

// localeFromEnv returns the locale governing number formatting.
func localeFromEnv() string {
	for _, k := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// configDefaults are the preferences used for anything the store lacks.
func configDefaults(cfg config.Config) prefs.Prefs {
	p := prefs.Defaults()
	p.AutoExpand = cfg.Behavior.AutoExpand
	if t, err := prefs.ParseTheme(cfg.Theme.Default); err == nil {
		p.Theme = t
	}
	p.CSVDelimiter = cfg.Behavior.CSVDelimiter
	if p.CSVDelimiter == "" {
		p.CSVDelimiter = prefs.DelimiterForLocale(localeFromEnv())
	}
	return p
}

// engineFlags are the per-invocation overrides of the configuration.
type engineFlags struct {
	Format       loader.Format
	Expr         string
	Limit        limiter.Config
	Focus        string
	ExtractArray bool
	Delimiter    string
	AutoExpand   *bool
}

func newEngine(cfg config.Config, store prefs.Store, lgr logr.Logger, fl engineFlags) (*core.Engine, error) {
	opts := core.Options{
		Load: loader.Options{
			Format:          fl.Format,
			MaxBytes:        cfg.Performance.MaxInputBytes,
			BackgroundBytes: cfg.Performance.BackgroundParseBytes,
			Timeout:         cfg.Performance.ParseTimeout,
		},
		Expr:                fl.Expr,
		Limit:               fl.Limit,
		Focus:               fl.Focus,
		ExtractLargestArray: cfg.Behavior.ExtractLargestArray || fl.ExtractArray,
		SampleRows:          cfg.Behavior.SampleRows,
		Render: render.Options{
			DateLayout:       cfg.Behavior.DateLayout,
			NestedSample:     cfg.Behavior.NestedSample,
			NestedMaxColumns: cfg.Behavior.NestedMaxColumns,
		},
		Delimiter:  fl.Delimiter,
		AutoExpand: fl.AutoExpand,
	}
	return core.New(
		core.WithPrefs(store),
		core.WithDefaults(configDefaults(cfg)),
		core.WithLogger(lgr),
		core.WithOptions(opts),
	)
}

// themeChoice picks the theme: the flag, then a stored light or dark
// preference, then the configured default.
func themeChoice(flag string, stored prefs.Theme, configured string) string {
	if flag = strings.TrimSpace(flag); flag != "" {
		return flag
	}
	if stored == prefs.ThemeLight || stored == prefs.ThemeDark {
		return string(stored)
	}
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	return string(prefs.ThemeSystem)
}

func validateTheme(cfg config.Config, name string) error {
	if name == string(prefs.ThemeSystem) {
		return nil
	}
	if _, ok := cfg.Themes[name]; ok {
		return nil
	}
	names := cfg.ThemeNames()
	if !slices.Contains(names, string(prefs.ThemeSystem)) {
		names = append([]string{string(prefs.ThemeSystem)}, names...)
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(names, ", "))
}

// terminalTheme is the palette for name; a terminal cannot ask for the
// system preference, so "system" is dark.
func terminalTheme(cfg config.Config, name string) config.ThemeConfig {
	if name == string(prefs.ThemeSystem) {
		name = string(prefs.ThemeDark)
	}
	return terminal.ResolveTheme(cfg, name)
}

func htmlOptions(cfg config.Config, name string) htmlview.Options {
	opts := htmlview.Options{
		Mode:  htmlview.ModeSystem,
		Light: terminal.ResolveTheme(cfg, string(prefs.ThemeLight)),
		Dark:  terminal.ResolveTheme(cfg, string(prefs.ThemeDark)),
	}
	switch name {
	case string(prefs.ThemeSystem):
	case string(prefs.ThemeLight):
		opts.Mode = htmlview.ModeLight
	case string(prefs.ThemeDark):
		opts.Mode = htmlview.ModeDark
	default:
		opts.Mode = htmlview.ModeDark
		opts.Dark = terminal.ResolveTheme(cfg, name)
	}
	return opts
}
