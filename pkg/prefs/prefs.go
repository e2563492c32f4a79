// Package prefs reads user preferences from a pluggable key-value store.
//
// Backends:
//   - memory: in-process, for tests and embedding
//   - file: a TOML file, for the CLI
//   - redis: a hash per user, for the multi-instance web server
//
// A failing store never blocks rendering: Resolve logs the failure and falls
// back to Defaults.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// ErrUnavailable wraps every backend failure.
var ErrUnavailable = errors.New("preference store unavailable")

// Theme is the colour scheme override.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// ParseTheme validates a theme name. Empty means ThemeSystem.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case "", ThemeSystem:
		return ThemeSystem, nil
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return ThemeSystem, fmt.Errorf("unknown theme %q (want system, light or dark)", s)
}

// Prefs are the resolved preferences.
type Prefs struct {
	AutoExpand   bool
	Theme        Theme
	CSVDelimiter string
}

// Defaults are used for anything the store does not hold.
func Defaults() Prefs {
	return Prefs{AutoExpand: true, Theme: ThemeSystem, CSVDelimiter: ","}
}

// Record is what a store holds. Nil fields are unset.
type Record struct {
	AutoExpand   *bool   `toml:"auto_expand,omitempty"`
	Theme        *Theme  `toml:"theme,omitempty"`
	CSVDelimiter *string `toml:"csv_delimiter,omitempty"`
}

// Apply overlays the set fields of r onto p.
func (r Record) Apply(p Prefs) Prefs {
	if r.AutoExpand != nil {
		p.AutoExpand = *r.AutoExpand
	}
	if r.Theme != nil {
		if t, err := ParseTheme(string(*r.Theme)); err == nil {
			p.Theme = t
		}
	}
	if r.CSVDelimiter != nil && *r.CSVDelimiter != "" {
		p.CSVDelimiter = *r.CSVDelimiter
	}
	return p
}

// Merge returns r with the set fields of other overriding it.
func (r Record) Merge(other Record) Record {
	if other.AutoExpand != nil {
		r.AutoExpand = other.AutoExpand
	}
	if other.Theme != nil {
		r.Theme = other.Theme
	}
	if other.CSVDelimiter != nil {
		r.CSVDelimiter = other.CSVDelimiter
	}
	return r
}

// Store loads and saves preference records.
type Store interface {
	Get(ctx context.Context) (Record, error)
	Put(ctx context.Context, r Record) error
}

// Resolve reads s and overlays it on base. A nil store yields base. Store
// failures are logged and base is returned with the error, so callers can
// carry on.
func Resolve(ctx context.Context, s Store, base Prefs, lgr logr.Logger) (Prefs, error) {
	if s == nil {
		return base, nil
	}
	rec, err := s.Get(ctx)
	if err != nil {
		lgr.Error(err, "preference store read failed, using defaults")
		return base, err
	}
	return rec.Apply(base), nil
}

// semicolonLocales use ',' as the decimal separator, so spreadsheets there
// expect ';' between CSV fields.
var semicolonLocales = map[string]bool{
	"de": true, "fr": true, "it": true, "es": true, "ru": true, "pl": true, "nl": true,
	"da": true, "fi": true, "sv": true, "cs": true, "hu": true, "tr": true, "pt-pt": true,
	"sl": true, "sk": true, "hr": true, "lt": true, "lv": true, "et": true,
}

// DelimiterForLocale picks the CSV delimiter for a locale such as "de_DE.UTF-8",
// "pt-PT" or "en".
func DelimiterForLocale(locale string) string {
	tag := strings.ToLower(locale)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	if semicolonLocales[tag] {
		return ";"
	}
	lang, region, _ := strings.Cut(tag, "-")
	if lang == "pt" {
		if region == "pt" {
			return ";"
		}
		return ","
	}
	if semicolonLocales[lang] {
		return ";"
	}
	return ","
}
