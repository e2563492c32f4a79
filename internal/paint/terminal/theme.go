package terminal

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/jsontable/internal/config"
	"github.com/oakwood-commons/jsontable/internal/render"
)

// Styles holds one lipgloss style per visual role.
type Styles struct {
	Title    lipgloss.Style
	Crumb    lipgloss.Style
	Active   lipgloss.Style
	Header   lipgloss.Style
	Border   lipgloss.Style
	Muted    lipgloss.Style
	String   lipgloss.Style
	Number   lipgloss.Style
	Bool     lipgloss.Style
	Null     lipgloss.Style
	Key      lipgloss.Style
	Badge    lipgloss.Style
	Link     lipgloss.Style
	Match    lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles builds styles from a palette.
func NewStyles(th config.ThemeConfig) Styles {
	fg := func(c config.ColorValue) lipgloss.Style {
		s := lipgloss.NewStyle()
		if c != "" {
			s = s.Foreground(lipgloss.Color(string(c)))
		}
		return s
	}
	pair := func(f, b config.ColorValue) lipgloss.Style {
		s := fg(f)
		if b != "" {
			s = s.Background(lipgloss.Color(string(b)))
		}
		return s
	}
	return Styles{
		Title:    fg(th.HeaderFG).Bold(true),
		Crumb:    fg(th.Link).Underline(true),
		Active:   fg(th.Foreground).Bold(true),
		Header:   pair(th.HeaderFG, th.HeaderBG).Bold(true),
		Border:   fg(th.Border),
		Muted:    fg(th.Muted),
		String:   fg(th.String),
		Number:   fg(th.Number),
		Bool:     fg(th.Bool),
		Null:     fg(th.Null).Italic(true),
		Key:      fg(th.Key),
		Badge:    fg(th.Badge).Bold(true),
		Link:     fg(th.Link).Underline(true),
		Match:    pair(th.MatchFG, th.MatchBG),
		Selected: pair(th.SelectedFG, th.SelectedBG),
	}
}

// forCell picks the style of a cell's text.
func (s Styles) forCell(c render.Cell) lipgloss.Style {
	switch c.Kind {
	case render.KindMissing, render.KindEmptyObject:
		return s.Muted
	case render.KindNull:
		return s.Null
	case render.KindBool:
		return s.Bool
	case render.KindNumber:
		return s.Number
	case render.KindImage:
		return s.Link
	case render.KindArray, render.KindObject:
		return s.Badge
	case render.KindSummary:
		return s.Key
	}
	return s.String
}

// forToken picks the style of a JSON syntax token.
func (s Styles) forToken(class render.TokenClass) (lipgloss.Style, bool) {
	switch class {
	case render.TokenKey:
		return s.Key, true
	case render.TokenString:
		return s.String, true
	case render.TokenNumber:
		return s.Number, true
	case render.TokenBool:
		return s.Bool, true
	case render.TokenNull:
		return s.Null, true
	}
	return lipgloss.Style{}, false
}

// ResolveTheme maps a theme name to a palette. "system" and unknown names
// use dark, then the first configured palette.
func ResolveTheme(cfg config.Config, name string) config.ThemeConfig {
	if th, ok := cfg.Themes[name]; ok {
		return th
	}
	if th, ok := cfg.Themes["dark"]; ok {
		return th
	}
	if names := cfg.ThemeNames(); len(names) > 0 {
		return cfg.Themes[names[0]]
	}
	return config.ThemeConfig{}
}
