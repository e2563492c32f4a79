package htmlview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/jsontable/internal/config"
)

var ansiBase = [16]string{
	"#000000", "#800000", "#008000", "#808000", "#000080", "#800080", "#008080", "#c0c0c0",
	"#808080", "#ff0000", "#00ff00", "#ffff00", "#0000ff", "#ff00ff", "#00ffff", "#ffffff",
}

// cssColor turns a palette entry into a CSS color. ANSI 256-colour numbers
// are converted to their xterm RGB values; anything else is passed through.
func cssColor(c config.ColorValue) string {
	s := strings.TrimSpace(string(c))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return s
	}
	switch {
	case n < 16:
		return ansiBase[n]
	case n < 232:
		n -= 16
		level := func(v int) int {
			if v == 0 {
				return 0
			}
			return 55 + v*40
		}
		return fmt.Sprintf("#%02x%02x%02x", level(n/36), level(n/6%6), level(n%6))
	default:
		g := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", g, g, g)
	}
}

func safeColor(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#(),.% ", r):
		default:
			return false
		}
	}
	return true
}

// cssVars renders a palette as CSS custom properties.
func cssVars(th config.ThemeConfig) string {
	vars := []struct {
		name string
		val  config.ColorValue
	}{
		{"bg", th.Background},
		{"fg", th.Foreground},
		{"header-fg", th.HeaderFG},
		{"header-bg", th.HeaderBG},
		{"border", th.Border},
		{"muted", th.Muted},
		{"string", th.String},
		{"number", th.Number},
		{"bool", th.Bool},
		{"null", th.Null},
		{"key", th.Key},
		{"badge", th.Badge},
		{"link", th.Link},
		{"match-fg", th.MatchFG},
		{"match-bg", th.MatchBG},
		{"selected-fg", th.SelectedFG},
		{"selected-bg", th.SelectedBG},
	}
	var b strings.Builder
	for _, v := range vars {
		color := cssColor(v.val)
		if !safeColor(color) {
			continue
		}
		fmt.Fprintf(&b, "--%s:%s;", v.name, color)
	}
	return b.String()
}
