package ui

import (
	"strconv"

	tea "charm.land/bubbletea/v2"
)

// Action is what a key press does.
type Action string

const (
	ActionNone        Action = ""
	ActionNext        Action = "next"
	ActionPrev        Action = "prev"
	ActionToggle      Action = "toggle"
	ActionFocus       Action = "focus"
	ActionBack        Action = "back"
	ActionSearch      Action = "search"
	ActionExpandAll   Action = "expand_all"
	ActionCollapseAll Action = "collapse_all"
	ActionExportCSV   Action = "export_csv"
	ActionExportJSON  Action = "export_json"
	ActionView        Action = "view"
	ActionAutoExpand  Action = "auto_expand"
	ActionScrollDown  Action = "scroll_down"
	ActionScrollUp    Action = "scroll_up"
	ActionTop         Action = "top"
	ActionBottom      Action = "bottom"
	ActionHelp        Action = "help"
	ActionQuit        Action = "quit"
)

// KeyBindings maps key names, as reported by tea.KeyPressMsg.String, to
// actions. Digits jump to a breadcrumb level and are handled separately.
var KeyBindings = map[string]Action{
	"j":         ActionNext,
	"down":      ActionNext,
	"tab":       ActionNext,
	"k":         ActionPrev,
	"up":        ActionPrev,
	"shift+tab": ActionPrev,
	"enter":     ActionToggle,
	"space":     ActionToggle,
	" ":         ActionToggle,
	"f":         ActionFocus,
	"l":         ActionFocus,
	"right":     ActionFocus,
	"backspace": ActionBack,
	"h":         ActionBack,
	"left":      ActionBack,
	"esc":       ActionBack,
	"/":         ActionSearch,
	"e":         ActionExpandAll,
	"c":         ActionCollapseAll,
	"x":         ActionExportCSV,
	"J":         ActionExportJSON,
	"v":         ActionView,
	"a":         ActionAutoExpand,
	"pgdown":    ActionScrollDown,
	"ctrl+d":    ActionScrollDown,
	"pgup":      ActionScrollUp,
	"ctrl+u":    ActionScrollUp,
	"g":         ActionTop,
	"home":      ActionTop,
	"G":         ActionBottom,
	"end":       ActionBottom,
	"?":         ActionHelp,
	"q":         ActionQuit,
	"ctrl+c":    ActionQuit,
}

// levelKey returns the breadcrumb level of a digit key.
func levelKey(k string) (int, bool) {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(k)
	return n, err == nil
}

// HelpText is the one-line key summary shown in the footer.
const HelpText = "j/k move · enter toggle · f focus · ⌫ back · 0-9 level · / search · e/c expand/collapse all · x csv · J json · v view · a auto-expand · q quit"

var namedKeys = map[string]rune{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"backspace": tea.KeyBackspace,
	"tab":       tea.KeyTab,
	"space":     tea.KeySpace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"pgup":      tea.KeyPgUp,
	"pgdown":    tea.KeyPgDown,
}

// KeyMsg builds the key press a binding name stands for: a named key such as
// "enter" or a single printable character.
func KeyMsg(s string) tea.KeyPressMsg {
	if code, ok := namedKeys[s]; ok {
		return tea.KeyPressMsg{Code: code}
	}
	r := []rune(s)
	if len(r) == 0 {
		return tea.KeyPressMsg{}
	}
	return tea.KeyPressMsg{Code: r[0], Text: s}
}
