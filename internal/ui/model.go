// Package ui is the terminal shell around a table viewer: a bubbletea
// program with a search box, expand and collapse controls, exports, the JSON
// view and breadcrumb navigation.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/paint/terminal"
	"github.com/oakwood-commons/jsontable/internal/render"
	"github.com/oakwood-commons/jsontable/internal/search"
	"github.com/oakwood-commons/jsontable/internal/viewer"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
)

// DefaultDebounce delays a typed search.
const DefaultDebounce = 150 * time.Millisecond

// footerLines is the space reserved below the table.
const footerLines = 2

// Options configures a Model.
type Options struct {
	Viewer   *viewer.Viewer
	Painter  *terminal.Painter
	Sink     export.Sink
	Prefs    prefs.Store
	Debounce time.Duration
	NoColor  bool
	Width    int
	Height   int
	Logger   logr.Logger
}

// SearchTickMsg fires once the debounce delay after a keystroke has passed.
type SearchTickMsg search.Tick

// ExportDoneMsg reports a finished export.
type ExportDoneMsg struct {
	Name string
	Err  error
}

// PrefsSavedMsg reports a preference write.
type PrefsSavedMsg struct {
	Err error
}

// Model is the bubbletea model.
type Model struct {
	v        *viewer.Viewer
	painter  *terminal.Painter
	sink     export.Sink
	store    prefs.Store
	debounce time.Duration
	log      logr.Logger
	noColor  bool

	input     textinput.Model
	searching bool
	pending   search.Pending

	cursor    int
	offset    int
	width     int
	height    int
	showHelp  bool
	status    string
	statusErr bool
	quitting  bool
}

// New returns a model over opts.Viewer.
func New(opts Options) *Model {
	if opts.Painter == nil {
		opts.Painter = terminal.New(terminal.Options{NoColor: opts.NoColor, Width: opts.Width})
	}
	if opts.Sink == nil {
		opts.Sink = export.FileSink{Logger: opts.Logger}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 500
	ti.SetWidth(60)

	m := &Model{
		v:        opts.Viewer,
		painter:  opts.Painter,
		sink:     opts.Sink,
		store:    opts.Prefs,
		debounce: opts.Debounce,
		log:      opts.Logger,
		noColor:  opts.NoColor,
		input:    ti,
		width:    opts.Width,
		height:   opts.Height,
	}
	m.sync()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.sync()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.painter.SetWidth(msg.Width)
		m.input.SetWidth(max(10, msg.Width-4))
		return m, nil

	case SearchTickMsg:
		if m.pending.Ready(search.Tick(msg)) {
			m.applySearch(msg.Query)
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.setError(fmt.Sprintf("export failed: %v", msg.Err))
		} else {
			m.setStatus("saved " + msg.Name)
		}
		return m, nil

	case PrefsSavedMsg:
		if msg.Err != nil {
			m.log.Error(msg.Err, "saving preferences failed")
			m.setError("preferences not saved")
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.pending.Cancel()
		m.applySearch(m.input.Value())
		m.endSearch()
		return m, nil
	case "esc":
		m.pending.Cancel()
		m.input.SetValue("")
		m.applySearch("")
		m.endSearch()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != before {
		tick := m.pending.Next(q)
		cmd = tea.Batch(cmd, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return SearchTickMsg(tick)
		}))
	}
	return m, cmd
}

func (m *Model) endSearch() {
	m.searching = false
	m.input.Blur()
}

func (m *Model) handleKey(k string) (tea.Model, tea.Cmd) {
	m.status = ""
	if level, ok := levelKey(k); ok {
		if m.v.FocusToLevel(level) {
			m.resetPosition()
		}
		return m, nil
	}

	switch KeyBindings[k] {
	case ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case ActionNext:
		m.move(1)
	case ActionPrev:
		m.move(-1)
	case ActionToggle:
		if c, ok := m.selected(); ok {
			switch {
			case c.Expandable:
				m.v.Toggle(c.Key)
				m.reselect(c.Key.String())
			case c.FocusID != "":
				m.focus(c)
			}
		}
	case ActionFocus:
		if c, ok := m.selected(); ok && c.FocusID != "" {
			m.focus(c)
		}
	case ActionBack:
		if m.v.JSONView() {
			m.v.ToggleJSONView()
			return m, nil
		}
		if m.v.FocusBack() {
			m.resetPosition()
		}
	case ActionSearch:
		m.searching = true
		m.input.SetValue(m.v.Query())
		return m, m.input.Focus()
	case ActionExpandAll:
		n := m.v.ExpandAll()
		m.setStatus(fmt.Sprintf("expanded %d", n))
	case ActionCollapseAll:
		m.v.CollapseAll()
		m.cursor = 0
	case ActionExportCSV:
		return m, m.save(m.v.ExportCSV())
	case ActionExportJSON:
		return m, m.save(m.v.ExportJSON())
	case ActionView:
		m.v.ToggleJSONView()
		m.offset = 0
	case ActionAutoExpand:
		return m, m.toggleAutoExpand()
	case ActionScrollDown:
		m.offset += m.page()
	case ActionScrollUp:
		m.offset = max(0, m.offset-m.page())
	case ActionTop:
		m.offset = 0
	case ActionBottom:
		m.offset = len(m.lines())
	case ActionHelp:
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) focus(c render.Cell) {
	if m.v.FocusByID(c.FocusID) {
		m.resetPosition()
	}
}

func (m *Model) applySearch(q string) {
	n := m.v.Search(q)
	m.cursor = 0
	m.offset = 0
	if !search.Blank(q) {
		m.setStatus(fmt.Sprintf("%d rows match", n))
	}
}

func (m *Model) save(a export.Artifact) tea.Cmd {
	sink := m.sink
	return func() tea.Msg {
		name, err := sink.Save(context.Background(), a)
		return ExportDoneMsg{Name: name, Err: err}
	}
}

func (m *Model) toggleAutoExpand() tea.Cmd {
	on := !m.v.AutoExpand()
	m.v.SetAutoExpand(on)
	m.setStatus(fmt.Sprintf("auto-expand %t", on))
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		return PrefsSavedMsg{Err: store.Put(context.Background(), prefs.Record{AutoExpand: &on})}
	}
}

func (m *Model) affordances() []render.Cell {
	return m.v.View().Affordances()
}

func (m *Model) selected() (render.Cell, bool) {
	cells := m.affordances()
	if m.cursor < 0 || m.cursor >= len(cells) {
		return render.Cell{}, false
	}
	return cells[m.cursor], true
}

func (m *Model) move(delta int) {
	n := len(m.affordances())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

// reselect moves the cursor back onto the cell with key after a re-render.
func (m *Model) reselect(key string) {
	for i, c := range m.affordances() {
		if c.Key.String() == key {
			m.cursor = i
			return
		}
	}
}

func (m *Model) resetPosition() {
	m.cursor = 0
	m.offset = 0
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

// sync clamps the cursor and hands the selection to the painter after every
// update, so View stays free of mutations.
func (m *Model) sync() {
	n := len(m.affordances())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	key := ""
	if c, ok := m.selected(); ok {
		key = c.Key.String()
	}
	m.painter.SetSelected(key)
	if maxOffset := max(0, len(m.lines())-m.page()); m.offset > maxOffset {
		m.offset = maxOffset
	}
}

func (m *Model) page() int {
	if m.height <= footerLines {
		return 1 << 30
	}
	return m.height - footerLines
}

func (m *Model) lines() []string {
	var body string
	if m.v.JSONView() {
		body = m.painter.JSON(m.v.JSONTokens())
	} else {
		body = m.painter.Table(m.v.View())
	}
	return strings.Split(body, "\n")
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.Body() + "\n" + m.footer())
	v.AltScreen = true
	return v
}

// Body is the visible window of the table or JSON text, without the footer.
func (m *Model) Body() string {
	lines := m.lines()
	end := min(len(lines), m.offset+m.page())
	return strings.Join(lines[min(m.offset, end):end], "\n")
}

func (m *Model) footer() string {
	var top string
	switch {
	case m.searching:
		top = m.input.View()
	case m.status != "":
		top = m.status
		if !m.noColor {
			color := lipgloss.Color("114")
			if m.statusErr {
				color = lipgloss.Color("203")
			}
			top = lipgloss.NewStyle().Foreground(color).Render(top)
		}
	case m.v.Query() != "":
		top = fmt.Sprintf("search: %q", m.v.Query())
	}
	help := "? help · q quit"
	if m.showHelp {
		help = HelpText
	}
	if !m.noColor {
		help = lipgloss.NewStyle().Faint(true).Render(help)
	}
	return top + "\n" + help
}

// Searching reports whether the search box has focus.
func (m *Model) Searching() bool { return m.searching }

// Cursor is the index of the selected cell among the view's affordances.
func (m *Model) Cursor() int { return m.cursor }

// Status is the footer message.
func (m *Model) Status() string { return m.status }

// Run starts the program and blocks until it exits.
func Run(opts Options, progOpts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(New(opts), progOpts...).Run()
	return err
}
