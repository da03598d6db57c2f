package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/midifile"
	"go-pianoroll/pianoroll"
	"go-pianoroll/song"
	"go-pianoroll/theme"
	"go-pianoroll/transport"
	"go-pianoroll/widgets"
)

// Rows above the roll: title and ruler.
const headerRows = 2

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptSaveAs
)

// menuState is an open context menu, positioned in roll cells.
type menuState struct {
	actions   []pianoroll.Action
	x, y      int
	highlight int
}

type Model struct {
	Editor *pianoroll.Editor
	Clock  *transport.Clock
	Config *config.Config
	Theme  *theme.Theme

	// ConfigPath receives the recent files list after a save or open.
	// Empty leaves the config file alone.
	ConfigPath string

	path      string
	keys      keyMap
	help      help.Model
	input     textinput.Model
	prompt    promptKind
	menu      *menuState
	confirm   string // action waiting for a second press
	status    string
	statusErr bool
	pos       transport.Position
	width     int
	height    int
	sized     bool
	quitting  bool
}

// PositionMsg carries a playback position onto the UI loop.
type PositionMsg transport.Position

func ListenForPositions(clock *transport.Clock) tea.Cmd {
	return func() tea.Msg {
		return PositionMsg(<-clock.Positions())
	}
}

// NewModel edits doc, or a new document when doc is nil. path is where
// doc was loaded from, empty for an untitled document.
func NewModel(cfg *config.Config, th *theme.Theme, clock *transport.Clock, doc *song.Document, path string) Model {
	ti := textinput.New()
	ti.Prompt = "file: "
	ti.CharLimit = 1024

	m := Model{
		Editor: pianoroll.New(cfg.Editor(), 80, 20),
		Clock:  clock,
		Config: cfg,
		Theme:  th,
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  ti,
	}
	if doc == nil {
		doc = song.NewDefault()
	}
	m.setDocument(doc, path)
	return m
}

// Path is the file the document saves to, empty when untitled.
func (m Model) Path() string {
	return m.path
}

func (m Model) Init() tea.Cmd {
	return ListenForPositions(m.Clock)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		if !m.sized {
			m.sized = true
			m.Editor.FitToContent()
			m.syncCursor()
		}

	case PositionMsg:
		m.pos = transport.Position(msg)
		m.Editor.UpdateCursor(m.pos.Fraction)
		return m, ListenForPositions(m.Clock)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.updatePrompt(msg)
	}
	if m.menu != nil {
		m.updateMenu(msg)
		return *m, nil
	}

	confirm := m.confirm
	m.confirm = ""
	k := m.keys
	ed := m.Editor
	nudge := m.Config.Roll.NudgeTicks

	switch {
	case key.Matches(msg, k.Quit):
		if ed.Dirty() && confirm != "quit" {
			m.ask("quit", k.Quit)
			return *m, nil
		}
		m.quitting = true
		m.Clock.Stop()
		return *m, tea.Quit
	case key.Matches(msg, k.New):
		if ed.Dirty() && confirm != "new" {
			m.ask("new", k.New)
			return *m, nil
		}
		m.setDocument(song.NewDefault(), "")
		m.info("new document")
	case key.Matches(msg, k.Open):
		if ed.Dirty() && confirm != "open" {
			m.ask("open", k.Open)
			return *m, nil
		}
		return *m, m.startPrompt(promptOpen)
	case key.Matches(msg, k.Save):
		if m.path == "" {
			return *m, m.startPrompt(promptSaveAs)
		}
		m.save(m.path)
	case key.Matches(msg, k.SaveAs):
		return *m, m.startPrompt(promptSaveAs)
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, k.Escape):
		ed.Selection().Clear()
		ed.SetMode(pianoroll.ModeSelect)
		m.status = ""
	case key.Matches(msg, k.Copy):
		ed.CopySelected()
		m.info(fmt.Sprintf("copied %s notes", humanize.Comma(int64(len(ed.Clipboard())))))
	case key.Matches(msg, k.Cut):
		ed.Cut()
	case key.Matches(msg, k.Paste):
		ed.Paste()
	case key.Matches(msg, k.SelectAll):
		ed.SelectAll()
	case key.Matches(msg, k.Delete):
		ed.DeleteSelected()
	case key.Matches(msg, k.Quantize):
		ed.QuantizeSelected(ed.Config().QuantizeGrid)
	case key.Matches(msg, k.AddMode):
		ed.ToggleAddMode()

	case key.Matches(msg, k.OctaveUp):
		ed.MoveSelected(0, 12)
	case key.Matches(msg, k.OctaveDown):
		ed.MoveSelected(0, -12)
	case key.Matches(msg, k.Up):
		ed.MoveSelected(0, 1)
	case key.Matches(msg, k.Down):
		ed.MoveSelected(0, -1)
	case key.Matches(msg, k.Left):
		ed.MoveSelected(-nudge, 0)
	case key.Matches(msg, k.Right):
		ed.MoveSelected(nudge, 0)
	case key.Matches(msg, k.Softer):
		ed.AdjustVelocity(-pianoroll.VelocityStep)
	case key.Matches(msg, k.Louder):
		ed.AdjustVelocity(pianoroll.VelocityStep)
	case key.Matches(msg, k.Shorter):
		ed.ResizeSelected(-nudge)
	case key.Matches(msg, k.Longer):
		ed.ResizeSelected(nudge)

	case key.Matches(msg, k.ZoomIn):
		ed.Zoom(m.rollCenter(), pianoroll.ZoomIn, false)
	case key.Matches(msg, k.ZoomOut):
		ed.Zoom(m.rollCenter(), pianoroll.ZoomOut, false)
	case key.Matches(msg, k.Fit):
		ed.FitToContent()

	case key.Matches(msg, k.Play):
		m.Clock.Toggle()
		m.syncCursor()
	case key.Matches(msg, k.Stop):
		m.Clock.Stop()
		m.syncCursor()
	case key.Matches(msg, k.Back):
		m.Clock.SeekTicks(-m.barTicks())
		m.syncCursor()
	case key.Matches(msg, k.Ahead):
		m.Clock.SeekTicks(m.barTicks())
		m.syncCursor()
	}
	m.afterEdit()
	return *m, nil
}

func (m *Model) startPrompt(kind promptKind) tea.Cmd {
	m.prompt = kind
	m.input.SetValue(m.path)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return *m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		if path == "" {
			return *m, nil
		}
		if kind == promptOpen {
			m.open(path)
		} else {
			m.save(path)
		}
		return *m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return *m, cmd
}

func (m *Model) updateMenu(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.menu.highlight = (m.menu.highlight + len(m.menu.actions) - 1) % len(m.menu.actions)
	case "down", "j":
		m.menu.highlight = (m.menu.highlight + 1) % len(m.menu.actions)
	case "enter", " ":
		m.applyMenu(m.menu.highlight)
	case "esc":
		m.menu = nil
	}
}

func (m *Model) applyMenu(i int) {
	a := m.menu.actions[i]
	m.menu = nil
	m.Editor.Apply(a)
	debug.Log("tui", "menu: %s", a)
	m.afterEdit()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	w, h := m.Editor.View().Size()
	x, y := msg.X-widgets.GutterWidth, msg.Y-headerRows
	inside := x >= 0 && y >= 0 && x < w && y < h
	ev := pianoroll.PointerEvent{
		Pos:  pianoroll.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5},
		Mods: modifiers(msg),
	}

	if m.menu != nil {
		m.mouseMenu(msg, x, y)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			if !inside {
				return
			}
			dir := pianoroll.ZoomIn
			if msg.Button == tea.MouseButtonWheelDown {
				dir = pianoroll.ZoomOut
			}
			m.Editor.Zoom(ev.Pos, dir, msg.Shift)
		case tea.MouseButtonLeft, tea.MouseButtonRight:
			if !inside {
				return
			}
			ev.Button = pianoroll.ButtonLeft
			if msg.Button == tea.MouseButtonRight {
				ev.Button = pianoroll.ButtonRight
			}
			if menu := m.Editor.Press(ev); menu != nil {
				m.openMenu(menu, x, y)
			}
			m.status = ""
			m.afterEdit()
		}
	case tea.MouseActionMotion:
		m.Editor.Move(ev)
	case tea.MouseActionRelease:
		m.Editor.Release(ev)
		m.afterEdit()
	}
}

func modifiers(msg tea.MouseMsg) pianoroll.Modifiers {
	var mods pianoroll.Modifiers
	if msg.Shift {
		mods |= pianoroll.ModShift
	}
	// Many terminals swallow ctrl+click, so alt also toggles selection.
	if msg.Ctrl || msg.Alt {
		mods |= pianoroll.ModCtrl
	}
	return mods
}

func (m *Model) openMenu(cm *pianoroll.ContextMenu, x, y int) {
	w, h := m.Editor.View().Size()
	mw, mh := m.menuSize(cm.Actions)
	m.menu = &menuState{
		actions: cm.Actions,
		x:       max(0, min(x, w-mw)),
		y:       max(0, min(y, h-mh)),
	}
}

func (m *Model) mouseMenu(msg tea.MouseMsg, x, y int) {
	mw, _ := m.menuSize(m.menu.actions)
	row := y - m.menu.y - 1
	onItem := x >= m.menu.x && x < m.menu.x+mw && row >= 0 && row < len(m.menu.actions)
	switch msg.Action {
	case tea.MouseActionMotion:
		if onItem {
			m.menu.highlight = row
		}
	case tea.MouseActionPress:
		if onItem && msg.Button == tea.MouseButtonLeft {
			m.applyMenu(row)
			return
		}
		m.menu = nil
	}
}

func (m Model) menuLabels(actions []pianoroll.Action) []string {
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.String()
	}
	return labels
}

func (m Model) menuSize(actions []pianoroll.Action) (int, int) {
	out := widgets.RenderMenu(m.menuLabels(actions), 0, m.Theme)
	return lipgloss.Width(out), lipgloss.Height(out)
}

// afterEdit keeps the transport length in step with the document.
func (m *Model) afterEdit() {
	m.Clock.Measure(m.Editor.Document())
}

func (m *Model) syncCursor() {
	m.pos = m.Clock.Position()
	m.Editor.UpdateCursor(m.pos.Fraction)
}

func (m *Model) setDocument(doc *song.Document, path string) {
	m.Editor.SetDocument(doc)
	m.Clock.Load(doc)
	m.path = path
	m.menu = nil
	m.syncCursor()
}

func (m *Model) open(path string) {
	doc, err := midifile.Load(path)
	if err != nil {
		m.fail(err)
		return
	}
	m.setDocument(doc, path)
	m.remember(path)
	m.info(fmt.Sprintf("opened %s: %s notes", filepath.Base(path), humanize.Comma(int64(doc.NoteCount()))))
}

func (m *Model) save(path string) {
	doc := m.Editor.Document()
	if err := midifile.Save(path, doc); err != nil {
		m.fail(err)
		return
	}
	if _, err := midifile.WriteBackup(path, doc); err != nil {
		debug.Log("tui", "backup failed: %v", err)
	}
	m.Editor.MarkSaved()
	m.path = path
	m.remember(path)
	m.info(fmt.Sprintf("saved %s: %s notes", filepath.Base(path), humanize.Comma(int64(doc.NoteCount()))))
}

func (m *Model) remember(path string) {
	m.Config.AddRecent(path)
	if m.ConfigPath == "" {
		return
	}
	if err := m.Config.SaveTo(m.ConfigPath); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}

func (m *Model) ask(action string, b key.Binding) {
	m.confirm = action
	m.status = fmt.Sprintf("unsaved changes: press %s again to %s", b.Help().Key, action)
	m.statusErr = true
}

func (m *Model) info(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) fail(err error) {
	issue := fmsg.GetIssue(err)
	if issue == "" {
		issue = err.Error()
	}
	debug.Log("tui", "error: %v", err)
	m.status, m.statusErr = issue, true
}

func (m *Model) layout() {
	rw := max(1, m.width-widgets.GutterWidth)
	rh := max(1, m.height-headerRows-1-m.helpHeight())
	m.Editor.Resize(rw, rh)
}

func (m Model) helpHeight() int {
	if !m.Config.UI.ShowHelp {
		return 0
	}
	return lipgloss.Height(m.help.View(m.keys))
}

func (m Model) rollCenter() pianoroll.Point {
	w, h := m.Editor.View().Size()
	return pianoroll.Point{X: float64(w) / 2, Y: float64(h) / 2}
}

// beatsPerBar is the numerator of the first time signature, 4 without one.
func (m Model) beatsPerBar() int {
	doc := m.Editor.Document()
	if doc != nil && len(doc.TimeSignatures) > 0 && doc.TimeSignatures[0].Numerator > 0 {
		return int(doc.TimeSignatures[0].Numerator)
	}
	return 4
}

func (m Model) barTicks() int {
	tpb := song.DefaultTicksPerBeat
	if doc := m.Editor.Document(); doc != nil {
		tpb = doc.TicksPerBeat
	}
	return tpb * m.beatsPerBar()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "loading..."
	}

	raster := m.Editor.Render()
	view := m.Editor.View()
	tickAt := func(col int) float64 {
		return view.MapToScene(pianoroll.Point{X: float64(col)}).X
	}
	tpb := m.barTicks() / m.beatsPerBar()

	lines := []string{
		m.renderHeader(),
		strings.Repeat(" ", widgets.GutterWidth) + widgets.RenderRuler(raster.Width, tpb, m.beatsPerBar(), tickAt, m.Theme),
	}
	gutter := widgets.RenderGutter(raster.Pitches, m.Theme)
	rows := m.renderRows(raster)
	for y := range rows {
		lines = append(lines, gutter[y]+rows[y])
	}
	lines = append(lines, m.renderStatus())
	if m.Config.UI.ShowHelp {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

// renderRows draws the roll with the context menu laid over it.
func (m Model) renderRows(r pianoroll.Raster) []string {
	if m.menu == nil {
		return widgets.RenderRoll(r, m.Theme)
	}
	menu := strings.Split(widgets.RenderMenu(m.menuLabels(m.menu.actions), m.menu.highlight, m.Theme), "\n")
	mw := lipgloss.Width(menu[0])
	rows := make([]string, r.Height)
	for y := range rows {
		i := y - m.menu.y
		if i < 0 || i >= len(menu) {
			rows[y] = widgets.RenderRollRow(r, y, 0, r.Width, m.Theme)
			continue
		}
		rows[y] = widgets.RenderRollRow(r, y, 0, m.menu.x, m.Theme) +
			menu[i] +
			widgets.RenderRollRow(r, y, m.menu.x+mw, r.Width, m.Theme)
	}
	return rows
}

func (m Model) renderHeader() string {
	th := m.Theme
	title := lipgloss.NewStyle().Bold(true).Foreground(th.Accent()).Render("go-pianoroll")

	name := "untitled"
	if m.path != "" {
		name = filepath.Base(m.path)
	}
	if m.Editor.Dirty() {
		name += "*"
	}
	file := lipgloss.NewStyle().Foreground(th.FG()).Render(name)

	mode := strings.ToUpper(strings.ReplaceAll(m.Editor.Mode().String(), "_", " "))
	modeStyle := lipgloss.NewStyle().Foreground(th.Muted())
	if m.Editor.Mode() != pianoroll.ModeSelect {
		modeStyle = modeStyle.Foreground(th.Warning())
	}

	play := fmt.Sprintf("%s %s / %s  %.0f bpm",
		m.pos.State, mmss(m.pos.Elapsed), mmss(m.pos.Total), m.pos.BPM)
	playStyle := lipgloss.NewStyle().Foreground(th.FG())
	if m.pos.State == transport.Playing {
		playStyle = playStyle.Foreground(th.Cursor())
	}

	count := 0
	if doc := m.Editor.Document(); doc != nil {
		count = doc.NoteCount()
	}
	notes := lipgloss.NewStyle().Foreground(th.Muted()).Render(humanize.Comma(int64(count)) + " notes")

	header := strings.Join([]string{title, file, modeStyle.Render(mode), playStyle.Render(play), notes}, "  ")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(header)
}

func (m Model) renderStatus() string {
	th := m.Theme
	var line string
	switch {
	case m.prompt != promptNone:
		line = m.input.View()
	case m.status != "":
		color := th.FG()
		if m.statusErr {
			color = th.Warning()
		}
		line = lipgloss.NewStyle().Foreground(color).Render(m.status)
	default:
		line = m.selectionSummary()
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) selectionSummary() string {
	th := m.Theme
	sel := m.Editor.Selection()
	hint := ""
	switch m.Editor.CursorShape() {
	case pianoroll.CursorResize:
		hint = "  ⇔ drag to resize"
	case pianoroll.CursorCrosshair:
		hint = "  + click to add a note"
	case pianoroll.CursorGrab:
		hint = "  ✥ panning"
	}
	muted := lipgloss.NewStyle().Foreground(th.Muted())
	if sel.Len() == 0 {
		return widgets.RenderLegend(th) + muted.Render(hint)
	}

	n, inst := m.Editor.Document().Lookup(sel.IDs()[0])
	if n == nil {
		return muted.Render(hint)
	}
	role := theme.RoleNote
	if inst.Drum {
		role = theme.RoleDrum
	}
	swatch := lipgloss.NewStyle().Foreground(th.Velocity(role, n.Velocity)).Render("█")
	text := fmt.Sprintf("%s selected  %s %s vel %d  %s..%s",
		humanize.Comma(int64(sel.Len())), inst.Name, widgets.PitchLabel(n.Pitch), n.Velocity,
		humanize.Comma(int64(n.Start)), humanize.Comma(int64(n.End)))
	return swatch + " " + lipgloss.NewStyle().Foreground(th.FG()).Render(text) + muted.Render(hint)
}

// mmss formats a duration as m:ss.
func mmss(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
