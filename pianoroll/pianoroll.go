// Package pianoroll is the piano-roll editing surface: a flat scene of note
// proxies over a zoomable view, a pointer-driven gesture machine, and the
// edit operations that mutate a song.Document.
//
// Everything runs on the caller's goroutine. Hosts that poll playback on
// another goroutine must deliver positions to UpdateCursor through their
// event loop.
package pianoroll

import (
	"go-pianoroll/debug"
	"go-pianoroll/song"
)

// Mode is the interaction state. ModeSelect and ModeAddNote are resting
// states chosen by the host; the other two exist only during a gesture.
type Mode int

const (
	ModeSelect Mode = iota
	ModeAddNote
	ModeMoveNote
	ModeResizeNoteEnd
)

func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeAddNote:
		return "add_note"
	case ModeMoveNote:
		return "move_note"
	case ModeResizeNoteEnd:
		return "resize_note_end"
	default:
		return "unknown"
	}
}

// CursorShape is the pointer affordance the host should show.
type CursorShape int

const (
	CursorDefault CursorShape = iota
	CursorResize
	CursorCrosshair
	CursorGrab
)

type Config struct {
	KeyHeight     float64 // scene units per pitch row
	EdgeTolerance float64 // screen units around a note's trailing edge
	QuantizeGrid  int     // ticks
	View          ViewConfig
}

func DefaultConfig() Config {
	return Config{
		KeyHeight:     DefaultKeyHeight,
		EdgeTolerance: 10,
		QuantizeGrid:  DefaultQuantizeGrid,
		View:          DefaultViewConfig(),
	}
}

// Editor ties the document to its visual projection.
type Editor struct {
	cfg    Config
	mapper Mapper
	doc    *song.Document
	reg    *Registry
	sel    *Selection
	view   *View

	clipboard []song.Note
	mode      Mode
	gesture   *gesture
	shape     CursorShape
	dirty     bool
}

// New creates an editor with no document and a viewport of the given size.
func New(cfg Config, width, height int) *Editor {
	if cfg.QuantizeGrid <= 0 {
		cfg.QuantizeGrid = DefaultQuantizeGrid
	}
	mapper := NewMapper(cfg.KeyHeight)
	cfg.KeyHeight = mapper.KeyHeight
	reg := NewRegistry(mapper)
	e := &Editor{
		cfg:    cfg,
		mapper: mapper,
		reg:    reg,
		sel:    NewSelection(reg),
		view:   NewView(cfg.View, width, height),
	}
	e.view.SetSceneRect(reg.SceneRect())
	return e
}

// SetDocument replaces the edited document, rebuilds the scene and fits
// the view to it. The clipboard survives; selection and any gesture do not.
func (e *Editor) SetDocument(doc *song.Document) {
	e.gesture = nil
	e.mode = ModeSelect
	e.shape = CursorDefault
	e.doc = doc
	e.dirty = false
	e.resync(nil)
	e.FitToContent()
	if doc != nil {
		debug.Log("roll", "document loaded: %d instruments, %d notes, tpb=%d", len(doc.Instruments), doc.NoteCount(), doc.TicksPerBeat)
	}
}

// Document returns the document being edited, edits included. It is nil
// until one is loaded or a note is added.
func (e *Editor) Document() *song.Document {
	return e.doc
}

func (e *Editor) Registry() *Registry   { return e.reg }
func (e *Editor) Selection() *Selection { return e.sel }
func (e *Editor) View() *View           { return e.view }
func (e *Editor) Mapper() Mapper        { return e.mapper }
func (e *Editor) Config() Config        { return e.cfg }

// Mode reports the gesture mode while one is active, otherwise the
// resting mode.
func (e *Editor) Mode() Mode {
	if e.gesture != nil {
		switch e.gesture.kind {
		case gestureMove:
			return ModeMoveNote
		case gestureResize:
			return ModeResizeNoteEnd
		}
	}
	return e.mode
}

// SetMode switches between the resting modes. It is ignored mid-gesture.
func (e *Editor) SetMode(m Mode) {
	if e.gesture != nil || (m != ModeSelect && m != ModeAddNote) {
		return
	}
	e.mode = m
	if m == ModeAddNote {
		e.shape = CursorCrosshair
	} else {
		e.shape = CursorDefault
	}
}

// ToggleAddMode flips between select and add-note.
func (e *Editor) ToggleAddMode() {
	if e.mode == ModeAddNote {
		e.SetMode(ModeSelect)
	} else {
		e.SetMode(ModeAddNote)
	}
}

// InGesture reports whether a press-move-release sequence is in progress.
func (e *Editor) InGesture() bool {
	return e.gesture != nil
}

func (e *Editor) CursorShape() CursorShape {
	return e.shape
}

// Dirty reports unsaved edits since the last SetDocument or MarkSaved.
func (e *Editor) Dirty() bool {
	return e.dirty
}

func (e *Editor) MarkSaved() {
	e.dirty = false
}

// Resize changes the viewport size.
func (e *Editor) Resize(width, height int) {
	e.view.Resize(width, height)
}

// FitToContent fits the view to the current notes.
func (e *Editor) FitToContent() {
	items, ok := e.reg.ItemsRect()
	e.view.FitToContent(items, ok, e.mapper.KeyHeight)
}

// Zoom scales around the screen point at; vertical selects the pitch axis.
func (e *Editor) Zoom(at Point, dir ZoomDirection, vertical bool) {
	e.view.Zoom(at, dir, vertical)
}

// UpdateCursor moves the playback line to a normalized position. The view
// does not auto-scroll while a gesture is in progress.
func (e *Editor) UpdateCursor(fraction float64) Cursor {
	total := 0
	if e.doc != nil && e.doc.TicksPerBeat > 0 {
		total = e.doc.MaxTick()
	}
	debug.LogEvery(50, "cursor", "position %.3f of %d ticks", fraction, total)
	return e.view.UpdateCursor(fraction, total, e.gesture != nil)
}

// Clipboard returns a copy of the clipboard contents.
func (e *Editor) Clipboard() []song.Note {
	return append([]song.Note(nil), e.clipboard...)
}

// resync rebuilds every proxy from the document and reselects ids.
func (e *Editor) resync(ids []song.NoteID) {
	e.reg.Rebuild(e.doc)
	e.view.SetSceneRect(e.reg.SceneRect())
	e.sel.Restore(ids)
}
