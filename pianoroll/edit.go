package pianoroll

import (
	"slices"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

const (
	// DefaultQuantizeGrid is a sixteenth note at 480 ticks per beat.
	DefaultQuantizeGrid = 120

	// VelocityStep is the context-menu velocity change.
	VelocityStep = 10
)

// Action is a context-menu command.
type Action int

const (
	ActionDelete Action = iota
	ActionQuantize
	ActionVelocityUp
	ActionVelocityDown
)

func (a Action) String() string {
	switch a {
	case ActionDelete:
		return "Delete"
	case ActionQuantize:
		return "Quantize (1/16)"
	case ActionVelocityUp:
		return "Velocity +10"
	case ActionVelocityDown:
		return "Velocity -10"
	default:
		return "?"
	}
}

// ContextActions lists what a right press over a note offers.
func ContextActions() []Action {
	return []Action{ActionDelete, ActionQuantize, ActionVelocityUp, ActionVelocityDown}
}

// Apply runs a context-menu action on the selection.
func (e *Editor) Apply(a Action) {
	switch a {
	case ActionDelete:
		e.DeleteSelected()
	case ActionQuantize:
		e.QuantizeSelected(e.cfg.QuantizeGrid)
	case ActionVelocityUp:
		e.AdjustVelocity(VelocityStep)
	case ActionVelocityDown:
		e.AdjustVelocity(-VelocityStep)
	}
}

// AddNote adds a one-beat note at velocity 100 to the first instrument
// and selects it. Without a document, a default one is created first.
// It returns nil while a gesture is in progress.
func (e *Editor) AddNote(tick, pitch int) *song.Note {
	if e.gesture != nil {
		return nil
	}
	if e.doc == nil {
		e.doc = song.NewDefault()
	}
	n := e.doc.Insert(e.doc.Default(), song.Note{
		Pitch:    pitch,
		Velocity: song.DefaultVelocity,
		Start:    tick,
		End:      tick + e.doc.TicksPerBeat,
	})
	e.dirty = true
	e.resync([]song.NoteID{n.ID})
	debug.Log("edit", "add note %d: pitch=%d %d..%d", n.ID, n.Pitch, n.Start, n.End)
	return n
}

// DeleteSelected removes every selected note.
func (e *Editor) DeleteSelected() {
	if e.gesture != nil || e.doc == nil || e.sel.Len() == 0 {
		return
	}
	ids := e.sel.IDs()
	for _, id := range ids {
		e.doc.Remove(id)
	}
	e.dirty = true
	e.resync(nil)
	debug.Log("edit", "delete %d notes", len(ids))
}

// QuantizeSelected snaps each selected start to the nearest multiple of
// grid (halves round up) and keeps durations. grid <= 0 means
// DefaultQuantizeGrid.
func (e *Editor) QuantizeSelected(grid int) {
	if e.gesture != nil || e.doc == nil || e.sel.Len() == 0 {
		return
	}
	if grid <= 0 {
		grid = DefaultQuantizeGrid
	}
	ids := e.sel.IDs()
	for _, id := range ids {
		e.doc.Update(id, func(n *song.Note) {
			dur := n.Duration()
			n.Start = Quantize(n.Start, grid)
			n.End = n.Start + dur
		})
	}
	e.dirty = true
	e.resync(ids)
	debug.Log("edit", "quantize %d notes to %d", len(ids), grid)
}

// Quantize rounds tick to the nearest multiple of grid, halves upward.
func Quantize(tick, grid int) int {
	return (2*tick + grid) / (2 * grid) * grid
}

// CopySelected replaces the clipboard with detached copies of the
// selected notes in document order.
func (e *Editor) CopySelected() {
	if e.doc == nil || e.sel.Len() == 0 {
		return
	}
	e.clipboard = e.clipboard[:0]
	e.doc.Each(func(_ *song.Instrument, n *song.Note) {
		if e.sel.Contains(n.ID) {
			e.clipboard = append(e.clipboard, n.Detach())
		}
	})
	debug.Log("edit", "copy %d notes", len(e.clipboard))
}

// Cut copies then deletes the selection.
func (e *Editor) Cut() {
	if e.gesture != nil {
		return
	}
	e.CopySelected()
	e.DeleteSelected()
}

// Paste inserts the clipboard into the first instrument so that the
// earliest clipboard note starts at the left edge of the view, keeping
// relative timing, and selects the pasted notes. A document without
// instruments is left alone.
func (e *Editor) Paste() []song.NoteID {
	if e.gesture != nil || len(e.clipboard) == 0 || e.doc == nil || len(e.doc.Instruments) == 0 {
		return nil
	}
	anchor := max(0, int(e.view.VisibleRect().Left()))
	first := slices.MinFunc(e.clipboard, func(a, b song.Note) int {
		return a.Start - b.Start
	}).Start
	offset := anchor - first

	inst := e.doc.Default()
	ids := make([]song.NoteID, 0, len(e.clipboard))
	for _, c := range e.clipboard {
		dur := c.Duration()
		c.Start += offset
		c.End = c.Start + dur
		ids = append(ids, e.doc.Insert(inst, c).ID)
	}
	e.dirty = true
	e.resync(ids)
	debug.Log("edit", "paste %d notes at %d", len(ids), anchor)
	return ids
}

// AdjustVelocity adds delta to each selected note's velocity, clamped to
// 1..127. Velocity is not drawn, so no rebuild happens.
func (e *Editor) AdjustVelocity(delta int) {
	if e.doc == nil || e.sel.Len() == 0 {
		return
	}
	for _, id := range e.sel.IDs() {
		if n, _ := e.doc.Lookup(id); n != nil {
			n.Velocity = song.ClampVelocity(n.Velocity + delta)
		}
	}
	e.dirty = true
}

// SelectAll selects every note in the document.
func (e *Editor) SelectAll() {
	if e.gesture != nil {
		return
	}
	e.sel.SelectAll(e.doc)
}

// SelectNotes replaces the selection.
func (e *Editor) SelectNotes(ids ...song.NoteID) {
	if e.gesture != nil {
		return
	}
	e.sel.SelectOnly(ids...)
}

// MoveSelected commits a move of the selection as a drag would.
func (e *Editor) MoveSelected(dTicks, dPitch int) {
	if e.gesture != nil || e.doc == nil || e.sel.Len() == 0 {
		return
	}
	snap := make(map[song.NoteID]noteState, e.sel.Len())
	for _, id := range e.sel.IDs() {
		n := e.mustNote(id)
		snap[id] = noteState{n.Start, n.Pitch, n.End}
	}
	e.moveNotes(snap, dTicks, dPitch)
}

// ResizeSelected changes each selected note's length by dTicks, never
// below MinNoteTicks.
func (e *Editor) ResizeSelected(dTicks int) {
	if e.gesture != nil || e.doc == nil || e.sel.Len() == 0 {
		return
	}
	ids := e.sel.IDs()
	for _, id := range ids {
		e.doc.Update(id, func(n *song.Note) {
			n.End = max(n.Start+MinNoteTicks, n.End+dTicks)
		})
	}
	e.dirty = true
	e.resync(ids)
}
