package pianoroll

import (
	"math"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
)

type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

func (m Modifiers) Has(o Modifiers) bool {
	return m&o != 0
}

// AdditiveModifier toggles a note into or out of the selection on press.
const AdditiveModifier = ModCtrl

// PointerEvent is a press, move or release in screen coordinates relative
// to the viewport.
type PointerEvent struct {
	Pos    Point
	Button Button
	Mods   Modifiers
}

// ContextMenu is returned by a right press over a note.
type ContextMenu struct {
	At      Point
	Actions []Action
}

type gestureKind int

const (
	gestureMove gestureKind = iota
	gestureResize
	gesturePan
)

type noteState struct {
	Start, Pitch, End int
}

// gesture is everything one press-move-release sequence needs. It exists
// only between press and release.
type gesture struct {
	kind   gestureKind
	anchor Point // scene position at press
	last   Point // screen position of the previous pan event

	snapshot map[song.NoteID]noteState

	// move
	dTicks int
	dPitch int

	// resize
	target song.NoteID
	end    int
}

// Press starts a gesture or performs a click action. A right press over a
// note returns the actions the host should offer.
func (e *Editor) Press(ev PointerEvent) *ContextMenu {
	if e.gesture != nil {
		return nil
	}
	scene := e.view.MapToScene(ev.Pos)
	hit, edge := e.reg.Hit(scene, e.view.PixelsToScene(e.cfg.EdgeTolerance))

	switch ev.Button {
	case ButtonLeft:
		if e.mode == ModeAddNote {
			tick, pitch := e.mapper.ToMusic(scene.X, scene.Y)
			e.AddNote(tick, pitch)
			e.SetMode(ModeSelect)
			return nil
		}
		switch {
		case hit == nil:
			e.sel.Clear()
			e.gesture = &gesture{kind: gesturePan, anchor: scene, last: ev.Pos}
			e.shape = CursorGrab
		case edge:
			e.beginResize(hit, scene)
		default:
			e.beginMove(hit, scene, ev.Mods)
		}
	case ButtonRight:
		if hit == nil {
			return nil
		}
		if !e.sel.Contains(hit.ID) {
			e.sel.SelectOnly(hit.ID)
		}
		return &ContextMenu{At: ev.Pos, Actions: ContextActions()}
	}
	return nil
}

func (e *Editor) beginResize(p *Proxy, scene Point) {
	n := e.mustNote(p.ID)
	e.sel.SelectOnly(p.ID)
	e.gesture = &gesture{
		kind:     gestureResize,
		anchor:   scene,
		snapshot: map[song.NoteID]noteState{p.ID: {n.Start, n.Pitch, n.End}},
		target:   p.ID,
		end:      n.End,
	}
	e.shape = CursorResize
	debug.Log("gesture", "resize begin: note %d end=%d", p.ID, n.End)
}

func (e *Editor) beginMove(p *Proxy, scene Point, mods Modifiers) {
	switch {
	case mods.Has(AdditiveModifier):
		e.sel.Toggle(p.ID)
	case !p.Selected:
		e.sel.SelectOnly(p.ID)
	}

	snap := make(map[song.NoteID]noteState, e.sel.Len())
	for _, id := range e.sel.IDs() {
		n := e.mustNote(id)
		snap[id] = noteState{n.Start, n.Pitch, n.End}
	}
	e.gesture = &gesture{kind: gestureMove, anchor: scene, snapshot: snap}
	debug.Log("gesture", "move begin: %d notes", len(snap))
}

// Move updates live feedback during a gesture, or hover affordance when
// idle. It never mutates the document.
func (e *Editor) Move(ev PointerEvent) {
	scene := e.view.MapToScene(ev.Pos)
	g := e.gesture
	if g == nil {
		e.hover(scene)
		return
	}

	switch g.kind {
	case gestureMove:
		g.dTicks = int(math.Round(scene.X - g.anchor.X))
		g.dPitch = e.mapper.PitchRows(scene.Y - g.anchor.Y)
		for id, st := range g.snapshot {
			if p := e.reg.Lookup(id); p != nil {
				// clamped like moveNotes
				dt := max(-st.Start, g.dTicks)
				dp := song.ClampPitch(st.Pitch+g.dPitch) - st.Pitch
				e.reg.Reposition(p, float64(dt), dp)
			}
		}
		debug.LogEvery(20, "gesture", "move dt=%d dp=%d", g.dTicks, g.dPitch)
	case gestureResize:
		start := g.snapshot[g.target].Start
		g.end = max(start+MinNoteTicks, int(math.Round(scene.X)))
		if p := e.reg.Lookup(g.target); p != nil {
			e.reg.ResizeWidth(p, g.end-start)
		}
	case gesturePan:
		e.view.Pan(ev.Pos.X-g.last.X, ev.Pos.Y-g.last.Y)
		g.last = ev.Pos
	}
}

func (e *Editor) hover(scene Point) {
	if e.mode != ModeSelect {
		return
	}
	if _, edge := e.reg.Hit(scene, e.view.PixelsToScene(e.cfg.EdgeTolerance)); edge {
		e.shape = CursorResize
	} else {
		e.shape = CursorDefault
	}
}

// Release ends the gesture and commits it. The release position counts as
// the final move, so a release anywhere still commits the last clamped
// values.
func (e *Editor) Release(ev PointerEvent) {
	g := e.gesture
	if g == nil {
		return
	}
	e.Move(ev)
	e.gesture = nil
	e.shape = CursorDefault

	switch g.kind {
	case gestureMove:
		e.moveNotes(g.snapshot, g.dTicks, g.dPitch)
		debug.Log("gesture", "move commit: %d notes dt=%d dp=%d", len(g.snapshot), g.dTicks, g.dPitch)
	case gestureResize:
		e.doc.Update(g.target, func(n *song.Note) {
			n.End = g.end
		})
		e.dirty = true
		e.resync([]song.NoteID{g.target})
		debug.Log("gesture", "resize commit: note %d end=%d", g.target, g.end)
	}
}

// moveNotes shifts each note from its snapshot by dTicks and dPitch,
// keeping durations, then rebuilds and reselects the same notes.
func (e *Editor) moveNotes(snap map[song.NoteID]noteState, dTicks, dPitch int) {
	ids := make([]song.NoteID, 0, len(snap))
	for id, st := range snap {
		e.doc.Update(id, func(n *song.Note) {
			n.Start = max(0, st.Start+dTicks)
			n.End = n.Start + (st.End - st.Start)
			n.Pitch = song.ClampPitch(st.Pitch + dPitch)
		})
		ids = append(ids, id)
	}
	if dTicks != 0 || dPitch != 0 {
		e.dirty = true
	}
	e.resync(ids)
}

// mustNote resolves a proxy's note. A proxy without a note means the
// registry and document diverged.
func (e *Editor) mustNote(id song.NoteID) *song.Note {
	if e.doc == nil {
		panic("pianoroll: proxy exists without a document")
	}
	n, _ := e.doc.Lookup(id)
	if n == nil {
		panic("pianoroll: proxy refers to a missing note")
	}
	return n
}
