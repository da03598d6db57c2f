package pianoroll

import (
	"testing"

	"go-pianoroll/song"
)

func TestDragMovesNote(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	e := newEditor(t, doc)
	n := doc.Default().Notes[0]

	from := screenAt(e, 100, 60)
	to := screenAt(e, 580, 60)
	e.Press(left(from, 0))
	if e.Mode() != ModeMoveNote {
		t.Fatalf("mode %v after press on a note", e.Mode())
	}
	e.Move(left(to, 0))

	if r := e.Registry().Lookup(n.ID).SceneRect(); !near(r.X, 480) {
		t.Errorf("live proxy at %v, want 480", r.X)
	}
	if n.Start != 0 {
		t.Fatalf("document mutated during drag: start=%d", n.Start)
	}

	e.Release(left(to, 0))
	if e.Mode() != ModeSelect || e.InGesture() {
		t.Errorf("mode %v after release", e.Mode())
	}
	if n.Start != 480 || n.End != 960 || n.Pitch != 60 {
		t.Errorf("note %d..%d pitch %d, want 480..960 pitch 60", n.Start, n.End, n.Pitch)
	}
	if !e.Dirty() {
		t.Error("move did not mark the document dirty")
	}
	if !e.Selection().Contains(n.ID) {
		t.Error("moved note lost its selection")
	}
	checkMirror(t, e)
	checkNotes(t, doc)
}

func TestDragMovesGroup(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 960, 1440))
	e := newEditor(t, doc)
	a, b := doc.Default().Notes[0], doc.Default().Notes[1]

	drag(e, screenAt(e, 100, 60), screenAt(e, 100, 60), 0)
	drag(e, screenAt(e, 1060, 64), screenAt(e, 1060, 64), AdditiveModifier)
	if e.Selection().Len() != 2 {
		t.Fatalf("selection %v, want both notes", e.Selection().IDs())
	}

	// pressing a selected note without a modifier keeps the group
	drag(e, screenAt(e, 1060, 64), screenAt(e, 1180, 66), 0)

	if a.Start != 120 || a.End != 600 || a.Pitch != 62 {
		t.Errorf("a = %d..%d pitch %d", a.Start, a.End, a.Pitch)
	}
	if b.Start != 1080 || b.End != 1560 || b.Pitch != 66 {
		t.Errorf("b = %d..%d pitch %d", b.Start, b.End, b.Pitch)
	}
	checkMirror(t, e)
}

func TestAdditivePressToggles(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 960, 1440))
	e := newEditor(t, doc)
	a, b := doc.Default().Notes[0], doc.Default().Notes[1]

	drag(e, screenAt(e, 100, 60), screenAt(e, 100, 60), 0)
	drag(e, screenAt(e, 1060, 64), screenAt(e, 1060, 64), AdditiveModifier)
	drag(e, screenAt(e, 100, 60), screenAt(e, 100, 60), AdditiveModifier)

	if e.Selection().Contains(a.ID) || !e.Selection().Contains(b.ID) {
		t.Errorf("selection %v, want only %d", e.Selection().IDs(), b.ID)
	}
	checkMirror(t, e)
}

func TestPressSelectsOnlyUnselectedNote(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 960, 1440))
	e := newEditor(t, doc)
	e.SelectAll()
	b := doc.Default().Notes[1]

	e.SelectNotes(doc.Default().Notes[0].ID)
	drag(e, screenAt(e, 1060, 64), screenAt(e, 1060, 64), 0)

	if ids := e.Selection().IDs(); len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("selection %v, want [%d]", ids, b.ID)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	doc := newDoc(note(60, 240, 480))
	e := newEditor(t, doc)
	n := doc.Default().Notes[0]

	e.Press(left(screenAt(e, 479, 60), 0))
	if e.Mode() != ModeResizeNoteEnd {
		t.Fatalf("mode %v after press on the trailing edge", e.Mode())
	}
	if e.CursorShape() != CursorResize {
		t.Errorf("cursor shape %v", e.CursorShape())
	}
	e.Move(left(screenAt(e, 50, 60), 0))
	if w := e.Registry().Lookup(n.ID).SceneRect().W; w != MinNoteTicks {
		t.Errorf("live width %v", w)
	}
	if n.End != 480 {
		t.Fatalf("document mutated during resize: end=%d", n.End)
	}
	e.Release(left(screenAt(e, 50, 60), 0))

	if n.Start != 240 || n.End != 250 {
		t.Errorf("note %d..%d, want 240..250", n.Start, n.End)
	}
	checkNotes(t, doc)
}

func TestResizeExtends(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	e := newEditor(t, doc)
	n := doc.Default().Notes[0]

	drag(e, screenAt(e, 478, 60), screenAt(e, 530.4, 60), 0)

	if n.Start != 0 || n.End != 530 {
		t.Errorf("note %d..%d, want 0..530", n.Start, n.End)
	}
	if e.Selection().Len() != 1 || !e.Selection().Contains(n.ID) {
		t.Error("resized note not selected")
	}
}

func TestDragPreviewMatchesCommit(t *testing.T) {
	doc := newDoc(note(60, 100, 580))
	e := newEditor(t, doc)
	n := doc.Default().Notes[0]

	e.Press(left(screenAt(e, 200, 60), 0))
	e.Move(left(screenAt(e, 320.4, 60), 0))
	if r := e.Registry().Lookup(n.ID).SceneRect(); !near(r.X, 220) {
		t.Errorf("live proxy at %v, want whole tick 220", r.X)
	}

	far := Point{-10000, 10000}
	e.Move(left(far, 0))
	live := e.Registry().Lookup(n.ID).SceneRect()
	if !near(live.X, 0) || !near(live.Y, e.Mapper().RowTop(0)) {
		t.Errorf("live proxy at %v, want tick 0 pitch 0", live)
	}
	e.Release(left(far, 0))

	if got := e.Registry().Lookup(n.ID).SceneRect(); got != live {
		t.Errorf("committed %v, previewed %v", got, live)
	}
	if n.Start != 0 || n.End != 480 || n.Pitch != 0 {
		t.Errorf("note %d..%d pitch %d, want 0..480 pitch 0", n.Start, n.End, n.Pitch)
	}
}

func TestPressPastNoteEndPans(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	e := newEditor(t, doc)
	e.SelectAll()
	n := doc.Default().Notes[0]

	from := screenAt(e, 480, 60)
	from.X += 5
	e.Press(left(from, 0))
	if e.Mode() == ModeResizeNoteEnd {
		t.Fatal("press beside a note started a resize")
	}
	if e.CursorShape() != CursorGrab {
		t.Errorf("cursor shape %v", e.CursorShape())
	}
	if e.Selection().Len() != 0 {
		t.Error("press on empty space kept the selection")
	}
	e.Release(left(Point{from.X + 40, from.Y}, 0))
	if n.Start != 0 || n.End != 480 {
		t.Errorf("note %d..%d, want 0..480", n.Start, n.End)
	}
}

func TestReleaseOutsideClamps(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	e := newEditor(t, doc)
	n := doc.Default().Notes[0]

	e.Press(left(screenAt(e, 100, 60), 0))
	e.Release(left(Point{-10000, 10000}, 0))

	if n.Start != 0 || n.End != 480 || n.Pitch != 0 {
		t.Errorf("note %d..%d pitch %d, want 0..480 pitch 0", n.Start, n.End, n.Pitch)
	}
	checkNotes(t, doc)
}

func TestPressOnEmptyPans(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	e := newEditor(t, doc)
	e.SelectAll()
	for i := 0; i < 3; i++ {
		e.Zoom(Point{400, 300}, ZoomIn, false)
	}
	before := e.View().VisibleRect().Left()
	sx, _ := e.View().Scale()

	from := screenAt(e, 200, 70)
	e.Press(left(from, 0))
	if e.Selection().Len() != 0 {
		t.Error("press on empty space kept the selection")
	}
	if e.CursorShape() != CursorGrab {
		t.Errorf("cursor shape %v", e.CursorShape())
	}
	e.Move(left(Point{from.X - 50, from.Y}, 0))
	e.Release(left(Point{from.X - 50, from.Y}, 0))

	if got := e.View().VisibleRect().Left(); !near(got, before+50/sx) {
		t.Errorf("left %v, want %v", got, before+50/sx)
	}
	if n := doc.Default().Notes[0]; n.Start != 0 || n.Pitch != 60 {
		t.Error("pan moved a note")
	}
}

func TestRightPressOffersMenu(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 960, 1440))
	e := newEditor(t, doc)
	b := doc.Default().Notes[1]
	b.Velocity = 50
	e.SelectNotes(doc.Default().Notes[0].ID)

	menu := e.Press(PointerEvent{Pos: screenAt(e, 1060, 64), Button: ButtonRight})
	if menu == nil || len(menu.Actions) != 4 {
		t.Fatalf("menu %+v", menu)
	}
	if e.InGesture() {
		t.Error("right press started a gesture")
	}
	if ids := e.Selection().IDs(); len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("selection %v", ids)
	}
	e.Apply(ActionVelocityUp)
	if b.Velocity != 60 {
		t.Errorf("velocity %d", b.Velocity)
	}

	if m := e.Press(PointerEvent{Pos: screenAt(e, 700, 70), Button: ButtonRight}); m != nil {
		t.Error("menu offered over empty space")
	}
}

func TestAddModePress(t *testing.T) {
	e := newEditor(t, nil)
	e.SetMode(ModeAddNote)
	if e.CursorShape() != CursorCrosshair {
		t.Errorf("cursor shape %v", e.CursorShape())
	}
	pos := e.View().MapFromScene(Point{960.2, e.Mapper().RowTop(64) + 3})
	e.Press(left(pos, 0))

	if e.Mode() != ModeSelect {
		t.Errorf("mode %v after adding", e.Mode())
	}
	doc := e.Document()
	if doc == nil || doc.NoteCount() != 1 {
		t.Fatal("no note added")
	}
	n := doc.Default().Notes[0]
	if n.Pitch != 64 || n.Start != 960 || n.End != 1440 || n.Velocity != 100 {
		t.Errorf("added %+v", *n)
	}
}

func TestHoverShowsResizeCursor(t *testing.T) {
	e := newEditor(t, newDoc(note(60, 0, 480)))
	e.Move(PointerEvent{Pos: screenAt(e, 478, 60)})
	if e.CursorShape() != CursorResize {
		t.Errorf("over edge: %v", e.CursorShape())
	}
	e.Move(PointerEvent{Pos: screenAt(e, 200, 60)})
	if e.CursorShape() != CursorDefault {
		t.Errorf("over body: %v", e.CursorShape())
	}
}

func TestEditsIgnoredDuringGesture(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 960, 1440))
	e := newEditor(t, doc)
	e.Press(left(screenAt(e, 100, 60), 0))

	e.DeleteSelected()
	e.SetMode(ModeAddNote)
	if e.AddNote(0, 0) != nil {
		t.Error("note added mid-gesture")
	}
	if e.Press(left(screenAt(e, 1060, 64), 0)) != nil || e.Selection().Contains(doc.Default().Notes[1].ID) {
		t.Error("second press changed selection mid-gesture")
	}
	if doc.NoteCount() != 2 {
		t.Errorf("%d notes after edits mid-gesture", doc.NoteCount())
	}
	e.Release(left(screenAt(e, 100, 60), 0))
	if e.Mode() != ModeSelect {
		t.Errorf("mode %v", e.Mode())
	}
}

func TestSetDocumentDropsGesture(t *testing.T) {
	e := newEditor(t, newDoc(note(60, 0, 480)))
	e.Press(left(screenAt(e, 100, 60), 0))
	e.SetDocument(song.NewDefault())
	if e.InGesture() || e.Registry().Len() != 0 {
		t.Error("gesture survived a document change")
	}
	e.Release(left(Point{}, 0))
}
