package pianoroll

import (
	"math"
	"testing"

	"go-pianoroll/song"
)

func newDoc(notes ...song.Note) *song.Document {
	d := song.NewDefault()
	for _, n := range notes {
		d.Insert(d.Default(), n)
	}
	return d
}

func note(pitch, start, end int) song.Note {
	return song.Note{Pitch: pitch, Velocity: song.DefaultVelocity, Start: start, End: end}
}

func newEditor(t *testing.T, doc *song.Document) *Editor {
	t.Helper()
	e := New(DefaultConfig(), 800, 600)
	if doc != nil {
		e.SetDocument(doc)
	}
	return e
}

// screenAt returns the screen point over tick in pitch's row center.
func screenAt(e *Editor, tick float64, pitch int) Point {
	m := e.Mapper()
	return e.View().MapFromScene(Point{tick, m.RowTop(pitch) + m.KeyHeight/2})
}

func left(pos Point, mods Modifiers) PointerEvent {
	return PointerEvent{Pos: pos, Button: ButtonLeft, Mods: mods}
}

func drag(e *Editor, from, to Point, mods Modifiers) {
	e.Press(left(from, mods))
	e.Move(left(to, mods))
	e.Release(left(to, mods))
}

func checkMirror(t *testing.T, e *Editor) {
	t.Helper()
	for _, p := range e.Registry().Proxies() {
		if p.Selected != e.Selection().Contains(p.ID) {
			t.Fatalf("proxy %d selected=%v but selection contains=%v", p.ID, p.Selected, e.Selection().Contains(p.ID))
		}
	}
}

func checkNotes(t *testing.T, doc *song.Document) {
	t.Helper()
	doc.Each(func(_ *song.Instrument, n *song.Note) {
		if n.Pitch < 0 || n.Pitch > 127 {
			t.Errorf("note %d pitch %d out of range", n.ID, n.Pitch)
		}
		if n.Velocity < 1 || n.Velocity > 127 {
			t.Errorf("note %d velocity %d out of range", n.ID, n.Velocity)
		}
		if n.Start < 0 || n.Start >= n.End {
			t.Errorf("note %d span %d..%d invalid", n.ID, n.Start, n.End)
		}
	})
	for _, inst := range doc.Instruments {
		for i := 1; i < len(inst.Notes); i++ {
			if inst.Notes[i-1].Start > inst.Notes[i].Start {
				t.Errorf("instrument %q not sorted at %d", inst.Name, i)
			}
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
