package pianoroll

import (
	"slices"
	"testing"

	"go-pianoroll/song"
)

func TestRebuildOneProxyPerNote(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(64, 240, 720))
	drums := doc.AddInstrument("Drums", 0, true)
	doc.Insert(drums, note(72, 480, 960))

	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)

	if reg.Len() != doc.NoteCount() {
		t.Fatalf("got %d proxies for %d notes", reg.Len(), doc.NoteCount())
	}
	for _, id := range doc.IDs() {
		p := reg.Lookup(id)
		if p == nil {
			t.Fatalf("no proxy for note %d", id)
		}
		n, inst := doc.Lookup(id)
		if p.Drum != inst.Drum {
			t.Errorf("note %d: drum=%v, want %v", id, p.Drum, inst.Drum)
		}
		r := p.SceneRect()
		if r.X != float64(n.Start) || r.W != float64(n.Duration()) || r.Y != reg.mapper.RowTop(n.Pitch) || r.H != 15 {
			t.Errorf("note %d: rect %+v", id, r)
		}
	}
}

func TestRebuildSceneBounds(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(72, 480, 960))
	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)

	low, high := reg.PitchRange()
	if low != 48 || high != 84 {
		t.Fatalf("pitch range %d..%d, want 48..84", low, high)
	}
	want := Rect{0, (127 - 84) * 15, 960 + 4*480, (84 - 48 + 1) * 15}
	if got := reg.SceneRect(); got != want {
		t.Errorf("scene %+v, want %+v", got, want)
	}
	items, ok := reg.ItemsRect()
	if !ok || items.Left() != 0 || items.Right() != 960 {
		t.Errorf("items %+v ok=%v", items, ok)
	}
}

func TestRebuildEmpty(t *testing.T) {
	reg := NewRegistry(NewMapper(15))
	if low, high := reg.PitchRange(); low != DefaultLowPitch || high != DefaultHighPitch {
		t.Errorf("empty pitch range %d..%d", low, high)
	}
	if _, ok := reg.ItemsRect(); ok {
		t.Error("empty registry reported items")
	}

	reg.Rebuild(song.NewDefault())
	if reg.Len() != 0 {
		t.Errorf("got %d proxies", reg.Len())
	}
}

func TestRebuildClampsPitchPadding(t *testing.T) {
	doc := newDoc(note(2, 0, 10), note(125, 0, 10))
	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)
	if low, high := reg.PitchRange(); low != 0 || high != 127 {
		t.Errorf("pitch range %d..%d, want 0..127", low, high)
	}
}

func TestRebuildPanicsOnReversedNote(t *testing.T) {
	doc := song.NewDefault()
	doc.Append(doc.Default(), song.Note{Pitch: 60, Velocity: 100, Start: 100, End: 50})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRegistry(NewMapper(15)).Rebuild(doc)
}

func TestHitBodyAndEdge(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)
	y := reg.mapper.RowTop(60) + 7

	tests := []struct {
		name string
		x    float64
		hit  bool
		edge bool
	}{
		{"body", 100, true, false},
		{"inside edge zone", 475, true, true},
		{"past end within tolerance", 484, false, false},
		{"past end beyond tolerance", 500, false, false},
		{"before start", -1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, edge := reg.Hit(Point{tt.x, y}, 10)
			if (p != nil) != tt.hit || edge != tt.edge {
				t.Errorf("Hit(%v): proxy=%v edge=%v", tt.x, p != nil, edge)
			}
		})
	}

	if p, _ := reg.Hit(Point{100, reg.mapper.RowTop(61) + 7}, 10); p != nil {
		t.Error("hit in the wrong row")
	}
}

func TestAtTopmost(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(60, 240, 720))
	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)
	p := reg.At(Point{300, reg.mapper.RowTop(60) + 1})
	if p == nil || p.ID != doc.Default().Notes[1].ID {
		t.Fatalf("At returned %+v, want the later note", p)
	}
}

func TestRepositionAndResizeLeaveDocument(t *testing.T) {
	doc := newDoc(note(60, 0, 480))
	reg := NewRegistry(NewMapper(15))
	reg.Rebuild(doc)
	n := doc.Default().Notes[0]
	p := reg.Lookup(n.ID)

	reg.Reposition(p, 120.5, 2)
	r := p.SceneRect()
	if r.X != 120.5 || r.Y != reg.mapper.RowTop(62) {
		t.Errorf("repositioned rect %+v", r)
	}
	reg.ResizeWidth(p, 3)
	if p.SceneRect().W != MinNoteTicks {
		t.Errorf("width %v, want %d", p.SceneRect().W, MinNoteTicks)
	}
	if n.Start != 0 || n.End != 480 || n.Pitch != 60 {
		t.Errorf("document changed: %+v", *n)
	}
}

func TestSelectionMirrorsProxies(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(62, 480, 960), note(64, 960, 1440))
	e := newEditor(t, doc)
	ids := doc.IDs()

	e.Selection().SelectOnly(ids[0], ids[2])
	checkMirror(t, e)
	e.Selection().Toggle(ids[0])
	e.Selection().Toggle(ids[1])
	checkMirror(t, e)
	if got := e.Selection().IDs(); !slices.Equal(got, []song.NoteID{ids[1], ids[2]}) {
		t.Errorf("selection %v", got)
	}
	e.Selection().Clear()
	checkMirror(t, e)
	if e.Selection().Len() != 0 {
		t.Error("clear left notes selected")
	}
	e.SelectAll()
	if e.Selection().Len() != 3 || len(e.Selection().Proxies()) != 3 {
		t.Errorf("select all: %d", e.Selection().Len())
	}
	checkMirror(t, e)
}

func TestSelectionSurvivesRebuild(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(62, 59, 960), note(64, 970, 1440))
	e := newEditor(t, doc)
	ids := doc.IDs()
	want := []song.NoteID{ids[1], ids[2]}
	e.SelectNotes(want...)
	before := e.Registry().Lookup(ids[1])

	e.QuantizeSelected(120)

	if e.Registry().Lookup(ids[1]) == before {
		t.Fatal("registry was not rebuilt")
	}
	got := e.Selection().IDs()
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("selection after rebuild %v, want %v", got, want)
	}
	checkMirror(t, e)
}

func TestSelectionDropsDeletedNotes(t *testing.T) {
	doc := newDoc(note(60, 0, 480), note(62, 480, 960))
	e := newEditor(t, doc)
	ids := doc.IDs()
	e.SelectNotes(ids[0])
	e.DeleteSelected()

	if e.Selection().Len() != 0 {
		t.Errorf("selection %v after delete", e.Selection().IDs())
	}
	if e.Registry().Len() != 1 || e.Registry().Lookup(ids[1]) == nil {
		t.Error("remaining note lost its proxy")
	}
}
