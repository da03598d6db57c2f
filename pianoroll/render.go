package pianoroll

import (
	"math"

	"go-pianoroll/song"
)

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellBlackKey
	CellGrid
	CellNote
	CellDrumNote
	CellSelected
	CellCursor
)

// Cell is one screen unit of the rendered view. Head marks the first
// column of a note.
type Cell struct {
	Kind CellKind
	Head bool
}

// Raster is the visible part of the scene sampled at one cell per screen
// unit, row-major.
type Raster struct {
	Width, Height int
	Cells         []Cell
	// Pitches holds the pitch under each row's center, -1 outside 0..127.
	Pitches []int
}

func (r Raster) At(x, y int) Cell {
	return r.Cells[y*r.Width+x]
}

func (r Raster) set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	r.Cells[y*r.Width+x] = c
}

func isBlackKey(pitch int) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// Render draws lanes, grid lines, note proxies in paint order and the
// playback cursor on top.
func (e *Editor) Render() Raster {
	w, h := e.view.Size()
	r := Raster{Width: w, Height: h, Cells: make([]Cell, w*h), Pitches: make([]int, h)}
	if w == 0 || h == 0 {
		return r
	}

	for y := 0; y < h; y++ {
		sy := e.view.MapToScene(Point{0, float64(y) + 0.5}).Y
		pitch := song.MaxPitch - int(math.Floor(sy/e.mapper.KeyHeight))
		if sy < 0 || pitch < song.MinPitch {
			r.Pitches[y] = -1
			continue
		}
		r.Pitches[y] = pitch
		if isBlackKey(pitch) {
			for x := 0; x < w; x++ {
				r.set(x, y, Cell{Kind: CellBlackKey})
			}
		}
	}

	e.renderGrid(r)

	vis := e.view.VisibleRect()
	for _, p := range e.reg.Proxies() {
		sr := p.SceneRect()
		if !sr.Intersects(vis) {
			continue
		}
		kind := CellNote
		switch {
		case p.Selected:
			kind = CellSelected
		case p.Drum:
			kind = CellDrumNote
		}
		tl := e.view.MapFromScene(Point{sr.Left(), sr.Top()})
		br := e.view.MapFromScene(Point{sr.Right(), sr.Bottom()})
		x0, x1 := span(tl.X, br.X)
		y0, y1 := span(tl.Y, br.Y)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				r.set(x, y, Cell{Kind: kind, Head: x == x0})
			}
		}
	}

	if c := e.view.Cursor(); c.Visible {
		left := e.view.MapFromScene(Point{c.Tick - c.Width/2, 0}).X
		right := e.view.MapFromScene(Point{c.Tick + c.Width/2, 0}).X
		x0, x1 := span(left, right)
		for x := x0; x < x1; x++ {
			for y := 0; y < h; y++ {
				r.set(x, y, Cell{Kind: CellCursor})
			}
		}
	}
	return r
}

// renderGrid marks beat columns, or bar columns when beats are too dense.
func (e *Editor) renderGrid(r Raster) {
	tpb := song.DefaultTicksPerBeat
	if e.doc != nil {
		tpb = e.doc.TicksPerBeat
	}
	sx, _ := e.view.Scale()
	step := float64(tpb)
	if step*sx < 2 {
		step *= 4
	}
	if step*sx < 2 {
		return
	}
	for x := 0; x < r.Width; x++ {
		left := e.view.MapToScene(Point{float64(x), 0}).X
		right := e.view.MapToScene(Point{float64(x + 1), 0}).X
		if line := math.Ceil(left/step) * step; line < 0 || line >= right {
			continue
		}
		for y := 0; y < r.Height; y++ {
			if r.Pitches[y] >= 0 && r.At(x, y).Kind == CellEmpty {
				r.set(x, y, Cell{Kind: CellGrid})
			}
		}
	}
}

// span converts a screen interval to at least one whole cell.
func span(a, b float64) (int, int) {
	lo := int(math.Round(a))
	hi := int(math.Round(b))
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
