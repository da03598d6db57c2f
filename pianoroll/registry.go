package pianoroll

import (
	"fmt"
	"math"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

const (
	// MinNoteTicks is the shortest duration a resize can produce.
	MinNoteTicks = 10

	// Pitch window shown when the document has no notes (C2..C7).
	DefaultLowPitch  = 36
	DefaultHighPitch = 96

	pitchPadding = 12
	beatPadding  = 4
)

// Proxy is the visual stand-in for one note. It refers to its note by
// handle only; the document stays the source of truth.
type Proxy struct {
	ID         song.NoteID
	Instrument int
	Drum       bool
	Selected   bool

	rect   Rect  // geometry at rebuild time
	offset Point // live drag displacement
	width  float64
}

// SceneRect is the rectangle currently drawn, including live drag and
// resize feedback.
func (p *Proxy) SceneRect() Rect {
	return Rect{p.rect.X + p.offset.X, p.rect.Y + p.offset.Y, p.width, p.rect.H}
}

// Registry owns one proxy per note and the scene bounds derived from them.
type Registry struct {
	mapper  Mapper
	proxies []*Proxy
	byID    map[song.NoteID]*Proxy

	scene    Rect
	items    Rect
	lowPitch int
	hiPitch  int
}

func NewRegistry(m Mapper) *Registry {
	r := &Registry{mapper: m, byID: make(map[song.NoteID]*Proxy)}
	r.Rebuild(nil)
	return r
}

// Rebuild discards every proxy and creates a fresh one per note in doc.
// A nil doc leaves an empty registry with the default pitch window.
func (r *Registry) Rebuild(doc *song.Document) {
	r.proxies = r.proxies[:0]
	r.byID = make(map[song.NoteID]*Proxy)
	r.items = Rect{}

	maxTick := 0
	low, high := song.MaxPitch, song.MinPitch
	tpb := song.DefaultTicksPerBeat

	if doc != nil {
		tpb = doc.TicksPerBeat
		for idx, inst := range doc.Instruments {
			for _, n := range inst.Notes {
				if n.Start > n.End {
					panic(fmt.Sprintf("pianoroll: note %d has start %d after end %d", n.ID, n.Start, n.End))
				}
				x, y := r.mapper.ToScene(n.Start, n.Pitch)
				p := &Proxy{
					ID:         n.ID,
					Instrument: idx,
					Drum:       inst.Drum,
					rect:       Rect{x, y, float64(n.Duration()), r.mapper.KeyHeight},
					width:      float64(n.Duration()),
				}
				if len(r.proxies) == 0 {
					r.items = p.rect
				} else {
					r.items = r.items.Union(p.rect)
				}
				r.proxies = append(r.proxies, p)
				r.byID[n.ID] = p

				maxTick = max(maxTick, n.End)
				low = min(low, n.Pitch)
				high = max(high, n.Pitch)
			}
		}
	}

	if len(r.proxies) == 0 {
		low, high = DefaultLowPitch, DefaultHighPitch
	} else {
		low = max(song.MinPitch, low-pitchPadding)
		high = min(song.MaxPitch, high+pitchPadding)
	}
	r.lowPitch, r.hiPitch = low, high

	top := r.mapper.RowTop(high)
	bottom := r.mapper.RowTop(low) + r.mapper.KeyHeight
	r.scene = Rect{0, top, float64(maxTick + tpb*beatPadding), bottom - top}

	debug.Log("roll", "rebuild: %d proxies, pitch %d..%d, width %d", len(r.proxies), low, high, int(r.scene.W))
}

// Reposition displaces p by dTicks horizontally and dPitch rows (up is
// positive) from where it was built. It never touches the document.
func (r *Registry) Reposition(p *Proxy, dTicks float64, dPitch int) {
	p.offset = Point{dTicks, -float64(dPitch) * r.mapper.KeyHeight}
}

// ResizeWidth changes only the drawn width of p, never below MinNoteTicks.
func (r *Registry) ResizeWidth(p *Proxy, widthTicks int) {
	p.width = float64(max(MinNoteTicks, widthTicks))
}

// Proxies returns the proxies in paint order.
func (r *Registry) Proxies() []*Proxy {
	return r.proxies
}

func (r *Registry) Len() int {
	return len(r.proxies)
}

// Lookup finds the proxy for a note.
func (r *Registry) Lookup(id song.NoteID) *Proxy {
	return r.byID[id]
}

// SceneRect is the scrollable scene: tick 0 to the last note end plus four
// beats, over the padded pitch range.
func (r *Registry) SceneRect() Rect {
	return r.scene
}

// ItemsRect bounds every proxy. ok is false when there are none.
func (r *Registry) ItemsRect() (rect Rect, ok bool) {
	return r.items, len(r.proxies) > 0
}

// PitchRange is the padded pitch window used for the scene.
func (r *Registry) PitchRange() (low, high int) {
	return r.lowPitch, r.hiPitch
}

// At returns the topmost proxy under a scene point. Later proxies paint
// over earlier ones, so the search runs backwards.
func (r *Registry) At(pt Point) *Proxy {
	for i := len(r.proxies) - 1; i >= 0; i-- {
		if r.proxies[i].SceneRect().Contains(pt) {
			return r.proxies[i]
		}
	}
	return nil
}

// Hit finds the topmost proxy whose body contains pt. edge reports that
// pt is also within tolerance of that proxy's right edge.
func (r *Registry) Hit(pt Point, tolerance float64) (p *Proxy, edge bool) {
	if p = r.At(pt); p == nil {
		return nil, false
	}
	return p, r.OnTrailingEdge(p, pt, tolerance)
}

// OnTrailingEdge reports whether pt lies within tolerance scene units of
// p's right edge.
func (r *Registry) OnTrailingEdge(p *Proxy, pt Point, tolerance float64) bool {
	return math.Abs(pt.X-p.SceneRect().Right()) < tolerance
}
