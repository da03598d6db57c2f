package pianoroll

import (
	"math"

	"go-pianoroll/song"
)

// DefaultKeyHeight is the scene height of one pitch row.
const DefaultKeyHeight = 15.0

// Point is a 2-D position in either scene or screen space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle; Y grows downward.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Contains treats the rectangle as half-open on the right and bottom edges.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X < r.Right() && p.Y >= r.Top() && p.Y < r.Bottom()
}

func (r Rect) Intersects(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() && r.Top() < o.Bottom() && o.Top() < r.Bottom()
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left(), o.Left())
	top := math.Min(r.Top(), o.Top())
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{left, top, right - left, bottom - top}
}

// Adjust grows (or shrinks) each edge like QRect.adjust.
func (r Rect) Adjust(dl, dt, dr, db float64) Rect {
	return Rect{r.X + dl, r.Y + dt, r.W - dl + dr, r.H - dt + db}
}

// Mapper converts between musical units and scene space. The scene is flat:
// one x unit per tick, KeyHeight y units per pitch, pitch 127 at the top.
// Zoom lives entirely in View.
type Mapper struct {
	KeyHeight float64
}

func NewMapper(keyHeight float64) Mapper {
	if keyHeight <= 0 {
		keyHeight = DefaultKeyHeight
	}
	return Mapper{KeyHeight: keyHeight}
}

// ToScene returns the top-left scene corner of a note row cell.
func (m Mapper) ToScene(tick, pitch int) (x, y float64) {
	return float64(tick), float64(song.MaxPitch-pitch) * m.KeyHeight
}

// ToMusic is the inverse of ToScene, clamped to legal ticks and pitches.
func (m Mapper) ToMusic(x, y float64) (tick, pitch int) {
	tick = max(0, int(math.Round(x)))
	pitch = song.ClampPitch(song.MaxPitch - int(math.Floor(y/m.KeyHeight)))
	return tick, pitch
}

// RowTop is the scene y of the top edge of pitch's row.
func (m Mapper) RowTop(pitch int) float64 {
	return float64(song.MaxPitch-pitch) * m.KeyHeight
}

// PitchRows converts a scene y delta into whole pitch steps (up is positive).
func (m Mapper) PitchRows(dy float64) int {
	return -int(math.Round(dy / m.KeyHeight))
}
