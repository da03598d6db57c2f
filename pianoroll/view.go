package pianoroll

import "math"

type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

const (
	minScale = 1e-4
	maxScale = 1e3
)

// ViewConfig holds the view constants. Pixel values are screen units:
// real pixels in a GUI host, character cells in the terminal host.
type ViewConfig struct {
	ZoomFactor     float64 // per wheel step
	MinRowPixels   float64 // fit never shrinks a pitch row below this
	CursorPixels   float64 // on-screen width of the time cursor
	NominalWidth   float64 // content width in ticks when there are no notes
	FitMarginTicks float64
	FitMarginRows  float64
}

func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		ZoomFactor:     1.2,
		MinRowPixels:   5,
		CursorPixels:   2,
		NominalWidth:   1000,
		FitMarginTicks: 50,
		FitMarginRows:  2,
	}
}

// Cursor is the playback line in scene units.
type Cursor struct {
	Visible bool
	Tick    float64
	Top     float64
	Bottom  float64
	Width   float64
}

// View is the affine screen<->scene transform: independent horizontal and
// vertical scale plus a scroll origin (the scene point at the viewport's
// top-left corner).
type View struct {
	cfg           ViewConfig
	width, height float64
	sx, sy        float64
	origin        Point
	scene         Rect
	cursor        Cursor
}

func NewView(cfg ViewConfig, width, height int) *View {
	v := &View{cfg: cfg, sx: 1, sy: 1}
	v.cursor.Width = cfg.CursorPixels
	v.Resize(width, height)
	return v
}

// Resize sets the viewport size in screen units.
func (v *View) Resize(width, height int) {
	v.width = float64(max(0, width))
	v.height = float64(max(0, height))
	v.clampScroll()
}

func (v *View) Size() (width, height int) {
	return int(v.width), int(v.height)
}

// SetSceneRect sets the scrollable bounds.
func (v *View) SetSceneRect(r Rect) {
	v.scene = r
	v.clampScroll()
}

func (v *View) SceneRect() Rect {
	return v.scene
}

func (v *View) Scale() (sx, sy float64) {
	return v.sx, v.sy
}

// SetScale replaces the scale, keeping the scene point at the viewport
// center fixed.
func (v *View) SetScale(sx, sy float64) {
	c := v.VisibleRect().Center()
	v.sx = clampScale(sx)
	v.sy = clampScale(sy)
	v.CenterOn(c.X, c.Y)
}

func (v *View) MapToScene(p Point) Point {
	return Point{v.origin.X + p.X/v.sx, v.origin.Y + p.Y/v.sy}
}

func (v *View) MapFromScene(p Point) Point {
	return Point{(p.X - v.origin.X) * v.sx, (p.Y - v.origin.Y) * v.sy}
}

// PixelsToScene converts a horizontal screen distance to scene units.
func (v *View) PixelsToScene(px float64) float64 {
	return px / v.sx
}

// VisibleRect is the part of the scene inside the viewport.
func (v *View) VisibleRect() Rect {
	return Rect{v.origin.X, v.origin.Y, v.width / v.sx, v.height / v.sy}
}

// CenterOn scrolls so (x, y) sits at the viewport center, within the
// scene bounds.
func (v *View) CenterOn(x, y float64) {
	v.origin = Point{x - v.width/v.sx/2, y - v.height/v.sy/2}
	v.clampScroll()
}

// Pan scrolls by a screen-space drag delta; content follows the pointer.
func (v *View) Pan(dx, dy float64) {
	v.origin.X -= dx / v.sx
	v.origin.Y -= dy / v.sy
	v.clampScroll()
}

// FitToContent scales the view so items fit horizontally and the pitch
// range fits vertically without rows getting shorter than MinRowPixels,
// then centers on the items. Without items it uses the nominal width.
func (v *View) FitToContent(items Rect, hasItems bool, keyHeight float64) {
	content := Rect{0, v.scene.Y, v.cfg.NominalWidth, v.scene.H}
	if hasItems {
		content = items.Adjust(-v.cfg.FitMarginTicks, -v.cfg.FitMarginRows*keyHeight,
			v.cfg.FitMarginTicks, v.cfg.FitMarginRows*keyHeight)
	} else if v.scene.W < v.cfg.NominalWidth {
		v.scene.W = v.cfg.NominalWidth
	}

	sx := 1.0
	if v.width > 0 && content.W > 0 {
		sx = v.width / content.W
	}
	sy := 1.0
	if v.height > 0 && v.scene.H > 0 {
		sy = math.Max(v.height/v.scene.H, v.cfg.MinRowPixels/keyHeight)
	}
	v.sx = clampScale(sx)
	v.sy = clampScale(sy)

	c := content.Center()
	v.CenterOn(c.X, c.Y)
}

// Zoom scales one axis around the scene point under at: vertical when
// the modifier is held, horizontal otherwise.
func (v *View) Zoom(at Point, dir ZoomDirection, vertical bool) {
	factor := v.cfg.ZoomFactor
	if dir == ZoomOut {
		factor = 1 / factor
	}
	anchor := v.MapToScene(at)
	if vertical {
		v.sy = clampScale(v.sy * factor)
	} else {
		v.sx = clampScale(v.sx * factor)
	}
	v.origin = Point{anchor.X - at.X/v.sx, anchor.Y - at.Y/v.sy}
	v.clampScroll()
}

// UpdateCursor places the playback line at fraction of totalTicks,
// spanning the visible pitch range, with a width that stays CursorPixels
// wide on screen. Unless hold is set, the view scrolls to keep the line
// visible.
func (v *View) UpdateCursor(fraction float64, totalTicks int, hold bool) Cursor {
	if totalTicks <= 0 {
		v.cursor = Cursor{Width: v.cfg.CursorPixels}
		return v.cursor
	}
	fraction = math.Max(0, math.Min(1, fraction))
	tick := fraction * float64(totalTicks)

	vis := v.VisibleRect()
	if !hold && (tick < vis.Left() || tick >= vis.Right()) {
		v.CenterOn(tick, vis.Center().Y)
		vis = v.VisibleRect()
	}
	v.cursor = Cursor{
		Visible: true,
		Tick:    tick,
		Top:     vis.Top(),
		Bottom:  vis.Bottom(),
		Width:   v.cfg.CursorPixels / v.sx,
	}
	return v.cursor
}

func (v *View) Cursor() Cursor {
	return v.cursor
}

// clampScroll keeps the viewport inside the scene; an axis smaller than
// the viewport is centered.
func (v *View) clampScroll() {
	if v.sx == 0 || v.sy == 0 {
		return
	}
	v.origin.X = clampAxis(v.origin.X, v.scene.X, v.scene.W, v.width/v.sx)
	v.origin.Y = clampAxis(v.origin.Y, v.scene.Y, v.scene.H, v.height/v.sy)
}

func clampAxis(origin, start, length, visible float64) float64 {
	if visible >= length {
		return start - (visible-length)/2
	}
	return math.Max(start, math.Min(start+length-visible, origin))
}

func clampScale(s float64) float64 {
	return math.Max(minScale, math.Min(maxScale, s))
}
