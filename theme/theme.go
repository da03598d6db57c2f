package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Piano roll cells
	NoteHead rune // ▐ first column of a note
	NoteBody rune // █ rest of a note
	Grid     rune // ┊ beat line
	Cursor   rune // │ playback line
	Lane     rune // black-key row background

	// Pitch gutter
	WhiteKey rune // ░
	BlackKey rune // ▓
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			NoteHead: '▐',
			NoteBody: '█',
			Grid:     '┊',
			Cursor:   '│',
			Lane:     ' ',

			WhiteKey: '░',
			BlackKey: '▓',
		},
	}
}

// Default is the theme on the built-in palette.
func Default() *Theme {
	return New(DefaultPalette())
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0 // deep purple
	RoleSurface  = 0.1 // dark purple, black-key lanes
	RoleMuted    = 0.2 // purple-magenta, grid lines
	RoleFG       = 0.4 // pink-purple (readable)
	RoleNote     = 0.45
	RoleAccent   = 0.5 // vivid magenta
	RoleCursor   = 0.6 // rose pink
	RoleDrum     = 0.75
	RoleWarning  = 0.8 // orange
	RoleSelected = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Note() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleNote))
}

func (t *Theme) Drum() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleDrum))
}

func (t *Theme) Selected() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSelected))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Velocity shades a note color by velocity, brighter when louder.
func (t *Theme) Velocity(base float64, velocity int) lipgloss.Color {
	v := float64(max(1, min(127, velocity))) / 127
	return rgbToLipgloss(t.Palette.Lookup(base * (0.6 + 0.4*v)))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
