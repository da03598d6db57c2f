package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/pianoroll"
	"go-pianoroll/theme"
)

// GutterWidth is the width of the pitch label column.
const GutterWidth = 5

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchLabel names a MIDI pitch, middle C (60) being C4.
func PitchLabel(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return ""
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

func isBlack(pitch int) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// RenderGutter renders the pitch column beside a raster: a key strip on
// every row and the pitch name on the first row of each C.
func RenderGutter(pitches []int, th *theme.Theme) []string {
	white := lipgloss.NewStyle().Foreground(th.FG())
	black := lipgloss.NewStyle().Foreground(th.Muted())
	label := lipgloss.NewStyle().Foreground(th.Accent())

	lines := make([]string, len(pitches))
	for y, p := range pitches {
		if p < 0 {
			lines[y] = strings.Repeat(" ", GutterWidth)
			continue
		}
		key := white.Render(string(th.Symbols.WhiteKey))
		if isBlack(p) {
			key = black.Render(string(th.Symbols.BlackKey))
		}
		text := ""
		if p%12 == 0 && (y == 0 || pitches[y-1] != p) {
			text = PitchLabel(p)
		}
		lines[y] = label.Render(fmt.Sprintf("%-*s", GutterWidth-1, text)) + key
	}
	return lines
}

// RenderRoll renders a raster one line per row, merging runs of equal cells
// into a single styled span.
func RenderRoll(r pianoroll.Raster, th *theme.Theme) []string {
	lines := make([]string, r.Height)
	for y := 0; y < r.Height; y++ {
		lines[y] = RenderRollRow(r, y, 0, r.Width, th)
	}
	return lines
}

// RenderRollRow renders columns [x0, x1) of row y.
func RenderRollRow(r pianoroll.Raster, y, x0, x1 int, th *theme.Theme) string {
	x0, x1 = max(0, x0), min(r.Width, x1)
	var line strings.Builder
	x := x0
	for x < x1 {
		c := r.At(x, y)
		end := x + 1
		for end < x1 && r.At(end, y) == c && !c.Head {
			end++
		}
		line.WriteString(renderRun(c, end-x, th))
		x = end
	}
	return line.String()
}

func renderRun(c pianoroll.Cell, n int, th *theme.Theme) string {
	sym := th.Symbols
	switch c.Kind {
	case pianoroll.CellBlackKey:
		return lipgloss.NewStyle().Background(th.Surface()).Render(strings.Repeat(string(sym.Lane), n))
	case pianoroll.CellGrid:
		return lipgloss.NewStyle().Foreground(th.Muted()).Render(strings.Repeat(string(sym.Grid), n))
	case pianoroll.CellCursor:
		return lipgloss.NewStyle().Foreground(th.Cursor()).Render(strings.Repeat(string(sym.Cursor), n))
	case pianoroll.CellNote, pianoroll.CellDrumNote, pianoroll.CellSelected:
		color := th.Note()
		switch c.Kind {
		case pianoroll.CellDrumNote:
			color = th.Drum()
		case pianoroll.CellSelected:
			color = th.Selected()
		}
		text := strings.Repeat(string(sym.NoteBody), n)
		if c.Head {
			text = string(sym.NoteHead) + strings.Repeat(string(sym.NoteBody), n-1)
		}
		return lipgloss.NewStyle().Foreground(color).Render(text)
	default:
		return strings.Repeat(" ", n)
	}
}

// RenderRuler renders bar numbers above the roll. tickAt maps a column to
// the scene tick under its left edge.
func RenderRuler(width int, ticksPerBeat, beatsPerBar int, tickAt func(col int) float64, th *theme.Theme) string {
	if ticksPerBeat <= 0 || beatsPerBar <= 0 {
		return strings.Repeat(" ", width)
	}
	bar := float64(ticksPerBeat * beatsPerBar)
	row := []rune(strings.Repeat(" ", width))
	for col := 0; col < width; col++ {
		l, r := tickAt(col), tickAt(col+1)
		n := int(math.Ceil(l / bar))
		if n < 0 || float64(n)*bar >= r {
			continue
		}
		label := []rune(fmt.Sprint(n + 1))
		if col+len(label) > width {
			break
		}
		copy(row[col:], label)
		col += len(label)
	}
	return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(row))
}

// RenderLegendItem renders a single legend item: "█ Name"
func RenderLegendItem(color lipgloss.Color, name string) string {
	return lipgloss.NewStyle().Foreground(color).Render("█") + " " + name
}

// RenderLegend renders the note category key.
func RenderLegend(th *theme.Theme) string {
	return strings.Join([]string{
		RenderLegendItem(th.Note(), "note"),
		RenderLegendItem(th.Drum(), "drum"),
		RenderLegendItem(th.Selected(), "selected"),
		RenderLegendItem(th.Cursor(), "playback"),
	}, "  ")
}

// RenderMenu renders a bordered context menu with the highlighted item
// marked.
func RenderMenu(items []string, highlight int, th *theme.Theme) string {
	normal := lipgloss.NewStyle().Foreground(th.FG()).Padding(0, 1)
	active := normal.Foreground(th.BG()).Background(th.Accent())
	var lines []string
	for i, it := range items {
		if i == highlight {
			lines = append(lines, active.Render(it))
		} else {
			lines = append(lines, normal.Render(it))
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent()).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
