package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/pianoroll"
	"go-pianoroll/song"
	"go-pianoroll/theme"
)

func TestPitchLabel(t *testing.T) {
	tests := map[int]string{0: "C-1", 60: "C4", 61: "C#4", 69: "A4", 127: "G9", -1: "", 128: ""}
	for p, want := range tests {
		if got := PitchLabel(p); got != want {
			t.Errorf("PitchLabel(%d) = %q, want %q", p, got, want)
		}
	}
}

func TestRenderGutter(t *testing.T) {
	th := theme.Default()
	lines := RenderGutter([]int{61, 60, 60, -1}, th)
	if len(lines) != 4 {
		t.Fatalf("%d lines", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != GutterWidth {
			t.Errorf("line %d width %d", i, w)
		}
	}
	if !strings.Contains(lines[1], "C4") || strings.Contains(lines[2], "C4") {
		t.Errorf("label placement: %q %q", lines[1], lines[2])
	}
}

func TestRenderRollSize(t *testing.T) {
	doc := song.NewDefault()
	doc.Insert(doc.Default(), song.Note{Pitch: 60, Velocity: 100, Start: 0, End: 480})
	e := pianoroll.New(pianoroll.DefaultConfig(), 40, 12)
	e.SetDocument(doc)
	e.SelectAll()
	e.UpdateCursor(0.5)

	lines := RenderRoll(e.Render(), theme.Default())
	if len(lines) != 12 {
		t.Fatalf("%d lines", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("line %d width %d", i, w)
		}
	}
	if !strings.Contains(strings.Join(lines, "\n"), "▐") {
		t.Error("no note head rendered")
	}
}

func TestRenderRuler(t *testing.T) {
	// one column per beat, four beats per bar
	ruler := RenderRuler(12, 480, 4, func(col int) float64 { return float64(col * 480) }, theme.Default())
	if lipgloss.Width(ruler) != 12 {
		t.Fatalf("width %d", lipgloss.Width(ruler))
	}
	for _, want := range []string{"1", "2", "3"} {
		if !strings.Contains(ruler, want) {
			t.Errorf("ruler %q missing bar %s", ruler, want)
		}
	}
}

func TestRenderMenu(t *testing.T) {
	items := []string{"Delete", "Quantize (1/16)"}
	out := RenderMenu(items, 1, theme.Default())
	for _, it := range items {
		if !strings.Contains(out, it) {
			t.Errorf("menu missing %q", it)
		}
	}
	if lipgloss.Height(out) != len(items)+2 {
		t.Errorf("menu height %d", lipgloss.Height(out))
	}
}
