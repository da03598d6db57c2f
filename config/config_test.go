package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Southclaws/fault/ftag"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Roll.QuantizeGrid != 120 || cfg.Transport.IntervalMS != 100 || !cfg.UI.ShowHelp {
		t.Errorf("defaults %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Roll.NudgeTicks = 240
	cfg.UI.Palette = "/tmp/p.gpl"
	cfg.AddRecent("/music/a.mid")
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Roll.NudgeTicks != 240 || got.UI.Palette != "/tmp/p.gpl" || got.UI.LastFile != "/music/a.mid" {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadFromPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"roll": {"quantizeGrid": 240, "zoomFactor": 0.5}, "ui": {"showHelp": false}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Roll.QuantizeGrid != 240 {
		t.Errorf("grid %d", cfg.Roll.QuantizeGrid)
	}
	if cfg.Roll.ZoomFactor != 1.2 || cfg.Roll.KeyHeight != 15 {
		t.Errorf("defaults not kept: %+v", cfg.Roll)
	}
	if cfg.UI.ShowHelp {
		t.Error("showHelp override ignored")
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{roll"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if err == nil || ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("err = %v", err)
	}
}

func TestEditorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Roll.EdgeTolerance = 3
	ed := cfg.Editor()
	if ed.EdgeTolerance != 3 || ed.KeyHeight != 15 || ed.QuantizeGrid != 120 {
		t.Errorf("editor config %+v", ed)
	}
	if ed.View.MinRowPixels != 1 || ed.View.FitMarginTicks != 50 {
		t.Errorf("view config %+v", ed.View)
	}
	if cfg.Interval() != 100*time.Millisecond {
		t.Errorf("interval %v", cfg.Interval())
	}
}

func TestAddRecent(t *testing.T) {
	cfg := DefaultConfig()
	for i := 0; i < MaxRecentFiles+3; i++ {
		cfg.AddRecent(fmt.Sprintf("/f%d.mid", i))
	}
	cfg.AddRecent("/f5.mid")
	if len(cfg.UI.RecentFiles) != MaxRecentFiles {
		t.Fatalf("%d recent files", len(cfg.UI.RecentFiles))
	}
	if cfg.UI.RecentFiles[0] != "/f5.mid" || cfg.UI.RecentFiles[1] != "/f12.mid" {
		t.Errorf("recent %v", cfg.UI.RecentFiles)
	}
	for _, p := range cfg.UI.RecentFiles[1:] {
		if p == "/f5.mid" {
			t.Error("duplicate entry")
		}
	}
}
