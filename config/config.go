package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-pianoroll/pianoroll"
)

// MaxRecentFiles bounds UIConfig.RecentFiles.
const MaxRecentFiles = 10

// RollConfig holds editor geometry and edit steps. Pixel values are
// terminal cells.
type RollConfig struct {
	KeyHeight     float64 `json:"keyHeight,omitempty"`
	EdgeTolerance float64 `json:"edgeTolerance,omitempty"`
	QuantizeGrid  int     `json:"quantizeGrid,omitempty"`
	ZoomFactor    float64 `json:"zoomFactor,omitempty"`
	MinRowPixels  float64 `json:"minRowPixels,omitempty"`
	CursorPixels  float64 `json:"cursorPixels,omitempty"`
	NudgeTicks    int     `json:"nudgeTicks,omitempty"` // arrow-key move and ,/. resize step
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette     string   `json:"palette,omitempty"` // path to a .gpl file, empty for the built-in palette
	LastFile    string   `json:"lastFile,omitempty"`
	RecentFiles []string `json:"recentFiles,omitempty"`
	ShowHelp    bool     `json:"showHelp"`
}

// TransportConfig controls the playback position feed.
type TransportConfig struct {
	IntervalMS int `json:"intervalMs,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Roll      RollConfig      `json:"roll"`
	UI        UIConfig        `json:"ui,omitempty"`
	Transport TransportConfig `json:"transport,omitempty"`
}

// DefaultConfig returns a config with sensible defaults for a terminal
func DefaultConfig() *Config {
	return &Config{
		Roll: RollConfig{
			KeyHeight:     pianoroll.DefaultKeyHeight,
			EdgeTolerance: 1,
			QuantizeGrid:  pianoroll.DefaultQuantizeGrid,
			ZoomFactor:    1.2,
			MinRowPixels:  1,
			CursorPixels:  1,
			NudgeTicks:    pianoroll.DefaultQuantizeGrid,
		},
		UI: UIConfig{
			ShowHelp: true,
		},
		Transport: TransportConfig{
			IntervalMS: 100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("find home directory"))
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults;
// a missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("read config", fmt.Sprintf("Could not read %s.", path)))
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("decode config", fmt.Sprintf("%s is not valid JSON.", path)))
	}
	cfg.fill()
	return cfg, nil
}

// fill replaces zero or nonsensical values with defaults.
func (c *Config) fill() {
	d := DefaultConfig()
	if c.Roll.KeyHeight <= 0 {
		c.Roll.KeyHeight = d.Roll.KeyHeight
	}
	if c.Roll.EdgeTolerance <= 0 {
		c.Roll.EdgeTolerance = d.Roll.EdgeTolerance
	}
	if c.Roll.QuantizeGrid <= 0 {
		c.Roll.QuantizeGrid = d.Roll.QuantizeGrid
	}
	if c.Roll.ZoomFactor <= 1 {
		c.Roll.ZoomFactor = d.Roll.ZoomFactor
	}
	if c.Roll.MinRowPixels <= 0 {
		c.Roll.MinRowPixels = d.Roll.MinRowPixels
	}
	if c.Roll.CursorPixels <= 0 {
		c.Roll.CursorPixels = d.Roll.CursorPixels
	}
	if c.Roll.NudgeTicks <= 0 {
		c.Roll.NudgeTicks = d.Roll.NudgeTicks
	}
	if c.Transport.IntervalMS <= 0 {
		c.Transport.IntervalMS = d.Transport.IntervalMS
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write config", fmt.Sprintf("Could not write %s.", path)))
	}
	return nil
}

// Editor returns the editor configuration for these settings.
func (c *Config) Editor() pianoroll.Config {
	cfg := pianoroll.DefaultConfig()
	cfg.KeyHeight = c.Roll.KeyHeight
	cfg.EdgeTolerance = c.Roll.EdgeTolerance
	cfg.QuantizeGrid = c.Roll.QuantizeGrid
	cfg.View.ZoomFactor = c.Roll.ZoomFactor
	cfg.View.MinRowPixels = c.Roll.MinRowPixels
	cfg.View.CursorPixels = c.Roll.CursorPixels
	return cfg
}

// Interval is the playback position feed interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Transport.IntervalMS) * time.Millisecond
}

// AddRecent moves path to the front of the recent files list and records
// it as the last file.
func (c *Config) AddRecent(path string) {
	if path == "" {
		return
	}
	c.UI.LastFile = path
	c.UI.RecentFiles = slices.DeleteFunc(c.UI.RecentFiles, func(p string) bool { return p == path })
	c.UI.RecentFiles = append([]string{path}, c.UI.RecentFiles...)
	if len(c.UI.RecentFiles) > MaxRecentFiles {
		c.UI.RecentFiles = c.UI.RecentFiles[:MaxRecentFiles]
	}
}
