package config

import (
	"os"
	"path/filepath"
	"testing"

	"livesub/internal/audio"
	"livesub/internal/subtitle"
)

func newTestConfig(t *testing.T) (*Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	return NewAt(path), path
}

func TestDefaults(t *testing.T) {
	c, _ := newTestConfig(t)

	if got := c.ModelID(); got != "base" {
		t.Errorf("model = %q, want %q", got, "base")
	}
	if got := c.ServerURL(); got != "http://localhost:5001" {
		t.Errorf("server = %q", got)
	}
	if !c.OverlayVisible() || !c.UseMicrophone() || !c.NotificationsEnabled() {
		t.Error("overlay, microphone and notifications should default to on")
	}
	if c.DebugMode() {
		t.Error("debug mode should default to off")
	}
	pos, size := c.OverlayBounds()
	if pos != DefaultPosition || size != DefaultSize {
		t.Errorf("bounds = %+v %+v", pos, size)
	}
	if c.SubtitleStyle() != subtitle.DefaultStyle() {
		t.Errorf("style = %+v", c.SubtitleStyle())
	}
	if got := c.Hotkeys().ToggleTranslation.Display(); got != "Ctrl+Shift+T" {
		t.Errorf("toggle translation = %q", got)
	}
	if c.Source() != nil {
		t.Error("source should be unset")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	c, path := newTestConfig(t)

	style := subtitle.DefaultStyle()
	style.FontSize = 32
	style.Opacity = 0.5

	c.SetModelID("small")
	c.SetOverlayVisible(false)
	c.SetOverlayBounds(Point{X: 10, Y: 20}, Size{Width: 640, Height: 90})
	c.SetSubtitleStyle(style)
	c.SetUseMicrophone(false)
	c.SetSource(&audio.Source{ID: "alsa/monitor", Name: "Monitor", Kind: audio.KindDesktop})
	c.SetDebugMode(true)
	c.SetNotifications(false)
	c.SetHotkey(ActionToggleOverlay, HotkeyConfig{Modifiers: []Modifier{ModAlt}, Key: "o"})

	r := NewAt(path)
	if r.ModelID() != "small" {
		t.Errorf("model = %q", r.ModelID())
	}
	if r.OverlayVisible() {
		t.Error("overlay should be hidden")
	}
	pos, size := r.OverlayBounds()
	if pos != (Point{X: 10, Y: 20}) || size != (Size{Width: 640, Height: 90}) {
		t.Errorf("bounds = %+v %+v", pos, size)
	}
	if got := r.SubtitleStyle(); got.FontSize != 32 || got.Opacity != 0.5 {
		t.Errorf("style = %+v", got)
	}
	if r.UseMicrophone() || !r.DebugMode() || r.NotificationsEnabled() {
		t.Error("flags not persisted")
	}
	if src := r.Source(); src == nil || src.ID != "alsa/monitor" || src.Kind != audio.KindDesktop {
		t.Errorf("source = %+v", src)
	}
	if got := r.Hotkeys().ToggleOverlay.String(); got != "alt+o" {
		t.Errorf("toggle overlay = %q", got)
	}
	if got := r.Hotkeys().ExportHistory.Display(); got != "Ctrl+Shift+E" {
		t.Errorf("export = %q", got)
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewAt(path)
	if c.ModelID() != "base" || !c.OverlayVisible() {
		t.Errorf("got model %q visible %v", c.ModelID(), c.OverlayVisible())
	}
}

func TestUnknownModelIgnored(t *testing.T) {
	c, _ := newTestConfig(t)
	c.SetModelID("huge")
	if c.ModelID() != "base" {
		t.Errorf("model = %q", c.ModelID())
	}
}

func TestStyleChangeCallback(t *testing.T) {
	c, _ := newTestConfig(t)

	var got subtitle.Style
	c.OnStyleChange(func(s subtitle.Style) { got = s })

	style := subtitle.DefaultStyle()
	style.Color = "#ffff00"
	c.SetSubtitleStyle(style)

	if got.Color != "#ffff00" {
		t.Errorf("callback style = %+v", got)
	}
}

func TestHistoryDBPath(t *testing.T) {
	c, path := newTestConfig(t)
	want := filepath.Join(filepath.Dir(path), "history.sqlite")
	if got := c.HistoryDB(); got != want {
		t.Errorf("got = %q, want %q", got, want)
	}
}

func TestAvailableKeys(t *testing.T) {
	keys := AvailableKeys()
	if len(keys) != 3+26+12 {
		t.Fatalf("len = %d", len(keys))
	}
	if keys[len(keys)-1] != "f12" {
		t.Errorf("last = %q", keys[len(keys)-1])
	}
}
