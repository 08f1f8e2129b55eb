package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/apexscroll/internal/overlay"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apex.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults should validate: %v", err)
	}
	if cfg.Frames.Count != 192 || cfg.Frames.Folder != "/images" {
		t.Errorf("Unexpected frame defaults: %+v", cfg.Frames)
	}
	if got := cfg.Sequence().FramePath(0); got != "/images/ezgif-frame-001.jpg" {
		t.Errorf("Unexpected first path %s", got)
	}
	if cfg.RegionHeight() != 6*720 {
		t.Errorf("Expected region of six screens, got %g", cfg.RegionHeight())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
frames:
  count: 48
  folder: assets/seq
surface:
  pixel_ratio: 2
phases:
  - id: services
    title: WHAT WE DO
    opacity:
      - {at: 0.3, value: 0}
      - {at: 0.4, value: 1, ease: out-quad}
      - {at: 0.6, value: 0}
booking_url: https://apex.example/book
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Frames.Count != 48 || cfg.Frames.Folder != "assets/seq" {
		t.Errorf("Frames not applied: %+v", cfg.Frames)
	}
	if cfg.Frames.Prefix != "ezgif-frame" {
		t.Errorf("Expected prefix default kept, got %q", cfg.Frames.Prefix)
	}
	if cfg.Surface.PixelRatio != 2 || cfg.Surface.Width != 1280 {
		t.Errorf("Surface not merged: %+v", cfg.Surface)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	phases, err := cfg.OverlayPhases()
	if err != nil {
		t.Fatal(err)
	}
	svc := phases[overlay.Services]
	if svc.Title != "WHAT WE DO" || len(svc.Opacity) != 3 || svc.Opacity[1].Ease != "out-quad" {
		t.Errorf("Services override not applied: %+v", svc)
	}
	if len(svc.Lines) != len(overlay.DefaultPhases()[overlay.Services].Lines) {
		t.Error("Expected default lines kept")
	}
	if phases[overlay.Intro].Title != "APEX" {
		t.Error("Intro should stay default")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "frames:\n  cuont: 10\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for misspelled key")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Empty file should give defaults: %v", err)
	}
	if cfg.Frames.Count != 192 {
		t.Errorf("Expected defaults, got %+v", cfg.Frames)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero frames", func(c *Config) { c.Frames.Count = 0 }},
		{"no workers", func(c *Config) { c.Frames.Workers = 0 }},
		{"zero width", func(c *Config) { c.Surface.Width = 0 }},
		{"zero ratio", func(c *Config) { c.Surface.PixelRatio = 0 }},
		{"short region", func(c *Config) { c.Scroll.RegionScreens = 0.5 }},
		{"zero fps", func(c *Config) { c.Preview.FPS = 0 }},
		{"unknown source", func(c *Config) { c.Frames.Source = "video" }},
		{"pdf without path", func(c *Config) { c.Frames.Source = SourcePDF }},
		{"unknown phase", func(c *Config) { c.Phases = []PhaseConfig{{ID: "contact"}} }},
		{"duplicate phase", func(c *Config) { c.Phases = []PhaseConfig{{ID: "intro"}, {ID: "hero"}} }},
		{"bad axis", func(c *Config) { c.Phases = []PhaseConfig{{ID: "intro", Axis: "z"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.BookingURL = "https://apex.example/book"
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if back.BookingURL != cfg.BookingURL || back.Scroll.RegionScreens != 6 {
		t.Errorf("Round trip lost values: %+v", back)
	}
}
