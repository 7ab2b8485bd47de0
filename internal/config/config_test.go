package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"flat fov", func(c *Config) { c.FOV = 180 }},
		{"far before near", func(c *Config) { c.Far = c.Near / 2 }},
		{"no diameter", func(c *Config) { c.Diameter = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"unknown format", func(c *Config) { c.Format = "gif" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyPreset("9:16"); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("expected 720x1280, got %dx%d", cfg.Width, cfg.Height)
	}
	if err := cfg.ApplyPreset("3:2"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := Default()
	cfg.Params = "loop=true, acc=true"
	cfg.FPS = 24
	cfg.Format = FormatAPNG
	if err := WriteFile(path, cfg); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := Default()
	if err := LoadFile(path, &got); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got.Params != cfg.Params || got.FPS != 24 || got.Format != FormatAPNG {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte("fps = 60\nhud = false\n"), 0644)

	cfg := Default()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 60 || cfg.HUD {
		t.Errorf("file values not applied: fps=%d hud=%v", cfg.FPS, cfg.HUD)
	}
	if cfg.Width != 1280 {
		t.Errorf("untouched values should keep defaults, width=%d", cfg.Width)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), &cfg); err != nil {
		t.Errorf("missing file should not be an error: %v", err)
	}
}
