package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileName is the defaults file looked up in the working directory
const FileName = "flycam.toml"

type Config struct {
	KeyframePath string  `toml:"keyframes"`
	KeyframeDir  string  `toml:"keyframe_dir"`
	Params       string  `toml:"params"`
	Diameter     float64 `toml:"diameter"`

	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	FOV    float64 `toml:"fov"`
	Near   float64 `toml:"near"`
	Far    float64 `toml:"far"`

	FPS          int     `toml:"fps"`
	Duration     float64 `toml:"duration"`
	Workers      int     `toml:"workers"`
	OutputPath   string  `toml:"output"`
	Format       string  `toml:"format"`
	Backdrop     string  `toml:"backdrop"`
	HUD          bool    `toml:"hud"`
	QRStamp      bool    `toml:"qr"`
	FadeDuration float64 `toml:"fade"`
	VideoEncoder string  `toml:"encoder"`
	Quality      int     `toml:"quality"`

	ShowStats    bool   `toml:"stats"`
	Verbose      bool   `toml:"verbose"`
	BuildVersion string `toml:"-"`
}

// Output formats
const (
	FormatPNG  = "png"
	FormatAPNG = "apng"
	FormatMP4  = "mp4"
)

// Default returns the built-in settings
func Default() Config {
	return Config{
		Params:   "loop=false, acc=false",
		Diameter: 3,
		Width:    1280,
		Height:   720,
		FOV:      60,
		Near:     0.01,
		Far:      1000,
		FPS:      30,
		Format:   FormatPNG,
		HUD:      true,
	}
}

// ApplyPreset sets the viewport size for a named aspect preset
func (c *Config) ApplyPreset(preset string) error {
	switch preset {
	case "":
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	case "1:1":
		c.Width, c.Height = 1080, 1080
	default:
		return fmt.Errorf("unknown preset %q", preset)
	}
	return nil
}

// Validate checks the settings that would break rendering
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid viewport %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov must be in (0,180) degrees, got %v", c.FOV))
	}
	if c.Near <= 0 || c.Far <= c.Near {
		errs = append(errs, fmt.Errorf("invalid clip planes near=%v far=%v", c.Near, c.Far))
	}
	if c.Diameter <= 0 {
		errs = append(errs, fmt.Errorf("diameter must be positive, got %v", c.Diameter))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %v", c.Duration))
	}
	switch c.Format {
	case FormatPNG, FormatAPNG, FormatMP4:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Format))
	}
	return errors.Join(errs...)
}

// LoadFile overlays the settings found in a TOML file onto c. A missing
// file is not an error.
func LoadFile(path string, c *Config) error {
	_, err := toml.DecodeFile(path, c)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// WriteFile stores c as TOML
func WriteFile(path string, c Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
