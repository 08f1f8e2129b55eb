package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/apexscroll/internal/overlay"
	"github.com/ivlev/apexscroll/internal/renderer"
	"github.com/ivlev/apexscroll/internal/source"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

const (
	SourceFolder = "folder"
	SourcePDF    = "pdf"
)

type Config struct {
	Frames     FramesConfig  `yaml:"frames"`
	Surface    SurfaceConfig `yaml:"surface"`
	Scroll     ScrollConfig  `yaml:"scroll"`
	Phases     []PhaseConfig `yaml:"phases,omitempty"`
	Preview    PreviewConfig `yaml:"preview"`
	BookingURL string        `yaml:"booking_url"`

	BuildVersion string `yaml:"-"`
}

type FramesConfig struct {
	Count   int    `yaml:"count"`
	Folder  string `yaml:"folder"`
	Prefix  string `yaml:"prefix"`
	Ext     string `yaml:"ext"`
	Source  string `yaml:"source"`
	PDFPath string `yaml:"pdf_path"`
	DPI     int    `yaml:"dpi"`
	Workers int    `yaml:"workers"`
}

type SurfaceConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	PixelRatio    float64 `yaml:"pixel_ratio"`
	Interpolation string  `yaml:"interpolation"`
}

// ScrollConfig sizes the scroll region in viewport heights
type ScrollConfig struct {
	RegionScreens float64 `yaml:"region_screens"`
}

// PhaseConfig overrides one of the default phases. Empty fields keep the
// default for that phase.
type PhaseConfig struct {
	ID      string              `yaml:"id"`
	Opacity []renderer.Keyframe `yaml:"opacity,omitempty"`
	Offset  []renderer.Keyframe `yaml:"offset,omitempty"`
	Axis    string              `yaml:"axis,omitempty"`
	Kicker  string              `yaml:"kicker,omitempty"`
	Title   string              `yaml:"title,omitempty"`
	Lines   []string            `yaml:"lines,omitempty"`
}

type PreviewConfig struct {
	FPS         int     `yaml:"fps"`
	Duration    float64 `yaml:"duration"`
	OutputDir   string  `yaml:"output_dir"`
	OutputVideo string  `yaml:"output_video"`
	Script      string  `yaml:"script"`
	Quality     int     `yaml:"quality"`
	Encoder     string  `yaml:"encoder"`
	ShowStats   bool    `yaml:"stats"`
}

func Default() *Config {
	seq := source.DefaultSequence()
	return &Config{
		Frames: FramesConfig{
			Count:   seq.Count,
			Folder:  seq.Folder,
			Prefix:  seq.Prefix,
			Ext:     seq.Ext,
			Source:  SourceFolder,
			DPI:     150,
			Workers: runtime.NumCPU(),
		},
		Surface: SurfaceConfig{
			Width:         1280,
			Height:        720,
			PixelRatio:    1,
			Interpolation: "bilinear",
		},
		Scroll: ScrollConfig{RegionScreens: 6},
		Preview: PreviewConfig{
			FPS:      30,
			Duration: 12,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg as YAML
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sequence is the asset naming of the folder source
func (c *Config) Sequence() source.Sequence {
	return source.Sequence{
		Count:  c.Frames.Count,
		Folder: c.Frames.Folder,
		Prefix: c.Frames.Prefix,
		Ext:    c.Frames.Ext,
	}
}

// RegionHeight is the scroll region height in logical pixels
func (c *Config) RegionHeight() float64 {
	return c.Scroll.RegionScreens * c.Surface.Height
}

// OverlayPhases merges the configured overrides into the default schedule
func (c *Config) OverlayPhases() ([]overlay.Phase, error) {
	phases := overlay.DefaultPhases()
	seen := make(map[overlay.PhaseID]bool)

	for _, pc := range c.Phases {
		id, err := overlay.ParsePhaseID(pc.ID)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("phase %s configured twice", id)
		}
		seen[id] = true

		ph := &phases[id]
		if len(pc.Opacity) > 0 {
			ph.Opacity = renderer.Curve(pc.Opacity)
		}
		if len(pc.Offset) > 0 {
			ph.Offset = renderer.Curve(pc.Offset)
		}
		if pc.Axis != "" {
			if ph.Axis, err = overlay.ParseAxis(pc.Axis); err != nil {
				return nil, fmt.Errorf("phase %s: %w", id, err)
			}
		}
		if pc.Kicker != "" {
			ph.Kicker = pc.Kicker
		}
		if pc.Title != "" {
			ph.Title = pc.Title
		}
		if pc.Lines != nil {
			ph.Lines = pc.Lines
		}
	}
	return phases, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Frames.Count <= 0:
		return fmt.Errorf("%w: frames.count must be positive, got %d", ErrInvalid, c.Frames.Count)
	case c.Frames.Workers <= 0:
		return fmt.Errorf("%w: frames.workers must be positive, got %d", ErrInvalid, c.Frames.Workers)
	case c.Surface.Width <= 0 || c.Surface.Height <= 0:
		return fmt.Errorf("%w: surface size %gx%g", ErrInvalid, c.Surface.Width, c.Surface.Height)
	case c.Surface.PixelRatio <= 0:
		return fmt.Errorf("%w: surface.pixel_ratio must be positive, got %g", ErrInvalid, c.Surface.PixelRatio)
	case c.Scroll.RegionScreens < 1:
		return fmt.Errorf("%w: scroll.region_screens must be at least 1, got %g", ErrInvalid, c.Scroll.RegionScreens)
	case c.Preview.FPS <= 0:
		return fmt.Errorf("%w: preview.fps must be positive, got %d", ErrInvalid, c.Preview.FPS)
	case c.Preview.Duration <= 0:
		return fmt.Errorf("%w: preview.duration must be positive, got %g", ErrInvalid, c.Preview.Duration)
	}

	switch c.Frames.Source {
	case SourceFolder:
		if c.Frames.Prefix == "" || c.Frames.Ext == "" {
			return fmt.Errorf("%w: frames.prefix and frames.ext are required", ErrInvalid)
		}
	case SourcePDF:
		if c.Frames.PDFPath == "" {
			return fmt.Errorf("%w: frames.pdf_path is required for the pdf source", ErrInvalid)
		}
		if c.Frames.DPI <= 0 {
			return fmt.Errorf("%w: frames.dpi must be positive, got %d", ErrInvalid, c.Frames.DPI)
		}
	default:
		return fmt.Errorf("%w: unknown frames.source %q", ErrInvalid, c.Frames.Source)
	}

	phases, err := c.OverlayPhases()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := overlay.NewController(phases); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
