// Package config loads render and export settings from TOML.
//
//	width = 640
//	height = 480
//
//	[render]
//	epsilon = 0.003
//	max_distance = 100.0
//	max_iterations = 255
//	workers = 0          # 0 means one per CPU
//
//	[view]
//	rotate = [0.0, 0.0]  # screen drag in radians (dx, dy)
//	translate = [0.0, 0.0]
//
//	[mesh]
//	cells = 200
//	extent = 10.0
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Render holds sphere tracing bounds.
type Render struct {
	Epsilon       float64 `toml:"epsilon"`
	MaxDistance   float64 `toml:"max_distance"`
	MaxIterations int     `toml:"max_iterations"`
	Workers       int     `toml:"workers"`
}

// View holds the initial camera gestures.
type View struct {
	Rotate    [2]float64 `toml:"rotate"`
	Translate [2]float64 `toml:"translate"`
}

// Mesh holds marching cubes export settings.
type Mesh struct {
	Cells  int     `toml:"cells"`
	Extent float64 `toml:"extent"`
}

// Config is the full settings file.
type Config struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Render Render `toml:"render"`
	View   View   `toml:"view"`
	Mesh   Mesh   `toml:"mesh"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Width:  640,
		Height: 480,
		Render: Render{
			Epsilon:       0.003,
			MaxDistance:   100,
			MaxIterations: 255,
		},
		Mesh: Mesh{
			Cells:  200,
			Extent: 10,
		},
	}
}

// Decode reads TOML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: image size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Render.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("config: render.epsilon must be positive"))
	}
	if c.Render.MaxDistance <= c.Render.Epsilon {
		errs = append(errs, fmt.Errorf("config: render.max_distance must exceed epsilon"))
	}
	if c.Render.MaxIterations < 2 || c.Render.MaxIterations > 255 {
		errs = append(errs, fmt.Errorf("config: render.max_iterations must be in [2, 255]"))
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("config: render.workers must not be negative"))
	}
	if c.Mesh.Cells <= 0 || c.Mesh.Extent <= 0 {
		errs = append(errs, fmt.Errorf("config: mesh cells and extent must be positive"))
	}
	return errors.Join(errs...)
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
