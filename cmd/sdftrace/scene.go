package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/sdftrace/pkg/config"
	"github.com/chazu/sdftrace/pkg/session"
)

// viewFlags are the settings shared by render and watch.
type viewFlags struct {
	width, height int
	rotate        []float64
	translate     []float64
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&v.width, "width", 640, "Image width in pixels")
	cmd.Flags().IntVar(&v.height, "height", 480, "Image height in pixels")
	cmd.Flags().Float64SliceVar(&v.rotate, "rotate", nil, "Initial screen drag dx,dy in radians")
	cmd.Flags().Float64SliceVar(&v.translate, "translate", nil, "Initial screen pan dx,dy")
}

// apply overrides cfg with the flags the user set.
func (v *viewFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = v.width
	}
	if flags.Changed("height") {
		cfg.Height = v.height
	}
	if flags.Changed("rotate") {
		p, err := pair("rotate", v.rotate)
		if err != nil {
			return err
		}
		cfg.View.Rotate = p
	}
	if flags.Changed("translate") {
		p, err := pair("translate", v.translate)
		if err != nil {
			return err
		}
		cfg.View.Translate = p
	}
	return nil
}

func pair(name string, vals []float64) ([2]float64, error) {
	if len(vals) != 2 {
		return [2]float64{}, fmt.Errorf("--%s takes two values dx,dy, got %d", name, len(vals))
	}
	return [2]float64{vals[0], vals[1]}, nil
}

// loadConfig reads --config when given, else the defaults.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// evaluateFile loads a scene file into s. Warnings and echo output go to
// stderr; the first evaluation error is returned.
func evaluateFile(s *session.Session, path string, stderr io.Writer) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scene: %w", err)
	}

	result := s.Evaluate(string(source))
	for _, line := range result.Output {
		fmt.Fprintln(stderr, line)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "%s: warning: %s\n", path, w.Message)
	}
	if !result.OK() {
		e := result.Errors[0]
		if e.Line > 0 {
			return fmt.Errorf("%s:%d: %s", path, e.Line, e.Message)
		}
		return fmt.Errorf("%s: %s", path, e.Message)
	}
	if !result.Scene {
		fmt.Fprintf(stderr, "%s: warning: scene has no solids\n", path)
	}
	return nil
}

// writePNG renders the session into a temporary file next to path and
// renames it into place, so readers never see a partial image.
func writePNG(s *session.Session, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(f.Name())

	if err := s.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
