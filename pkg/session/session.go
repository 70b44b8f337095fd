// Package session ties the Lisp engine to the renderer and the mesher:
// source goes in, frames and meshes come out.
package session

import (
	"fmt"
	"image"
	"io"
	"log"

	"github.com/chazu/sdftrace/pkg/config"
	"github.com/chazu/sdftrace/pkg/engine"
	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/kernel"
	"github.com/chazu/sdftrace/pkg/kernel/sdfx"
	"github.com/chazu/sdftrace/pkg/render"
	"github.com/chazu/sdftrace/pkg/tessellate"
)

// Session owns one engine, renderer and mesher configured from a Config.
type Session struct {
	cfg      config.Config
	engine   *engine.Engine
	renderer *render.Renderer
	mesher   kernel.Mesher
}

// Diagnostic is an evaluation error or warning. Line is 0 when unknown.
type Diagnostic struct {
	Line    int
	Col     int
	Message string
}

// Result is what Evaluate reports back to the caller.
type Result struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	// Output holds echo text in call order.
	Output []string
	// Scene is true when the program produced a solid.
	Scene bool
}

// OK reports whether evaluation succeeded.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// New creates a session from cfg. The configured view gestures are applied
// to the renderer before the first frame.
func New(cfg config.Config, opts ...engine.Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		engine: engine.NewEngine(opts...),
		renderer: render.New(
			render.WithEpsilon(cfg.Render.Epsilon),
			render.WithMaxDistance(cfg.Render.MaxDistance),
			render.WithMaxIterations(cfg.Render.MaxIterations),
			render.WithWorkers(cfg.Render.Workers),
		),
		mesher: sdfx.New(
			sdfx.WithCells(cfg.Mesh.Cells),
			sdfx.WithExtent(cfg.Mesh.Extent),
		),
	}
	s.ResetView()
	return s, nil
}

// Config returns the settings the session was built with.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Engine returns the underlying evaluator.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Scene returns the current root, nil when nothing has been evaluated.
func (s *Session) Scene() implicit.Surface {
	return s.renderer.Object()
}

// Evaluate runs source and, when it succeeds, swaps the rendered scene for
// its result. A failed evaluation keeps the previous scene.
func (s *Session) Evaluate(source string) Result {
	result := Result{}

	res, err := s.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Message: w.String()})
	}
	result.Output = res.Output

	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, Diagnostic{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	s.renderer.SetObject(res.Root)
	result.Scene = res.Root != nil
	return result
}

// Rotate forwards a screen drag to the renderer.
func (s *Session) Rotate(dx, dy float64) {
	s.renderer.RotateFromScreen(dx, dy)
}

// Translate forwards a screen pan to the renderer.
func (s *Session) Translate(dx, dy float64) {
	s.renderer.TranslateFromScreen(dx, dy)
}

// ResetView restores the view described by the configuration.
func (s *Session) ResetView() {
	s.renderer.ResetView()
	v := s.cfg.View
	if v.Rotate != [2]float64{} {
		s.renderer.RotateFromScreen(v.Rotate[0], v.Rotate[1])
	}
	if v.Translate != [2]float64{} {
		s.renderer.TranslateFromScreen(v.Translate[0], v.Translate[1])
	}
}

// Frame renders the current scene at the configured size.
func (s *Session) Frame() (*image.RGBA, error) {
	return s.renderer.Frame(s.cfg.Width, s.cfg.Height)
}

// WritePNG renders the current scene and encodes it to w.
func (s *Session) WritePNG(w io.Writer) error {
	img, err := s.Frame()
	if err != nil {
		return err
	}
	return render.WritePNG(w, img)
}

// Export meshes the current scene. With split set, every part of a top
// level union becomes its own mesh.
func (s *Session) Export(name string, split bool) ([]*kernel.Mesh, error) {
	root := s.Scene()
	if root == nil {
		return nil, nil
	}

	if split {
		meshes, err := tessellate.Tessellate(root, s.mesher, name)
		if err != nil {
			log.Printf("Tessellate error: %v", err)
			return nil, fmt.Errorf("tessellation failed: %w", err)
		}
		return meshes, nil
	}

	m, err := s.mesher.ToMesh(root)
	if err != nil {
		log.Printf("Mesh error: %v", err)
		return nil, fmt.Errorf("meshing failed: %w", err)
	}
	m.Name = name
	return []*kernel.Mesh{m}, nil
}
