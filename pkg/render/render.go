// Package render draws implicit surfaces by sphere tracing. A Renderer owns
// a view transform, a fixed light and an optional scene root; Draw fills a
// 4-byte-per-pixel buffer with the step count and a shaded grey level.
package render

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/sdftrace/pkg/implicit"
)

const (
	DefaultEpsilon       = 0.003
	DefaultMaxDistance   = 100.0
	DefaultMaxIterations = 255
)

var (
	// ErrBufferTooSmall is returned when the pixel buffer holds fewer than
	// width*height*4 bytes.
	ErrBufferTooSmall = errors.New("render: buffer too small")
	// ErrBadSize is returned for a non-positive width or height.
	ErrBadSize = errors.New("render: width and height must be positive")
)

// Camera frame in view space.
var (
	cameraOrigin = v3.Vec{X: 0, Y: 0, Z: -2}
	cameraFront  = v3.Vec{X: 0, Y: 0, Z: 1}
	cameraRight  = v3.Vec{X: 1, Y: 0, Z: 0}
	cameraDown   = v3.Vec{X: 0, Y: -1, Z: 0}
	defaultLight = v3.Vec{X: -2.0 / 3, Y: 2.0 / 3, Z: -1.0 / 3}
)

// Renderer traces a scene through an accumulated view transform.
// It is safe for concurrent use: Draw works on a snapshot of the view and
// root taken when it starts.
type Renderer struct {
	mu   sync.RWMutex
	view sdf.M44
	root implicit.Surface

	light   v3.Vec
	params  Params
	workers int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEpsilon sets the hit threshold.
func WithEpsilon(eps float64) Option {
	return func(r *Renderer) {
		if eps > 0 {
			r.params.Epsilon = eps
		}
	}
}

// WithMaxDistance sets the escape distance.
func WithMaxDistance(d float64) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.params.MaxDistance = d
		}
	}
}

// WithMaxIterations sets the step cap, clamped to [2, 255].
func WithMaxIterations(n int) Option {
	return func(r *Renderer) {
		r.params.MaxIterations = min(max(n, 2), 255)
	}
}

// WithWorkers sets how many rows are traced at once.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLight sets the light direction in view space.
func WithLight(dir v3.Vec) Option {
	return func(r *Renderer) {
		if dir.Length() > 0 {
			r.light = dir.Normalize()
		}
	}
}

// New returns a Renderer with an identity view and no scene.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		view:    sdf.Identity3d(),
		light:   defaultLight.Normalize(),
		params:  DefaultParams(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Params returns the march bounds used by Draw.
func (r *Renderer) Params() Params {
	return r.params
}

// SetObject replaces the scene root; nil clears it. The view is kept.
func (r *Renderer) SetObject(s implicit.Surface) {
	r.mu.Lock()
	r.root = s
	r.mu.Unlock()
}

// Object returns the current scene root.
func (r *Renderer) Object() implicit.Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// View returns the accumulated view transform.
func (r *Renderer) View() sdf.M44 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// ResetView restores the identity view.
func (r *Renderer) ResetView() {
	r.mu.Lock()
	r.view = sdf.Identity3d()
	r.mu.Unlock()
}

// RotateFromScreen applies a drag of (dx, dy) radians: dy turns about x,
// then dx about y, composed after the current view.
func (r *Renderer) RotateFromScreen(dx, dy float64) {
	r.mu.Lock()
	r.view = r.view.Mul(sdf.RotateY(dx).Mul(sdf.RotateX(dy)))
	r.mu.Unlock()
}

// TranslateFromScreen pans the view by (dx, dy) screen units.
func (r *Renderer) TranslateFromScreen(dx, dy float64) {
	r.mu.Lock()
	r.view = r.view.Mul(sdf.Translate3d(v3.Vec{X: -dx, Y: dy, Z: 0}))
	r.mu.Unlock()
}

// camera is the per-frame state shared by every ray.
type camera struct {
	origin, front, right, down, light v3.Vec

	scale         float64
	width, height int
	originValue   float64
	params        Params
}

func (r *Renderer) camera(view sdf.M44, root implicit.Surface, width, height int) *camera {
	c := &camera{
		origin: view.MulPosition(cameraOrigin),
		front:  direction(view, cameraFront),
		right:  direction(view, cameraRight),
		down:   direction(view, cameraDown),
		light:  direction(view, r.light).Normalize(),
		scale:  1 / float64(min(width, height)),
		width:  width,
		height: height,
		params: r.params,
	}
	c.originValue = root.ApproxValue(c.origin, c.params.Epsilon)
	return c
}

// direction transforms a vector by the linear part of m.
func direction(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v).Sub(m.MulPosition(v3.Vec{}))
}

// ray returns the primary ray through pixel (x, y).
func (c *camera) ray(x, y int) Ray {
	u := (float64(x) - float64(c.width)/2) * c.scale
	v := (float64(y) - float64(c.height)/2) * c.scale
	return Ray{
		Origin: c.origin,
		Dir:    c.front.Add(c.right.MulScalar(u)).Add(c.down.MulScalar(v)),
	}
}

// shade returns the brightness of a hit: the cosine between the surface
// normal and the light, 0 when facing away.
func (c *camera) shade(root implicit.Surface, p v3.Vec) float64 {
	b := root.Normal(p).Dot(c.light)
	if b < 0 || math.IsNaN(b) {
		return 0
	}
	return math.Min(b, 1)
}

// traceRow fills row y. row holds exactly width pixels.
func (c *camera) traceRow(root implicit.Surface, row []byte, y int) {
	for x := 0; x < c.width; x++ {
		px := row[x*4 : x*4+4]
		h := CastRay(root, c.ray(x, y), c.originValue, c.params)
		grey := byte(0)
		if h.Hit {
			b := c.shade(root, h.Point)
			grey = byte(math.Round(255 * b * b))
		}
		px[0] = byte(h.Iterations)
		px[1] = grey
		px[2] = grey
	}
}

// Draw renders the current scene into buf, row-major, 4 bytes per pixel:
// byte 0 is the step count (MaxIterations for a miss), bytes 1 and 2 the
// squared brightness scaled to 0..255. Byte 3 is not written. With no
// scene the buffer is left untouched.
func (r *Renderer) Draw(buf []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrBadSize
	}
	if len(buf) < width*height*4 {
		return ErrBufferTooSmall
	}

	r.mu.RLock()
	view, root := r.view, r.root
	r.mu.RUnlock()
	if root == nil {
		return nil
	}

	cam := r.camera(view, root, width, height)
	stride := width * 4

	var g errgroup.Group
	g.SetLimit(r.workers)
	for y := 0; y < height; y++ {
		row := buf[y*stride : (y+1)*stride]
		g.Go(func() error {
			cam.traceRow(root, row, y)
			return nil
		})
	}
	return g.Wait()
}

// Trace casts the primary ray through pixel (x, y) of a width×height frame
// using the current view and scene. It reports a miss when there is no
// scene.
func (r *Renderer) Trace(x, y, width, height int) (Hit, error) {
	if width <= 0 || height <= 0 {
		return Hit{}, ErrBadSize
	}
	r.mu.RLock()
	view, root := r.view, r.root
	r.mu.RUnlock()
	if root == nil {
		return Hit{Iterations: r.params.MaxIterations}, nil
	}
	cam := r.camera(view, root, width, height)
	return CastRay(root, cam.ray(x, y), cam.originValue, cam.params), nil
}
