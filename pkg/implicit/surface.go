// Package implicit defines the signed distance field object model: leaf
// primitives, boolean combinators and spatial wrappers that compose into an
// immutable tree. Every Surface also satisfies sdf.SDF3 from
// github.com/deadsy/sdfx, so the sdfx renderers can consume a tree directly.
//
// Trees are built once and never mutated; a node may be shared by several
// parents, which makes the tree a DAG but never a cycle.
package implicit

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ sdf.SDF3 = (Surface)(nil)

var (
	// ErrNoChildren is returned by combinators and wrappers given nothing to wrap.
	ErrNoChildren = errors.New("implicit: no child surfaces")
	// ErrBadScale is returned when a scale factor is not strictly positive.
	ErrBadScale = errors.New("implicit: scale factors must be > 0")
	// ErrBadWarp is returned for a bend width or twist height that cannot
	// define a warp.
	ErrBadWarp = errors.New("implicit: invalid warp parameter")
)

// Surface is an implicit solid: negative inside, positive outside.
type Surface interface {
	// Evaluate returns the signed distance estimate at p.
	Evaluate(p v3.Vec) float64
	// BoundingBox returns a conservative axis-aligned box. Extents may be
	// infinite, and an empty box has Min > Max.
	BoundingBox() sdf.Box3
	// ApproxValue is a cheaper estimate for marching. When p is further than
	// slack from the bounding box, the box distance may be returned instead
	// of the field value; it never exceeds the true distance.
	ApproxValue(p v3.Vec, slack float64) float64
	// Normal returns the unit outward normal at p.
	Normal(p v3.Vec) v3.Vec
}

// Lipschitzer is implemented by surfaces whose field can change faster than
// one unit per unit of movement.
type Lipschitzer interface {
	Lipschitz() float64
}

// maxWarpLipschitz caps the bound reported by nonlinear warps.
const maxWarpLipschitz = 4.0

// LipschitzBound returns the Lipschitz constant of s, 1 for plain fields.
func LipschitzBound(s Surface) float64 {
	if l, ok := s.(Lipschitzer); ok {
		if k := l.Lipschitz(); k > 1 {
			return k
		}
	}
	return 1
}

// Axis selects one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// component returns the coordinate of v along a.
func component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// normalStep is the finite difference step used by gradient.
const normalStep = 1e-4

// gradient estimates the normalized gradient of f at p by central differences.
func gradient(f func(v3.Vec) float64, p v3.Vec) v3.Vec {
	dx := v3.Vec{X: normalStep}
	dy := v3.Vec{Y: normalStep}
	dz := v3.Vec{Z: normalStep}
	g := v3.Vec{
		X: f(p.Add(dx)) - f(p.Sub(dx)),
		Y: f(p.Add(dy)) - f(p.Sub(dy)),
		Z: f(p.Add(dz)) - f(p.Sub(dz)),
	}
	l := g.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{Z: 1}
	}
	return g.DivScalar(l)
}
