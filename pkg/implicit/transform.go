package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Translate moves its child by Offset.
type Translate struct {
	child  Surface
	Offset v3.Vec
}

// NewTranslate returns child moved by v.
func NewTranslate(child Surface, v v3.Vec) (*Translate, error) {
	if child == nil {
		return nil, ErrNoChildren
	}
	return &Translate{child: child, Offset: v}, nil
}

func (t *Translate) Evaluate(p v3.Vec) float64 {
	return t.child.Evaluate(p.Sub(t.Offset))
}

func (t *Translate) ApproxValue(p v3.Vec, slack float64) float64 {
	return t.child.ApproxValue(p.Sub(t.Offset), slack)
}

func (t *Translate) Normal(p v3.Vec) v3.Vec {
	return t.child.Normal(p.Sub(t.Offset))
}

func (t *Translate) BoundingBox() sdf.Box3 {
	return TranslateBox(t.child.BoundingBox(), t.Offset)
}

func (t *Translate) Lipschitz() float64 {
	return LipschitzBound(t.child)
}

// Rotate turns its child by Euler angles in radians, applied about x, then
// y, then z.
type Rotate struct {
	child  Surface
	Angles v3.Vec

	m, inv sdf.M44
	bbox   sdf.Box3
}

// NewRotate returns child rotated by angles (radians).
func NewRotate(child Surface, angles v3.Vec) (*Rotate, error) {
	if child == nil {
		return nil, ErrNoChildren
	}
	m := sdf.RotateZ(angles.Z).Mul(sdf.RotateY(angles.Y)).Mul(sdf.RotateX(angles.X))
	r := &Rotate{
		child:  child,
		Angles: angles,
		m:      m,
		inv:    m.Inverse(),
	}
	r.bbox = LinearBox(child.BoundingBox(), rotationRows(m))
	return r, nil
}

// rotationRows extracts the linear part of m as rows by mapping the basis
// vectors, which works because m has no translation.
func rotationRows(m sdf.M44) [3]v3.Vec {
	cx := m.MulPosition(v3.Vec{X: 1})
	cy := m.MulPosition(v3.Vec{Y: 1})
	cz := m.MulPosition(v3.Vec{Z: 1})
	return [3]v3.Vec{
		{X: cx.X, Y: cy.X, Z: cz.X},
		{X: cx.Y, Y: cy.Y, Z: cz.Y},
		{X: cx.Z, Y: cy.Z, Z: cz.Z},
	}
}

func (r *Rotate) Evaluate(p v3.Vec) float64 {
	return r.child.Evaluate(r.inv.MulPosition(p))
}

func (r *Rotate) ApproxValue(p v3.Vec, slack float64) float64 {
	return r.child.ApproxValue(r.inv.MulPosition(p), slack)
}

func (r *Rotate) Normal(p v3.Vec) v3.Vec {
	return r.m.MulPosition(r.child.Normal(r.inv.MulPosition(p)))
}

func (r *Rotate) BoundingBox() sdf.Box3 {
	return r.bbox
}

func (r *Rotate) Lipschitz() float64 {
	return LipschitzBound(r.child)
}

// Scale stretches its child by per-axis Factors. The child field is
// multiplied by the smallest factor so the result stays within the child's
// Lipschitz bound under non-uniform scaling.
type Scale struct {
	child   Surface
	Factors v3.Vec

	minFactor float64
}

// NewScale returns child scaled by f. Every factor must be > 0.
func NewScale(child Surface, f v3.Vec) (*Scale, error) {
	if child == nil {
		return nil, ErrNoChildren
	}
	if !(f.X > 0 && f.Y > 0 && f.Z > 0) {
		return nil, ErrBadScale
	}
	return &Scale{
		child:     child,
		Factors:   f,
		minFactor: math.Min(f.X, math.Min(f.Y, f.Z)),
	}, nil
}

func (s *Scale) local(p v3.Vec) v3.Vec {
	return v3.Vec{X: p.X / s.Factors.X, Y: p.Y / s.Factors.Y, Z: p.Z / s.Factors.Z}
}

func (s *Scale) Evaluate(p v3.Vec) float64 {
	return s.child.Evaluate(s.local(p)) * s.minFactor
}

func (s *Scale) ApproxValue(p v3.Vec, slack float64) float64 {
	return s.child.ApproxValue(s.local(p), slack/s.minFactor) * s.minFactor
}

func (s *Scale) Normal(p v3.Vec) v3.Vec {
	return gradient(s.Evaluate, p)
}

func (s *Scale) BoundingBox() sdf.Box3 {
	return ScaleBox(s.child.BoundingBox(), s.Factors)
}

func (s *Scale) Lipschitz() float64 {
	return LipschitzBound(s.child)
}
