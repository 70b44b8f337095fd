package implicit

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Sphere is a sphere of radius R centered at the origin.
type Sphere struct {
	R float64
}

// NewSphere returns a sphere of radius r.
func NewSphere(r float64) *Sphere {
	return &Sphere{R: r}
}

// Evaluate returns |p| - r.
func (s *Sphere) Evaluate(p v3.Vec) float64 {
	return p.Length() - s.R
}

func (s *Sphere) ApproxValue(p v3.Vec, _ float64) float64 {
	return s.Evaluate(p)
}

// Normal is the normalized position vector; the center has no direction and
// falls back to +z.
func (s *Sphere) Normal(p v3.Vec) v3.Vec {
	l := p.Length()
	if l == 0 {
		return v3.Vec{Z: 1}
	}
	return p.DivScalar(l)
}

func (s *Sphere) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -s.R, Y: -s.R, Z: -s.R},
		Max: v3.Vec{X: s.R, Y: s.R, Z: s.R},
	}
}
