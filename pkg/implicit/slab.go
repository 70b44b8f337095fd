package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Slab is the region |p[Axis]| <= HalfWidth, unbounded along the other
// two axes.
type Slab struct {
	Axis      Axis
	HalfWidth float64
}

// NewSlab returns a slab of total thickness 2·halfWidth across axis.
func NewSlab(axis Axis, halfWidth float64) *Slab {
	return &Slab{Axis: axis, HalfWidth: halfWidth}
}

func (s *Slab) Evaluate(p v3.Vec) float64 {
	return math.Abs(component(p, s.Axis)) - s.HalfWidth
}

func (s *Slab) ApproxValue(p v3.Vec, _ float64) float64 {
	return s.Evaluate(p)
}

func (s *Slab) Normal(p v3.Vec) v3.Vec {
	var n v3.Vec
	sign := 1.0
	if component(p, s.Axis) < 0 {
		sign = -1
	}
	switch s.Axis {
	case AxisX:
		n.X = sign
	case AxisY:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}

func (s *Slab) BoundingBox() sdf.Box3 {
	b := InfiniteBox()
	switch s.Axis {
	case AxisX:
		b.Min.X, b.Max.X = -s.HalfWidth, s.HalfWidth
	case AxisY:
		b.Min.Y, b.Max.Y = -s.HalfWidth, s.HalfWidth
	default:
		b.Min.Z, b.Max.Z = -s.HalfWidth, s.HalfWidth
	}
	return b
}
