package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Cylinder is an infinite cylinder of radius R around the z axis.
type Cylinder struct {
	R float64
}

// NewCylinder returns an infinite cylinder of radius r.
func NewCylinder(r float64) *Cylinder {
	return &Cylinder{R: r}
}

func (c *Cylinder) Evaluate(p v3.Vec) float64 {
	return math.Hypot(p.X, p.Y) - c.R
}

func (c *Cylinder) ApproxValue(p v3.Vec, _ float64) float64 {
	return c.Evaluate(p)
}

func (c *Cylinder) Normal(p v3.Vec) v3.Vec {
	return gradient(c.Evaluate, p)
}

func (c *Cylinder) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -c.R, Y: -c.R, Z: negInf},
		Max: v3.Vec{X: c.R, Y: c.R, Z: inf},
	}
}

// Cone is an infinite double cone around the z axis with its apex at
// z = Offset. The radius at height z is Slope·|z - Offset|.
type Cone struct {
	Slope  float64
	Offset float64

	norm float64
	bbox sdf.Box3
}

// NewCone returns an unbounded cone.
func NewCone(slope, offset float64) *Cone {
	return &Cone{
		Slope:  slope,
		Offset: offset,
		norm:   math.Sqrt(1 + slope*slope),
		bbox:   InfiniteBox(),
	}
}

// Bounded returns a copy of c reporting box b as its bounding box. The
// caller guarantees b encloses the part of the cone it intends to keep,
// typically because c is intersected with a slab.
func (c *Cone) Bounded(b sdf.Box3) *Cone {
	cc := *c
	cc.bbox = b
	return &cc
}

// Evaluate divides the radial gap by sqrt(1+slope²), the distance to the
// slanted surface along its normal.
func (c *Cone) Evaluate(p v3.Vec) float64 {
	return (math.Hypot(p.X, p.Y) - c.Slope*math.Abs(p.Z-c.Offset)) / c.norm
}

func (c *Cone) ApproxValue(p v3.Vec, _ float64) float64 {
	return c.Evaluate(p)
}

func (c *Cone) Normal(p v3.Vec) v3.Vec {
	return gradient(c.Evaluate, p)
}

func (c *Cone) BoundingBox() sdf.Box3 {
	return c.bbox
}
