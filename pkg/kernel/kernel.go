// Package kernel defines the meshing interface used to export implicit
// scenes as triangle meshes. Implementations (sdfx) polygonize a surface
// over a finite export region.
package kernel

import (
	"errors"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/implicit"
)

// ErrEmptyRegion is returned when a surface has nothing to mesh inside the
// export region.
var ErrEmptyRegion = errors.New("kernel: empty export region")

// DefaultExtent is the half-size of the cube that clips unbounded scenes.
const DefaultExtent = 10.0

// Mesher turns an implicit surface into a triangle mesh.
type Mesher interface {
	ToMesh(s implicit.Surface) (*Mesh, error)
}

// ExportRegion clips b to the cube [-extent, extent]³ so infinite scenes
// still have a finite meshing domain.
func ExportRegion(b sdf.Box3, extent float64) (sdf.Box3, error) {
	if implicit.IsEmpty(b) || !(extent > 0) {
		return sdf.Box3{}, ErrEmptyRegion
	}
	clamp := func(lo, hi float64) (float64, float64) {
		return math.Max(lo, -extent), math.Min(hi, extent)
	}
	var out sdf.Box3
	out.Min.X, out.Max.X = clamp(b.Min.X, b.Max.X)
	out.Min.Y, out.Max.Y = clamp(b.Min.Y, b.Max.Y)
	out.Min.Z, out.Max.Z = clamp(b.Min.Z, b.Max.Z)
	if out.Min.X >= out.Max.X || out.Min.Y >= out.Max.Y || out.Min.Z >= out.Max.Z {
		return sdf.Box3{}, ErrEmptyRegion
	}
	return out, nil
}

// Clipped is s intersected with a finite box. It satisfies sdf.SDF3 with a
// bounding box slightly larger than the clip region, so surfaces cut by the
// region come out closed.
type Clipped struct {
	s      implicit.Surface
	region sdf.Box3
	bbox   sdf.Box3
}

// Clip returns s restricted to region.
func Clip(s implicit.Surface, region sdf.Box3) *Clipped {
	size := region.Max.Sub(region.Min)
	pad := math.Max(size.X, math.Max(size.Y, size.Z)) * 0.05
	p := v3.Vec{X: pad, Y: pad, Z: pad}
	return &Clipped{
		s:      s,
		region: region,
		bbox:   sdf.Box3{Min: region.Min.Sub(p), Max: region.Max.Add(p)},
	}
}

func (c *Clipped) Evaluate(p v3.Vec) float64 {
	centre := c.region.Min.Add(c.region.Max).MulScalar(0.5)
	half := c.region.Max.Sub(c.region.Min).MulScalar(0.5)
	d := p.Sub(centre)
	box := math.Max(math.Abs(d.X)-half.X, math.Max(math.Abs(d.Y)-half.Y, math.Abs(d.Z)-half.Z))
	return math.Max(c.s.Evaluate(p), box)
}

func (c *Clipped) BoundingBox() sdf.Box3 {
	return c.bbox
}
