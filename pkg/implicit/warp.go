package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Bend wraps a straight design into a ring around the z axis. The design's
// x coordinate becomes arc length on a circle of circumference Width and its
// y coordinate becomes the radial offset from that circle:
//
//	(x, y, z) -> (R·atan2(x, y), sqrt(x²+y²) - R, z),  R = Width/2π
//
// Arc length is stretched by R/r inside the ring, so the field is not
// 1-Lipschitz there; Lipschitz reports the bound over the child's extent.
type Bend struct {
	child Surface
	Width float64

	radius float64
	bbox   sdf.Box3
	lip    float64
}

// NewBend returns child bent into a ring of circumference width.
func NewBend(child Surface, width float64) (*Bend, error) {
	if child == nil {
		return nil, ErrNoChildren
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, ErrBadWarp
	}
	b := &Bend{
		child:  child,
		Width:  width,
		radius: width / (2 * math.Pi),
	}
	cb := child.BoundingBox()
	switch {
	case IsEmpty(cb):
		b.bbox = EmptyBox()
	default:
		b.bbox = InfiniteBox()
		if rmax := b.radius + cb.Max.Y; rmax < 0 {
			b.bbox = EmptyBox()
		} else if !math.IsInf(rmax, 0) {
			b.bbox.Min.X, b.bbox.Max.X = -rmax, rmax
			b.bbox.Min.Y, b.bbox.Max.Y = -rmax, rmax
		}
		b.bbox.Min.Z, b.bbox.Max.Z = cb.Min.Z, cb.Max.Z
	}
	b.lip = maxWarpLipschitz
	if rmin := b.radius + cb.Min.Y; rmin > 0 && !math.IsInf(rmin, 0) {
		b.lip = math.Min(maxWarpLipschitz, math.Max(1, b.radius/rmin))
	}
	b.lip *= LipschitzBound(child)
	return b, nil
}

func (b *Bend) local(p v3.Vec) v3.Vec {
	return v3.Vec{
		X: b.radius * math.Atan2(p.X, p.Y),
		Y: math.Hypot(p.X, p.Y) - b.radius,
		Z: p.Z,
	}
}

func (b *Bend) Evaluate(p v3.Vec) float64 {
	return b.child.Evaluate(b.local(p))
}

func (b *Bend) ApproxValue(p v3.Vec, slack float64) float64 {
	if d, ok := boxShortcut(b.bbox, p, slack); ok {
		return d
	}
	return b.child.ApproxValue(b.local(p), slack)
}

func (b *Bend) Normal(p v3.Vec) v3.Vec {
	return gradient(b.Evaluate, p)
}

func (b *Bend) BoundingBox() sdf.Box3 {
	return b.bbox
}

func (b *Bend) Lipschitz() float64 {
	return b.lip
}

// Twist rotates the xy plane of its child by one full turn per Height
// along z: the query point is turned by -2π·z/Height before delegating.
// Points far from the axis move fastest, so the bound grows with the
// child's radial extent.
type Twist struct {
	child  Surface
	Height float64

	rate float64
	bbox sdf.Box3
	lip  float64
}

// NewTwist returns child twisted once per height.
func NewTwist(child Surface, height float64) (*Twist, error) {
	if child == nil {
		return nil, ErrNoChildren
	}
	if height == 0 || math.IsNaN(height) || math.IsInf(height, 0) {
		return nil, ErrBadWarp
	}
	t := &Twist{
		child:  child,
		Height: height,
		rate:   2 * math.Pi / height,
	}
	cb := child.BoundingBox()
	if IsEmpty(cb) {
		t.bbox = EmptyBox()
		t.lip = LipschitzBound(child)
		return t, nil
	}
	rho := math.Hypot(
		math.Max(math.Abs(cb.Min.X), math.Abs(cb.Max.X)),
		math.Max(math.Abs(cb.Min.Y), math.Abs(cb.Max.Y)),
	)
	t.bbox = InfiniteBox()
	t.bbox.Min.Z, t.bbox.Max.Z = cb.Min.Z, cb.Max.Z
	t.lip = maxWarpLipschitz
	if !math.IsInf(rho, 0) {
		t.bbox.Min.X, t.bbox.Max.X = -rho, rho
		t.bbox.Min.Y, t.bbox.Max.Y = -rho, rho
		t.lip = math.Min(maxWarpLipschitz, math.Sqrt(1+(t.rate*rho)*(t.rate*rho)))
	}
	t.lip *= LipschitzBound(child)
	return t, nil
}

func (t *Twist) local(p v3.Vec) v3.Vec {
	s, c := math.Sincos(t.rate * p.Z)
	return v3.Vec{
		X: p.X*c + p.Y*s,
		Y: -p.X*s + p.Y*c,
		Z: p.Z,
	}
}

func (t *Twist) Evaluate(p v3.Vec) float64 {
	return t.child.Evaluate(t.local(p))
}

func (t *Twist) ApproxValue(p v3.Vec, slack float64) float64 {
	if d, ok := boxShortcut(t.bbox, p, slack); ok {
		return d
	}
	return t.child.ApproxValue(t.local(p), slack)
}

func (t *Twist) Normal(p v3.Vec) v3.Vec {
	return gradient(t.Evaluate, p)
}

func (t *Twist) BoundingBox() sdf.Box3 {
	return t.bbox
}

func (t *Twist) Lipschitz() float64 {
	return t.lip
}
