package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// blendFunc combines two field values.
type blendFunc func(a, b float64) float64

// finiteOnly applies smooth when both values are finite and sharp
// otherwise. An empty bounding box yields +Inf from ApproxValue, and the
// polynomial blends turn an infinite operand into NaN.
func finiteOnly(smooth, sharp blendFunc) blendFunc {
	return func(a, b float64) float64 {
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return sharp(a, b)
		}
		return smooth(a, b)
	}
}

// Union is the union of its children, optionally blended with radius S.
type Union struct {
	children []Surface
	S        float64

	min  blendFunc
	bbox sdf.Box3
	lip  float64
}

// NewUnion returns the union of children. With s > 0 the seams are rounded
// by a polynomial smooth minimum; s = 0 gives the exact minimum. A single
// child is returned unchanged.
func NewUnion(children []Surface, s float64) (Surface, error) {
	children = compact(children)
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	if len(children) == 1 {
		return children[0], nil
	}
	u := &Union{
		children: children,
		S:        s,
		min:      math.Min,
		bbox:     EmptyBox(),
		lip:      1,
	}
	if s > 0 {
		u.min = finiteOnly(blendFunc(sdf.PolyMin(s)), math.Min)
	}
	for _, c := range children {
		u.bbox = MergeBoxes(u.bbox, c.BoundingBox())
		u.lip = math.Max(u.lip, LipschitzBound(c))
	}
	if s > 0 {
		// The smooth minimum dips at most s/4 below the sharp one.
		u.bbox = growBox(u.bbox, s/4)
	}
	return u, nil
}

// Children returns the surfaces joined by u.
func (u *Union) Children() []Surface {
	return u.children
}

func (u *Union) Evaluate(p v3.Vec) float64 {
	d := u.children[0].Evaluate(p)
	for _, c := range u.children[1:] {
		d = u.min(d, c.Evaluate(p))
	}
	return d
}

func (u *Union) ApproxValue(p v3.Vec, slack float64) float64 {
	if d, ok := boxShortcut(u.bbox, p, slack); ok {
		return d
	}
	d := u.children[0].ApproxValue(p, slack)
	for _, c := range u.children[1:] {
		d = u.min(d, c.ApproxValue(p, slack))
	}
	return d
}

func (u *Union) Normal(p v3.Vec) v3.Vec {
	return gradient(u.Evaluate, p)
}

func (u *Union) BoundingBox() sdf.Box3 {
	return u.bbox
}

func (u *Union) Lipschitz() float64 {
	return u.lip
}

// Intersection is the intersection of its children, optionally blended with
// radius S.
type Intersection struct {
	children []Surface
	S        float64

	max  blendFunc
	bbox sdf.Box3
	lip  float64
}

// NewIntersection returns the intersection of children. With s > 0 the
// edges are rounded by the polynomial smooth maximum, the dual of the
// union's smooth minimum. A single child is returned unchanged.
func NewIntersection(children []Surface, s float64) (Surface, error) {
	children = compact(children)
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return newIntersection(children, s), nil
}

func newIntersection(children []Surface, s float64) *Intersection {
	in := &Intersection{
		children: children,
		S:        s,
		max:      math.Max,
		bbox:     InfiniteBox(),
		lip:      1,
	}
	if s > 0 {
		smin := sdf.PolyMin(s)
		in.max = finiteOnly(func(a, b float64) float64 { return -smin(-a, -b) }, math.Max)
	}
	for _, c := range children {
		in.bbox = OverlapBoxes(in.bbox, c.BoundingBox())
		in.lip = math.Max(in.lip, LipschitzBound(c))
	}
	return in
}

// NewDifference subtracts children[1:] from children[0]. The subtrahends are
// unioned, their field negated, and the result intersected with the first
// child, so the bounding box is the first child's box.
func NewDifference(children []Surface, s float64) (Surface, error) {
	children = compact(children)
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	if len(children) == 1 {
		return children[0], nil
	}
	rest, err := NewUnion(children[1:], 0)
	if err != nil {
		return nil, err
	}
	return newIntersection([]Surface{children[0], NewComplement(rest)}, s), nil
}

// Children returns the surfaces intersected by in.
func (in *Intersection) Children() []Surface {
	return in.children
}

func (in *Intersection) Evaluate(p v3.Vec) float64 {
	d := in.children[0].Evaluate(p)
	for _, c := range in.children[1:] {
		d = in.max(d, c.Evaluate(p))
	}
	return d
}

func (in *Intersection) ApproxValue(p v3.Vec, slack float64) float64 {
	if d, ok := boxShortcut(in.bbox, p, slack); ok {
		return d
	}
	d := in.children[0].ApproxValue(p, slack)
	for _, c := range in.children[1:] {
		d = in.max(d, c.ApproxValue(p, slack))
	}
	return d
}

func (in *Intersection) Normal(p v3.Vec) v3.Vec {
	return gradient(in.Evaluate, p)
}

func (in *Intersection) BoundingBox() sdf.Box3 {
	return in.bbox
}

func (in *Intersection) Lipschitz() float64 {
	return in.lip
}

// Complement swaps inside and outside of its child.
type Complement struct {
	child Surface
}

// NewComplement returns the complement of child.
func NewComplement(child Surface) *Complement {
	return &Complement{child: child}
}

func (c *Complement) Evaluate(p v3.Vec) float64 {
	return -c.child.Evaluate(p)
}

// ApproxValue uses the exact child field: a negated lower bound is not a
// lower bound.
func (c *Complement) ApproxValue(p v3.Vec, _ float64) float64 {
	return -c.child.Evaluate(p)
}

func (c *Complement) Normal(p v3.Vec) v3.Vec {
	return c.child.Normal(p).Neg()
}

// BoundingBox is all of space.
func (c *Complement) BoundingBox() sdf.Box3 {
	return InfiniteBox()
}

func (c *Complement) Lipschitz() float64 {
	return LipschitzBound(c.child)
}

// compact drops nil entries.
func compact(children []Surface) []Surface {
	out := make([]Surface, 0, len(children))
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// growBox pads every side of b by d.
func growBox(b sdf.Box3, d float64) sdf.Box3 {
	if IsEmpty(b) {
		return b
	}
	pad := v3.Vec{X: d, Y: d, Z: d}
	return sdf.Box3{
		Min: v3.Vec{X: InfAdd(b.Min.X, -pad.X), Y: InfAdd(b.Min.Y, -pad.Y), Z: InfAdd(b.Min.Z, -pad.Z)},
		Max: v3.Vec{X: InfAdd(b.Max.X, pad.X), Y: InfAdd(b.Max.Y, pad.Y), Z: InfAdd(b.Max.Z, pad.Z)},
	}
}
