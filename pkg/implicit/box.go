package implicit

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	inf    = math.Inf(1)
	negInf = math.Inf(-1)
)

// InfMul multiplies a by b with the convention 0·∞ = 0.
func InfMul(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a * b
}

// InfAdd adds a finite or infinite offset to a box coordinate. An infinite
// coordinate absorbs any finite offset; opposite infinities yield a.
func InfAdd(a, b float64) float64 {
	switch {
	case math.IsInf(a, 0):
		return a
	case math.IsInf(b, 0):
		return b
	}
	return a + b
}

// InfiniteBox returns the box covering all of space.
func InfiniteBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: negInf, Y: negInf, Z: negInf},
		Max: v3.Vec{X: inf, Y: inf, Z: inf},
	}
}

// EmptyBox returns the box containing nothing. It is the identity of
// MergeBoxes and absorbs OverlapBoxes.
func EmptyBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: negInf, Y: negInf, Z: negInf},
	}
}

// IsEmpty reports whether b has no extent along some axis.
func IsEmpty(b sdf.Box3) bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsFinite reports whether every extent of b is finite.
func IsFinite(b sdf.Box3) bool {
	for _, c := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsInf(c, 0) || math.IsNaN(c) {
			return false
		}
	}
	return true
}

// MergeBoxes returns the axis-wise envelope of a and b.
func MergeBoxes(a, b sdf.Box3) sdf.Box3 {
	if IsEmpty(a) {
		return b
	}
	if IsEmpty(b) {
		return a
	}
	return sdf.Box3{
		Min: v3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: v3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// OverlapBoxes returns the axis-wise overlap of a and b, or the empty box
// when they do not overlap on some axis.
func OverlapBoxes(a, b sdf.Box3) sdf.Box3 {
	if IsEmpty(a) || IsEmpty(b) {
		return EmptyBox()
	}
	o := sdf.Box3{
		Min: v3.Vec{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)},
		Max: v3.Vec{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)},
	}
	if IsEmpty(o) {
		return EmptyBox()
	}
	return o
}

// TranslateBox shifts b by v.
func TranslateBox(b sdf.Box3, v v3.Vec) sdf.Box3 {
	if IsEmpty(b) {
		return b
	}
	return sdf.Box3{
		Min: v3.Vec{X: InfAdd(b.Min.X, v.X), Y: InfAdd(b.Min.Y, v.Y), Z: InfAdd(b.Min.Z, v.Z)},
		Max: v3.Vec{X: InfAdd(b.Max.X, v.X), Y: InfAdd(b.Max.Y, v.Y), Z: InfAdd(b.Max.Z, v.Z)},
	}
}

// ScaleBox scales b componentwise by the non-negative factors f.
func ScaleBox(b sdf.Box3, f v3.Vec) sdf.Box3 {
	if IsEmpty(b) {
		return b
	}
	return sdf.Box3{
		Min: v3.Vec{X: InfMul(b.Min.X, f.X), Y: InfMul(b.Min.Y, f.Y), Z: InfMul(b.Min.Z, f.Z)},
		Max: v3.Vec{X: InfMul(b.Max.X, f.X), Y: InfMul(b.Max.Y, f.Y), Z: InfMul(b.Max.Z, f.Z)},
	}
}

// LinearBox returns the axis-aligned envelope of b mapped through the linear
// map whose rows are m. Each output axis is bounded by summing, per input
// axis, the extreme of the two products with the box limits. For finite
// boxes this equals the envelope of the eight transformed corners; for
// infinite ones it avoids the ∞−∞ a corner sum would produce.
func LinearBox(b sdf.Box3, m [3]v3.Vec) sdf.Box3 {
	if IsEmpty(b) {
		return b
	}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	var outMin, outMax [3]float64
	for i, row := range m {
		r := [3]float64{row.X, row.Y, row.Z}
		for j := 0; j < 3; j++ {
			a := InfMul(r[j], lo[j])
			c := InfMul(r[j], hi[j])
			outMin[i] = InfAdd(outMin[i], math.Min(a, c))
			outMax[i] = InfAdd(outMax[i], math.Max(a, c))
		}
	}
	return sdf.Box3{
		Min: v3.Vec{X: outMin[0], Y: outMin[1], Z: outMin[2]},
		Max: v3.Vec{X: outMax[0], Y: outMax[1], Z: outMax[2]},
	}
}

// BoxDistance returns the Euclidean distance from p to b, zero inside.
// The distance to an empty box is +Inf.
func BoxDistance(b sdf.Box3, p v3.Vec) float64 {
	if IsEmpty(b) {
		return inf
	}
	d := v3.Vec{
		X: axisGap(p.X, b.Min.X, b.Max.X),
		Y: axisGap(p.Y, b.Min.Y, b.Max.Y),
		Z: axisGap(p.Z, b.Min.Z, b.Max.Z),
	}
	return d.Length()
}

func axisGap(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo - x
	case x > hi:
		return x - hi
	}
	return 0
}

// boxShortcut returns the box distance and true when p lies more than slack
// outside b.
func boxShortcut(b sdf.Box3, p v3.Vec, slack float64) (float64, bool) {
	if d := BoxDistance(b, p); d > slack {
		return d, true
	}
	return 0, false
}
