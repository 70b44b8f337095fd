package render

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/implicit"
)

// Ray is a half-line from Origin along Dir. Dir need not be unit length.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// Params bounds a single march.
type Params struct {
	// Epsilon is the hit threshold and the slack passed to ApproxValue.
	Epsilon float64
	// MaxDistance ends the march once the field value or the distance
	// travelled exceeds it.
	MaxDistance float64
	// MaxIterations caps the number of steps; it must fit in a byte.
	MaxIterations int
}

// DefaultParams returns the standard march bounds.
func DefaultParams() Params {
	return Params{
		Epsilon:       DefaultEpsilon,
		MaxDistance:   DefaultMaxDistance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Hit is the outcome of a march.
type Hit struct {
	Hit bool
	// Iterations is the step count at termination: in [1, MaxIterations-1]
	// for hits, MaxIterations for misses.
	Iterations int
	Point      v3.Vec
}

// CastRay sphere-traces s along ray. value is the field value at the ray
// origin, which the caller may share between rays from the same point.
// Each step advances by value divided by the surface's Lipschitz bound.
func CastRay(s implicit.Surface, ray Ray, value float64, p Params) Hit {
	dir := ray.Dir.Normalize()
	lip := implicit.LipschitzBound(s)
	pos := ray.Origin
	travelled := 0.0

	for i := 1; i < p.MaxIterations; i++ {
		step := value / lip
		pos = pos.Add(dir.MulScalar(step))
		travelled += step
		value = s.ApproxValue(pos, p.Epsilon)
		if value < p.Epsilon {
			return Hit{Hit: true, Iterations: i, Point: pos}
		}
		if value > p.MaxDistance || travelled > p.MaxDistance {
			break
		}
	}
	return Hit{Iterations: p.MaxIterations, Point: pos}
}
