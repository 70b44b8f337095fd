package scene

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/implicit"
)

// Default returns a registry holding the built-in constructors and TAU.
func Default() *Registry {
	r := NewRegistry()
	r.SetConst("TAU", Number(2*math.Pi))

	r.mustRegister(Func{
		Name:    "echo",
		Params:  []Param{{Name: "text", Default: String("")}},
		Handler: echo,
		Doc:     "print text to the diagnostics stream",
	})
	r.mustRegister(Func{
		Name:    "sphere",
		Params:  []Param{{Name: "r", Default: Number(1)}},
		Handler: sphere,
		Doc:     "sphere of radius r centred on the origin",
	})
	r.mustRegister(Func{
		Name:    "icylinder",
		Params:  []Param{{Name: "r", Default: Number(1)}},
		Handler: icylinder,
		Doc:     "infinite cylinder of radius r along z",
	})
	r.mustRegister(Func{
		Name:    "icone",
		Params:  []Param{{Name: "slope", Default: Number(1)}},
		Handler: icone,
		Doc:     "infinite double cone along z with apex at the origin",
	})
	r.mustRegister(Func{
		Name: "cube",
		Params: []Param{
			{Name: "dim", Default: Numbers(1, 1, 1)},
			{Name: "s", Default: Number(0)},
		},
		Handler: cube,
		Doc:     "axis-aligned box of size dim centred on the origin",
	})
	r.mustRegister(Func{
		Name: "cylinder",
		Params: []Param{
			{Name: "h", Default: Number(1)},
			{Name: "r", Default: Number(1)},
			{Name: "r1"},
			{Name: "r2"},
			{Name: "s", Default: Number(0)},
		},
		Handler: cylinder,
		Doc:     "capped cylinder or frustum of height h centred on the origin",
	})
	r.mustRegister(Func{
		Name:    "translate",
		Params:  []Param{{Name: "t", Default: Numbers(0, 0, 0)}},
		Handler: translate,
		Doc:     "move children by t",
	})
	r.mustRegister(Func{
		Name:    "rotate",
		Params:  []Param{{Name: "t", Default: Numbers(0, 0, 0)}},
		Handler: rotate,
		Doc:     "rotate children by t radians about x, then y, then z",
	})
	r.mustRegister(Func{
		Name:    "scale",
		Params:  []Param{{Name: "t", Default: Numbers(1, 1, 0)}},
		Handler: scale,
		Doc:     "scale children by t; non-positive factors are treated as 1",
	})
	r.mustRegister(Func{
		Name:    "bend",
		Params:  []Param{{Name: "w", Default: Number(2 * math.Pi)}},
		Handler: bend,
		Doc:     "wrap children around z, w units of x per turn",
	})
	r.mustRegister(Func{
		Name:    "twist",
		Params:  []Param{{Name: "h", Default: Number(1)}},
		Handler: twist,
		Doc:     "twist children one turn per h units of z",
	})
	for _, b := range []struct {
		name string
		fn   func([]implicit.Surface, float64) (implicit.Surface, error)
		doc  string
	}{
		{"union", implicit.NewUnion, "union of children, blended by s"},
		{"intersection", implicit.NewIntersection, "intersection of children, blended by s"},
		{"difference", implicit.NewDifference, "first child minus the rest, blended by s"},
	} {
		r.mustRegister(Func{
			Name:    b.name,
			Params:  []Param{{Name: "s", Default: Number(0)}},
			Handler: combinator(b.name, b.fn),
			Doc:     b.doc,
		})
	}
	return r
}

func echo(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	v := args.Get("text")
	if v.Kind == KindString {
		diag.Echo(v.Str)
	} else {
		diag.Echo(v.String())
	}
	return Undef
}

func sphere(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	r, ok := number(args, "sphere", "r", diag)
	if !ok {
		return Undef
	}
	if r <= 0 {
		diag.Warnf("sphere: degenerate radius %g", r)
	}
	return Objects(implicit.NewSphere(r))
}

func icylinder(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	r, ok := number(args, "icylinder", "r", diag)
	if !ok {
		return Undef
	}
	if r <= 0 {
		diag.Warnf("icylinder: degenerate radius %g", r)
	}
	return Objects(implicit.NewCylinder(r))
}

func icone(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	slope, ok := number(args, "icone", "slope", diag)
	if !ok {
		return Undef
	}
	return Objects(implicit.NewCone(slope, 0))
}

func cube(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	dim, ok := vector(args, "cube", "dim", 0, diag)
	if !ok {
		return Undef
	}
	s := smoothing(args, "cube", diag)
	if dim.X <= 0 || dim.Y <= 0 || dim.Z <= 0 {
		diag.Warnf("cube: degenerate dimensions %v", dim)
	}
	c, err := implicit.NewIntersection([]implicit.Surface{
		implicit.NewSlab(implicit.AxisX, dim.X/2),
		implicit.NewSlab(implicit.AxisY, dim.Y/2),
		implicit.NewSlab(implicit.AxisZ, dim.Z/2),
	}, s)
	if err != nil {
		diag.Warnf("cube: %v", err)
		return Undef
	}
	return Objects(c)
}

func cylinder(args Args, _ []implicit.Surface, diag Diagnostics) Value {
	h, ok := number(args, "cylinder", "h", diag)
	if !ok {
		return Undef
	}
	s := smoothing(args, "cylinder", diag)

	r1, r2 := math.NaN(), math.NaN()
	if r, ok := args.Get("r").Float(); ok {
		r1, r2 = r, r
	}
	if r, ok := args.Get("r1").Float(); ok {
		r1 = r
	}
	if r, ok := args.Get("r2").Float(); ok {
		r2 = r
	}
	if math.IsNaN(r1) || math.IsNaN(r2) {
		diag.Warnf("cylinder: radius must be a number")
		return Undef
	}
	if h <= 0 {
		diag.Warnf("cylinder: degenerate height %g", h)
	}

	var side implicit.Surface
	if r1 == r2 {
		if r1 <= 0 {
			diag.Warnf("cylinder: degenerate radius %g", r1)
		}
		side = implicit.NewCylinder(r1)
	} else {
		if h == 0 {
			diag.Warnf("cylinder: a frustum needs a non-zero height")
			return Undef
		}
		slope := math.Abs(r2-r1) / h
		var offset float64
		if r1 < r2 {
			offset = -r1/slope - h/2
		} else {
			offset = r2/slope + h/2
		}
		rmax := math.Max(r1, r2)
		side = implicit.NewCone(slope, offset).Bounded(sdf.Box3{
			Min: v3.Vec{X: -rmax, Y: -rmax, Z: math.Inf(-1)},
			Max: v3.Vec{X: rmax, Y: rmax, Z: math.Inf(1)},
		})
	}
	c, err := implicit.NewIntersection([]implicit.Surface{
		side,
		implicit.NewSlab(implicit.AxisZ, h/2),
	}, s)
	if err != nil {
		diag.Warnf("cylinder: %v", err)
		return Undef
	}
	return Objects(c)
}

func translate(args Args, children []implicit.Surface, diag Diagnostics) Value {
	child, ok := joined("translate", children, diag)
	if !ok {
		return Undef
	}
	t, ok := vector(args, "translate", "t", 0, diag)
	if !ok {
		return Undef
	}
	out, err := implicit.NewTranslate(child, t)
	return result("translate", out, err, diag)
}

func rotate(args Args, children []implicit.Surface, diag Diagnostics) Value {
	child, ok := joined("rotate", children, diag)
	if !ok {
		return Undef
	}
	t, ok := vector(args, "rotate", "t", 0, diag)
	if !ok {
		return Undef
	}
	out, err := implicit.NewRotate(child, t)
	return result("rotate", out, err, diag)
}

func scale(args Args, children []implicit.Surface, diag Diagnostics) Value {
	child, ok := joined("scale", children, diag)
	if !ok {
		return Undef
	}
	t, ok := vector(args, "scale", "t", 1, diag)
	if !ok {
		return Undef
	}
	fix := func(name string, f float64) float64 {
		if f > 0 && !math.IsInf(f, 0) {
			return f
		}
		diag.Warnf("scale: factor %s=%g is not positive, using 1", name, f)
		return 1
	}
	t = v3.Vec{X: fix("x", t.X), Y: fix("y", t.Y), Z: fix("z", t.Z)}
	out, err := implicit.NewScale(child, t)
	return result("scale", out, err, diag)
}

func bend(args Args, children []implicit.Surface, diag Diagnostics) Value {
	child, ok := joined("bend", children, diag)
	if !ok {
		return Undef
	}
	w, ok := number(args, "bend", "w", diag)
	if !ok {
		return Undef
	}
	out, err := implicit.NewBend(child, w)
	return result("bend", out, err, diag)
}

func twist(args Args, children []implicit.Surface, diag Diagnostics) Value {
	child, ok := joined("twist", children, diag)
	if !ok {
		return Undef
	}
	h, ok := number(args, "twist", "h", diag)
	if !ok {
		return Undef
	}
	out, err := implicit.NewTwist(child, h)
	return result("twist", out, err, diag)
}

func combinator(name string, build func([]implicit.Surface, float64) (implicit.Surface, error)) Handler {
	return func(args Args, children []implicit.Surface, diag Diagnostics) Value {
		if len(children) == 0 {
			diag.Warnf("%s: needs at least one child", name)
			return Undef
		}
		s := smoothing(args, name, diag)
		out, err := build(children, s)
		return result(name, out, err, diag)
	}
}

// result converts a constructor result into a Value, reporting errors.
func result(name string, s implicit.Surface, err error, diag Diagnostics) Value {
	if err != nil {
		diag.Warnf("%s: %v", name, err)
		return Undef
	}
	return Objects(s)
}

// joined unions the children of a wrapper into one surface.
func joined(name string, children []implicit.Surface, diag Diagnostics) (implicit.Surface, bool) {
	if len(children) == 0 {
		diag.Warnf("%s: needs at least one child", name)
		return nil, false
	}
	u, err := implicit.NewUnion(children, 0)
	if err != nil {
		diag.Warnf("%s: %v", name, err)
		return nil, false
	}
	return u, true
}

func number(args Args, fn, param string, diag Diagnostics) (float64, bool) {
	v := args.Get(param)
	f, ok := v.Float()
	if !ok {
		diag.Warnf("%s: %s must be a number, got %s", fn, param, v.Kind)
	}
	return f, ok
}

// smoothing reads the blend radius s, treating bad values as 0.
func smoothing(args Args, fn string, diag Diagnostics) float64 {
	v := args.Get("s")
	s, ok := v.Float()
	switch {
	case !ok:
		diag.Warnf("%s: s must be a number, got %s; using 0", fn, v.Kind)
		return 0
	case s < 0 || math.IsNaN(s):
		diag.Warnf("%s: negative blend radius %g, using 0", fn, s)
		return 0
	}
	return s
}

// vector reads a 3-vector parameter. Missing components take fill; a
// component that is not a number becomes 0 with an "invalid dimension
// value" diagnostic. A non-vector argument fails.
func vector(args Args, fn, param string, fill float64, diag Diagnostics) (v3.Vec, bool) {
	v := args.Get(param)
	if v.Kind != KindVector {
		diag.Warnf("%s: %s must be a vector, got %s", fn, param, v.Kind)
		return v3.Vec{}, false
	}
	var c [3]float64
	for i := range c {
		c[i] = fill
		if i >= len(v.Vec) {
			continue
		}
		f, ok := v.Vec[i].Float()
		if !ok {
			diag.Warnf("%s: invalid dimension value %s in %s", fn, v.Vec[i], param)
			f = 0
		}
		c[i] = f
	}
	if len(v.Vec) > 3 {
		diag.Warnf("%s: %s has %d components, using the first 3", fn, param, len(v.Vec))
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, true
}
