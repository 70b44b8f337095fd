// Package scene is the constructor registry that turns named calls with
// keyword parameters into implicit surfaces. It is the boundary between a
// scene language front end and the geometric core: the front end binds call
// sites to registry entries, the registry validates and defaults arguments
// and builds the surface tree.
package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/sdftrace/pkg/implicit"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindUndef Kind = iota
	KindNumber
	KindVector
	KindString
	KindObjects
)

func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindNumber:
		return "number"
	case KindVector:
		return "vector"
	case KindString:
		return "string"
	case KindObjects:
		return "objects"
	default:
		return "unknown"
	}
}

// Value is a tagged scene-language value. The zero Value is Undef.
type Value struct {
	Kind    Kind
	Num     float64
	Vec     []Value
	Str     string
	Objects []implicit.Surface
}

// Undef is the "no value" result.
var Undef = Value{}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Vector returns a vector of arbitrary values.
func Vector(vs ...Value) Value {
	return Value{Kind: KindVector, Vec: vs}
}

// Numbers returns a vector of numbers.
func Numbers(fs ...float64) Value {
	vs := make([]Value, len(fs))
	for i, f := range fs {
		vs[i] = Number(f)
	}
	return Vector(vs...)
}

// String returns a string Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Objects returns a Value carrying surfaces.
func Objects(objs ...implicit.Surface) Value {
	return Value{Kind: KindObjects, Objects: objs}
}

// IsUndef reports whether v holds no value.
func (v Value) IsUndef() bool {
	return v.Kind == KindUndef
}

// Float returns the number held by v.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// FloatOr returns the number held by v, or def.
func (v Value) FloatOr(def float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return def
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindVector:
		parts := make([]string, len(v.Vec))
		for i, e := range v.Vec {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindString:
		return strconv.Quote(v.Str)
	case KindObjects:
		return fmt.Sprintf("<%d object(s)>", len(v.Objects))
	default:
		return "undef"
	}
}
