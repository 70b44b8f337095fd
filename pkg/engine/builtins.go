package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: half-cube -> half_cube
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid carries the surfaces built by a constructor so they can be
// bound with def and passed as children to other constructors.
type sexpSolid struct {
	objs []implicit.Surface
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	if len(s.objs) == 1 {
		return fmt.Sprintf("(solid %T)", s.objs[0])
	}
	return fmt.Sprintf("(solids %d)", len(s.objs))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value conversion
// ---------------------------------------------------------------------------

// toValue converts a zygomys value into a scene value. Lists and arrays
// become vectors; anything without a scene counterpart is Undef.
func toValue(s zygo.Sexp) (scene.Value, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return scene.Number(float64(v.Val)), nil
	case *zygo.SexpFloat:
		return scene.Number(v.Val), nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return scene.String(name), nil
		}
		return scene.String(v.S), nil
	case *sexpSolid:
		return scene.Objects(v.objs...), nil
	case *zygo.SexpArray, *zygo.SexpPair:
		items, err := sexpListToSlice(s)
		if err != nil {
			return scene.Undef, err
		}
		vals := make([]scene.Value, 0, len(items))
		for _, item := range items {
			iv, err := toValue(item)
			if err != nil {
				return scene.Undef, err
			}
			vals = append(vals, iv)
		}
		return scene.Vector(vals...), nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return scene.Undef, nil
		}
	}
	return scene.Undef, fmt.Errorf("unsupported value %s", s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// solids returns the surfaces in v when it is a solid or a vector of solids.
func solids(v scene.Value) ([]implicit.Surface, bool) {
	switch v.Kind {
	case scene.KindObjects:
		return v.Objects, true
	case scene.KindVector:
		if len(v.Vec) == 0 {
			return nil, false
		}
		var out []implicit.Surface
		for _, e := range v.Vec {
			if e.Kind != scene.KindObjects {
				return nil, false
			}
			out = append(out, e.Objects...)
		}
		return out, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// binder installs registry constructors into one zygomys environment and
// collects the diagnostics they emit during that evaluation.
type binder struct {
	registry *scene.Registry
	current  string
	warnings []EvalWarning
	output   []string
	// built is set once any call has produced a solid.
	built bool
}

func (b *binder) Warnf(format string, args ...any) {
	b.warnings = append(b.warnings, EvalWarning{Func: b.current, Message: strings.TrimPrefix(fmt.Sprintf(format, args...), b.current+": ")})
}

func (b *binder) Echo(msg string) {
	b.output = append(b.output, msg)
}

// install registers every registry function as a zygomys builtin.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
//
//	(union :s 0.2 (sphere :r 1) (translate :t [1 0 0] (cube)))
//
// Keyword arguments bind to named parameters. Positional solids, or lists
// of solids, become children; other positional values fill parameters in
// declaration order.
func (b *binder) install(env *zygo.Zlisp) {
	for _, name := range b.registry.Names() {
		env.AddFunction(name, b.builtin(name))
	}
}

func (b *binder) builtin(fn string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		named := make(map[string]scene.Value, len(pa.kw))
		for k, v := range pa.kw {
			val, err := toValue(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %s: %w", fn, k, err)
			}
			named[k] = val
		}

		var positional []scene.Value
		var children []implicit.Surface
		for i, arg := range pa.positional {
			val, err := toValue(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
			}
			if objs, ok := solids(val); ok {
				children = append(children, objs...)
				continue
			}
			positional = append(positional, val)
		}

		b.current = fn
		res, err := b.registry.Call(fn, positional, named, children, b)
		b.current = ""
		if err != nil {
			return zygo.SexpNull, err
		}
		if res.Kind == scene.KindObjects && len(res.Objects) > 0 {
			b.built = true
			return &sexpSolid{objs: res.Objects}, nil
		}
		return zygo.SexpNull, nil
	}
}

// root turns the value of the last top-level expression into the scene
// root. Several solids are unioned.
func (b *binder) root(last zygo.Sexp) implicit.Surface {
	if last == nil {
		return nil
	}
	val, err := toValue(last)
	if err != nil {
		b.warnings = append(b.warnings, EvalWarning{Message: fmt.Sprintf("scene value %s is not a solid", last.SexpString(nil))})
		return nil
	}
	objs, ok := solids(val)
	if !ok {
		switch {
		case !val.IsUndef():
			b.warnings = append(b.warnings, EvalWarning{Message: fmt.Sprintf("scene value %s is not a solid", val)})
		case b.built:
			b.warnings = append(b.warnings, EvalWarning{Message: "last expression is not a solid; earlier solids are not part of the scene"})
		}
		return nil
	}
	root, err := implicit.NewUnion(objs, 0)
	if err != nil {
		return nil
	}
	return root
}
