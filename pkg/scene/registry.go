package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/chazu/sdftrace/pkg/implicit"
)

// Diagnostics receives non-fatal messages produced while building a scene.
type Diagnostics interface {
	// Warnf reports a lenient degrade or suspicious input.
	Warnf(format string, args ...any)
	// Echo reports user output requested by the scene itself.
	Echo(msg string)
}

// Log is a Diagnostics that records every message in order.
type Log struct {
	Warnings []string
	Echoes   []string
}

func (l *Log) Warnf(format string, args ...any) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

func (l *Log) Echo(msg string) {
	l.Echoes = append(l.Echoes, msg)
}

// discard drops everything.
type discard struct{}

func (discard) Warnf(string, ...any) {}
func (discard) Echo(string)          {}

// Param is a named parameter with its default.
type Param struct {
	Name    string
	Default Value
}

// Args is the bound argument record passed to a handler. Every declared
// parameter is present, defaulted when the caller omitted it.
type Args struct {
	vals map[string]Value
}

// Get returns the bound value of name, or Undef for an undeclared name.
func (a Args) Get(name string) Value {
	return a.vals[name]
}

// Handler builds a result from bound arguments and child surfaces.
type Handler func(args Args, children []implicit.Surface, diag Diagnostics) Value

// Func is a registry entry.
type Func struct {
	Name    string
	Params  []Param
	Handler Handler
	Doc     string
}

// Signature renders the call shape with defaults, e.g. "cube{dim=[1, 1, 1], s=0}".
func (f *Func) Signature() string {
	parts := lo.Map(f.Params, func(p Param, _ int) string {
		return p.Name + "=" + p.Default.String()
	})
	return f.Name + "{" + strings.Join(parts, ", ") + "}"
}

// Registry maps function names to constructors and holds named constants.
type Registry struct {
	funcs  map[string]*Func
	consts map[string]Value
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:  make(map[string]*Func),
		consts: make(map[string]Value),
	}
}

// Register adds f. Names must be unique.
func (r *Registry) Register(f Func) error {
	if f.Name == "" || f.Handler == nil {
		return fmt.Errorf("scene: register: function needs a name and a handler")
	}
	if _, ok := r.funcs[f.Name]; ok {
		return fmt.Errorf("scene: register: duplicate function %q", f.Name)
	}
	r.funcs[f.Name] = &f
	return nil
}

// mustRegister panics on a registration error; used for the built-in table.
func (r *Registry) mustRegister(f Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// SetConst binds a named constant.
func (r *Registry) SetConst(name string, v Value) {
	r.consts[name] = v
}

// Const returns the constant bound to name.
func (r *Registry) Const(name string) (Value, bool) {
	v, ok := r.consts[name]
	return v, ok
}

// Constants returns the constant names in sorted order.
func (r *Registry) Constants() []string {
	names := lo.Keys(r.consts)
	slices.Sort(names)
	return names
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (*Func, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := lo.Keys(r.funcs)
	slices.Sort(names)
	return names
}

// Call binds positional and named arguments to the parameters of name and
// runs its handler. Positional values fill parameters in declaration order;
// named values override. Unknown or surplus arguments are reported to diag
// and ignored. The only error is an unknown function name; every other
// problem degrades to a diagnostic and, at worst, an Undef result.
func (r *Registry) Call(name string, positional []Value, named map[string]Value, children []implicit.Surface, diag Diagnostics) (Value, error) {
	f, ok := r.funcs[name]
	if !ok {
		return Undef, fmt.Errorf("scene: unknown function %q", name)
	}
	if diag == nil {
		diag = discard{}
	}

	vals := make(map[string]Value, len(f.Params))
	for i, p := range f.Params {
		vals[p.Name] = p.Default
		if i < len(positional) {
			vals[p.Name] = positional[i]
		}
	}
	if len(positional) > len(f.Params) {
		diag.Warnf("%s: ignoring %d extra positional argument(s)", name, len(positional)-len(f.Params))
	}
	for k, v := range named {
		if _, declared := vals[k]; !declared {
			diag.Warnf("%s: unknown parameter %q ignored", name, k)
			continue
		}
		vals[k] = v
	}

	return f.Handler(Args{vals: vals}, children, diag), nil
}
