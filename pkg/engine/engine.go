// Package engine provides the Lisp evaluation engine for sdftrace scenes.
// It wraps zygomys in a sandboxed environment, binds every scene registry
// constructor as a builtin and returns the surface produced by the last
// top-level expression.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/scene"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal diagnostic produced by a constructor,
// such as a degraded parameter.
type EvalWarning struct {
	Func    string
	Message string
}

func (w EvalWarning) String() string {
	if w.Func != "" {
		return w.Func + ": " + w.Message
	}
	return w.Message
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	// Root is the scene surface, or nil when the program produced no solid.
	Root     implicit.Surface
	Errors   []EvalError
	Warnings []EvalWarning
	// Output holds text written by echo, in call order.
	Output []string
}

// OK reports whether evaluation finished without errors.
func (r EvalResult) OK() bool {
	return len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	registry *scene.Registry
	timeout  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default constructor registry.
func WithRegistry(r *scene.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTimeout replaces EvalTimeout for this engine.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine creates a new Engine bound to scene.Default().
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	if e.registry == nil {
		e.registry = scene.Default()
	}
	return e
}

// Registry returns the constructor registry bound into every evaluation.
func (e *Engine) Registry() *scene.Registry {
	return e.registry
}

// Evaluate runs Lisp source and returns the scene it describes.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: Root set (nil for a program without solids), no Errors
//   - On parse/eval failure: nil Root, Errors populated, nil error
//   - On fatal failure: zero result + error (ErrTimeout, ErrSuperseded or a
//     recovered panic)
func (e *Engine) Evaluate(source string) (EvalResult, error) {
	gen := e.begin()
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		ch <- outcome{result: e.evaluate(source)}
	}()

	return e.await(ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) EvalResult {
	// Empty source is a valid program with no scene.
	if strings.TrimSpace(source) == "" {
		return EvalResult{}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &binder{registry: e.registry}
	b.install(env)

	err := env.LoadString(prelude(e.registry) + preprocessSource(source))
	if err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings, Output: b.output}
	}

	last, err := env.Run()
	if err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: b.warnings, Output: b.output}
	}

	return EvalResult{Root: b.root(last), Warnings: b.warnings, Output: b.output}
}

// prelude defines the registry constants. It is emitted without newlines
// so line numbers in user source are unchanged.
func prelude(r *scene.Registry) string {
	var sb strings.Builder
	for _, name := range r.Constants() {
		v, _ := r.Const(name)
		f, ok := v.Float()
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "(def %s %s) ", name, strconv.FormatFloat(f, 'g', -1, 64))
	}
	return sb.String()
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
