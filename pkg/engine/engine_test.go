package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		res, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if !res.OK() {
			t.Fatalf("unexpected eval errors: %v", res.Errors)
		}
		if res.Root != nil {
			t.Errorf("expected nil root for %q", src)
		}
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine()

	// (+ 1 2) is valid Lisp but describes no solid.
	res, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if res.Root != nil {
		t.Error("expected nil root for a numeric program")
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected a non-solid warning, got %v", res.Warnings)
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	res, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	res, err := eng.Evaluate("(sphere :r 1")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res.Root != nil {
		t.Fatal("expected nil root on syntax error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if res.Errors[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Evaluate("(sphere :r undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res.Root != nil {
		t.Fatal("expected nil root on eval error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	// Put the error on line 2.
	source := "(sphere)\n(cube"
	res, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info depends on the zygomys error format; only check it is sane.
	e := res.Errors[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 2 {
		t.Errorf("line %d is past the end of the source; constants prelude must not shift lines", e.Line)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	var first float64
	for i := 0; i < 5; i++ {
		res, err := eng.Evaluate("(translate :t [1 0 0] (sphere :r 2))")
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if !res.OK() || res.Root == nil {
			t.Fatalf("iteration %d: errors %v, root %v", i, res.Errors, res.Root)
		}
		bb := res.Root.BoundingBox()
		if i == 0 {
			first = bb.Max.X
		} else if bb.Max.X != first {
			t.Errorf("iteration %d: box max x %g, want %g", i, bb.Max.X, first)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Drive the timeout plumbing directly with a channel that never sends.
	eng := NewEngine(WithTimeout(50 * time.Millisecond))
	gen := eng.begin()

	start := time.Now()
	_, err := eng.await(make(chan outcome), gen)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got: %v", err)
	}
	if !strings.Contains(err.Error(), "50ms") {
		t.Errorf("timeout error should name the limit, got: %v", err)
	}
	if time.Since(start) > EvalTimeout {
		t.Error("custom timeout was not honoured")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	eng := NewEngine()
	stale := eng.begin()
	eng.begin()

	ch := make(chan outcome, 1)
	ch <- outcome{}

	if _, err := eng.await(ch, stale); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad token",
			wantLine: 3,
			wantMsg:  "bad token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestPrelude(t *testing.T) {
	p := prelude(NewEngine().Registry())
	if strings.Contains(p, "\n") {
		t.Errorf("prelude must stay on one line: %q", p)
	}
	if !strings.HasPrefix(p, "(def TAU 6.283185307179586)") {
		t.Errorf("prelude = %q", p)
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
