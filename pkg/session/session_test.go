package session

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/config"
)

// newSession returns a small, coarse session for testing.
func newSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Width, cfg.Height = 40, 40
	cfg.Mesh.Cells = 24
	cfg.Mesh.Extent = 6
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func mustEvaluate(t *testing.T, s *Session, source string) Result {
	t.Helper()
	result := s.Evaluate(source)
	if !result.OK() {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return result
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Width = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestEvaluateNoScene(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t\n   \n"},
		{"comments only", ";; a sphere would go here\n;; and here\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			result := mustEvaluate(t, s, tt.source)
			if result.Scene {
				t.Error("expected no scene")
			}
			if len(result.Warnings) != 0 {
				t.Errorf("expected 0 warnings, got %v", result.Warnings)
			}
			if s.Scene() != nil {
				t.Error("renderer should have no object")
			}
		})
	}
}

func TestEvaluateSphere(t *testing.T) {
	s := newSession(t)
	result := mustEvaluate(t, s, "(sphere :r 1.5)")
	if !result.Scene {
		t.Fatal("expected a scene")
	}
	if got := s.Scene().Evaluate(v3.Vec{}); math.Abs(got+1.5) > 1e-9 {
		t.Errorf("value at origin = %g, want -1.5", got)
	}
}

func TestEvaluateNestedArithmeticDef(t *testing.T) {
	s := newSession(t)
	source := `
(def total 6)
(def half (/ total 2))
(def r (- half (* 2 0.5)))
(sphere :r r)
`
	mustEvaluate(t, s, source)
	if got := s.Scene().Evaluate(v3.Vec{}); math.Abs(got+2) > 1e-9 {
		t.Errorf("value at origin = %g, want -2", got)
	}
}

func TestSyntaxErrorKeepsPreviousScene(t *testing.T) {
	s := newSession(t)
	mustEvaluate(t, s, "(sphere)")
	before := s.Scene()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := s.Evaluate("(sphere)\n(union (sphere)")
	if result.OK() {
		t.Fatal("expected an error for unmatched parens")
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	if result.Scene {
		t.Error("failed evaluation should not report a scene")
	}
	if s.Scene() != before {
		t.Error("failed evaluation replaced the scene")
	}
}

func TestUndefinedFunction(t *testing.T) {
	s := newSession(t)
	result := s.Evaluate("(board :length 100)")
	if result.OK() {
		t.Fatal("expected an error for an undefined function")
	}
	if s.Scene() != nil {
		t.Error("no scene expected")
	}
}

func TestNonSolidClearsScene(t *testing.T) {
	s := newSession(t)
	mustEvaluate(t, s, "(sphere)")

	result := mustEvaluate(t, s, "(+ 1 2)")
	if result.Scene {
		t.Error("arithmetic should not produce a scene")
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if s.Scene() != nil {
		t.Error("scene should be cleared")
	}
}

func TestWarningsAndOutput(t *testing.T) {
	s := newSession(t)
	result := mustEvaluate(t, s, `(echo "building") (scale :t [2 2 0] (sphere))`)
	if !result.Scene {
		t.Fatal("expected a scene despite the warning")
	}
	if len(result.Output) != 1 || result.Output[0] != "building" {
		t.Errorf("Output = %v", result.Output)
	}
	if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0].Message, "scale: ") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
}

func TestRapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources; the engine must recover
	// cleanly between error and success states.
	s := newSession(t)

	sources := []string{
		`(sphere)`,
		`(union (sphere)`,
		``,
		`(undefined-func 1 2 3)`,
		`(cube :dim [1 2 3])`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(difference (cube) (sphere :r 0.6))`,
	}
	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			s.Evaluate(source)
		}()
	}
	if s.Scene() == nil {
		t.Error("last source should leave a scene")
	}
}

func TestFrame(t *testing.T) {
	s := newSession(t)

	img, err := s.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 40 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if c := img.RGBAAt(20, 20); c.R != 0 {
		t.Errorf("empty scene centre = %v, want black", c)
	}

	mustEvaluate(t, s, "(sphere)")
	img, err = s.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	// Facing the camera the normal is (0,0,-1): brightness 1/3, squared.
	if c := img.RGBAAt(20, 20); c.R != 28 || c.A != 255 {
		t.Errorf("centre = %v, want grey 28", c)
	}
	if c := img.RGBAAt(0, 0); c.R != 0 {
		t.Errorf("corner = %v, want a miss", c)
	}
}

func TestWritePNG(t *testing.T) {
	s := newSession(t)
	mustEvaluate(t, s, "(sphere)")

	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestResetViewRestoresConfiguredView(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 32, 32
	cfg.View.Rotate = [2]float64{0.4, 0}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mustEvaluate(t, s, "(translate :t [0.4 0 0] (cube :dim [0.6 0.6 0.6]))")

	first, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	s.Rotate(1, 0.5)
	s.Translate(0.2, 0)
	moved, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.Pix, moved.Pix) {
		t.Fatal("gestures did not change the frame")
	}

	s.ResetView()
	again, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Pix, again.Pix) {
		t.Error("ResetView did not restore the configured view")
	}
}

func TestViewSurvivesSceneSwap(t *testing.T) {
	s := newSession(t)
	mustEvaluate(t, s, "(sphere :r 0.5)")
	s.Translate(3, 0)

	// The sphere is panned out of view; a new scene keeps the pan.
	mustEvaluate(t, s, "(sphere :r 0.6)")
	img, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if c := img.RGBAAt(20, 20); c.R != 0 {
		t.Errorf("centre = %v, want a miss after the pan", c)
	}
}

func TestExport(t *testing.T) {
	s := newSession(t)

	meshes, err := s.Export("empty", false)
	if err != nil || meshes != nil {
		t.Fatalf("Export() with no scene = %v, %v", meshes, err)
	}

	mustEvaluate(t, s, "(union (sphere) (translate :t [3 0 0] (sphere)))")

	meshes, err = s.Export("scene", false)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(meshes) != 1 || meshes[0].Name != "scene" || meshes[0].IsEmpty() {
		t.Fatalf("single export = %v", meshes)
	}

	meshes, err = s.Export("scene", true)
	if err != nil {
		t.Fatalf("Export(split) error = %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"scene-1", "scene-2"} {
		if meshes[i].Name != want {
			t.Errorf("mesh %d name = %q, want %q", i, meshes[i].Name, want)
		}
	}
}
