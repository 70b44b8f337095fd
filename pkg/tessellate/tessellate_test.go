package tessellate_test

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/kernel"
	"github.com/chazu/sdftrace/pkg/kernel/sdfx"
	"github.com/chazu/sdftrace/pkg/tessellate"
)

// newMesher returns a coarse sdfx mesher for testing.
func newMesher() kernel.Mesher {
	return sdfx.New(sdfx.WithCells(24))
}

// ball returns a unit sphere centred at x.
func ball(t *testing.T, x float64) implicit.Surface {
	t.Helper()
	s, err := implicit.NewTranslate(implicit.NewSphere(1), v3.Vec{X: x})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func union(t *testing.T, s float64, children ...implicit.Surface) implicit.Surface {
	t.Helper()
	u, err := implicit.NewUnion(children, s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestParts(t *testing.T) {
	tests := []struct {
		name string
		root func(t *testing.T) implicit.Surface
		want int
	}{
		{"nil scene", func(*testing.T) implicit.Surface { return nil }, 0},
		{"single solid", func(t *testing.T) implicit.Surface { return ball(t, 0) }, 1},
		{"sharp union", func(t *testing.T) implicit.Surface { return union(t, 0, ball(t, 0), ball(t, 3)) }, 2},
		{"nested unions flatten", func(t *testing.T) implicit.Surface {
			return union(t, 0, ball(t, 0), union(t, 0, ball(t, 3), ball(t, 6)))
		}, 3},
		{"blended union is one part", func(t *testing.T) implicit.Surface {
			return union(t, 0.5, ball(t, 0), ball(t, 1.5))
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tessellate.Parts(tt.root(t))); got != tt.want {
				t.Errorf("Parts() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTessellateNamesParts(t *testing.T) {
	root := union(t, 0, ball(t, 0), ball(t, 4))
	meshes, err := tessellate.Tessellate(root, newMesher(), "scene")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"scene-1", "scene-2"} {
		if meshes[i].Name != want {
			t.Errorf("mesh %d name = %q, want %q", i, meshes[i].Name, want)
		}
		if meshes[i].IsEmpty() {
			t.Errorf("mesh %d is empty", i)
		}
	}

	// Parts keep their order: the second mesh sits around x = 4.
	min, max := meshes[1].Bounds()
	if min[0] < 2.8 || max[0] > 5.2 {
		t.Errorf("second part x bounds [%g, %g]", min[0], max[0])
	}
}

func TestTessellateSinglePart(t *testing.T) {
	meshes, err := tessellate.Tessellate(ball(t, 0), newMesher(), "ball")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if len(meshes) != 1 || meshes[0].Name != "ball" {
		t.Fatalf("meshes = %v", meshes)
	}
}

func TestTessellateSkipsPartsOutsideRegion(t *testing.T) {
	root := union(t, 0, ball(t, 0), ball(t, 100))
	meshes, err := tessellate.Tessellate(root, newMesher(), "scene")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected the far part to be skipped, got %d meshes", len(meshes))
	}
}

func TestTessellateNilScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newMesher(), "empty")
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}
}
