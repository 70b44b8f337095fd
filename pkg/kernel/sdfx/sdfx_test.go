package sdfx

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/kernel"
)

func cube(t *testing.T, x, y, z float64) implicit.Surface {
	t.Helper()
	s, err := implicit.NewIntersection([]implicit.Surface{
		implicit.NewSlab(implicit.AxisX, x/2),
		implicit.NewSlab(implicit.AxisY, y/2),
		implicit.NewSlab(implicit.AxisZ, z/2),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func checkMesh(t *testing.T, mesh *kernel.Mesh) {
	t.Helper()
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestSphere(t *testing.T) {
	k := New(WithCells(40))
	mesh, err := k.ToMesh(implicit.NewSphere(1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)

	// Every vertex lies near the unit sphere.
	for i := 0; i < len(mesh.Vertices); i += 3 {
		r := math.Sqrt(float64(mesh.Vertices[i]*mesh.Vertices[i] +
			mesh.Vertices[i+1]*mesh.Vertices[i+1] +
			mesh.Vertices[i+2]*mesh.Vertices[i+2]))
		if math.Abs(r-1) > 0.1 {
			t.Fatalf("vertex %d at radius %g", i/3, r)
		}
	}
}

func TestBox(t *testing.T) {
	k := New(WithCells(40))
	mesh, err := k.ToMesh(cube(t, 4, 2, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)

	min, max := mesh.Bounds()
	want := [3]float32{2, 1, 0.5}
	for i := range 3 {
		if math.Abs(float64(max[i]-want[i])) > 0.15 || math.Abs(float64(min[i]+want[i])) > 0.15 {
			t.Errorf("axis %d bounds [%g, %g], want ±%g", i, min[i], max[i], want[i])
		}
	}
}

func TestDifference(t *testing.T) {
	k := New(WithCells(40))

	box := cube(t, 2, 2, 2)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	diff, err := implicit.NewDifference([]implicit.Surface{box, implicit.NewCylinder(0.5)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	checkMesh(t, diffMesh)
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnboundedSceneIsClipped(t *testing.T) {
	k := New(WithCells(30), WithExtent(3))
	mesh, err := k.ToMesh(implicit.NewCylinder(1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)

	min, max := mesh.Bounds()
	if max[2] > 3.1 || min[2] < -3.1 {
		t.Errorf("z bounds [%g, %g] exceed the extent", min[2], max[2])
	}
	if max[2] < 2.5 {
		t.Errorf("clipped cylinder should reach the region cap, max z = %g", max[2])
	}
}

func TestTranslate(t *testing.T) {
	k := New(WithCells(30))
	moved, err := implicit.NewTranslate(implicit.NewSphere(1), v3.Vec{X: 5})
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := k.ToMesh(moved)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	min, max := mesh.Bounds()
	if math.Abs(float64(min[0])-4) > 0.15 || math.Abs(float64(max[0])-6) > 0.15 {
		t.Errorf("x bounds [%g, %g], want [4, 6]", min[0], max[0])
	}
}

func TestEmptyScene(t *testing.T) {
	k := New()
	far, err := implicit.NewTranslate(implicit.NewSphere(1), v3.Vec{X: 50})
	if err != nil {
		t.Fatal(err)
	}
	_, err = k.ToMesh(far)
	if !errors.Is(err, kernel.ErrEmptyRegion) {
		t.Errorf("error = %v, want ErrEmptyRegion", err)
	}

	if _, err := k.ToMesh(nil); err == nil {
		t.Error("expected an error for a nil surface")
	}
}
