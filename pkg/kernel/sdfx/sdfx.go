// Package sdfx implements kernel.Mesher using the marching cubes renderers
// of the github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Mesher = (*Mesher)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest side of the export region.
const DefaultMeshCells = 200

// Mesher polygonizes implicit surfaces with sdfx.
type Mesher struct {
	cells  int
	extent float64
}

// Option configures a Mesher.
type Option func(*Mesher)

// WithCells sets the marching cubes resolution.
func WithCells(n int) Option {
	return func(m *Mesher) {
		if n > 0 {
			m.cells = n
		}
	}
}

// WithExtent sets the half-size of the cube that clips unbounded scenes.
func WithExtent(e float64) Option {
	return func(m *Mesher) {
		if e > 0 {
			m.extent = e
		}
	}
}

// New returns a Mesher with the default resolution and extent.
func New(opts ...Option) *Mesher {
	m := &Mesher{cells: DefaultMeshCells, extent: kernel.DefaultExtent}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ToMesh converts a surface to a triangle mesh using marching cubes over
// its bounding box clipped to the export region.
func (m *Mesher) ToMesh(s implicit.Surface) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("mesh: %w", implicit.ErrNoChildren)
	}
	region, err := kernel.ExportRegion(s.BoundingBox(), m.extent)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}

	renderer := render.NewMarchingCubesUniform(m.cells)
	triangles := render.ToTriangles(kernel.Clip(s, region), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
