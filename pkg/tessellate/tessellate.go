// Package tessellate splits a scene into its top-level parts and produces
// one triangle mesh per part using a kernel.Mesher.
package tessellate

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/sdftrace/pkg/implicit"
	"github.com/chazu/sdftrace/pkg/kernel"
)

// Parts returns the separable pieces of root: the leaves reached by
// descending through sharp unions. A blended union is one part.
func Parts(root implicit.Surface) []implicit.Surface {
	if root == nil {
		return nil
	}
	u, ok := root.(*implicit.Union)
	if !ok || u.S > 0 {
		return []implicit.Surface{root}
	}
	var parts []implicit.Surface
	for _, c := range u.Children() {
		parts = append(parts, Parts(c)...)
	}
	return parts
}

// Tessellate meshes every part of root concurrently. Meshes are named
// "<name>-<n>" in part order, or just name for a single-part scene. Parts
// that fall entirely outside the export region are skipped. The mesher is
// read-only and never mutates the scene.
func Tessellate(root implicit.Surface, m kernel.Mesher, name string) ([]*kernel.Mesh, error) {
	parts := Parts(root)
	meshes := make([]*kernel.Mesh, len(parts))

	var g errgroup.Group
	for i, p := range parts {
		g.Go(func() error {
			mesh, err := m.ToMesh(p)
			if errors.Is(err, kernel.ErrEmptyRegion) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("tessellate: part %d: %w", i+1, err)
			}
			mesh.Name = name
			if len(parts) > 1 {
				mesh.Name = fmt.Sprintf("%s-%d", name, i+1)
			}
			meshes[i] = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := meshes[:0]
	for _, mesh := range meshes {
		if mesh != nil {
			out = append(out, mesh)
		}
	}
	return out, nil
}
