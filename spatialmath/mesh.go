package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Mesh is an ordered, immutable set of triangles. The position of a triangle in the mesh is its
// index for the lifetime of the mesh.
type Mesh struct {
	triangles []*Triangle
	label     string
}

// NewMesh creates a mesh from already constructed triangles. The slice is copied.
func NewMesh(triangles []*Triangle, label string) *Mesh {
	return &Mesh{
		triangles: append([]*Triangle(nil), triangles...),
		label:     label,
	}
}

// NewMeshFromVertices builds one triangle per vertex triple. If any triple is degenerate the mesh
// is not created, and the returned error names every offending index.
func NewMeshFromVertices(vertices [][3]r3.Vector, label string) (*Mesh, error) {
	triangles := make([]*Triangle, 0, len(vertices))
	var errs error
	for i, v := range vertices {
		tri, err := NewTriangle(v[0], v[1], v[2])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "triangle %d", i))
			continue
		}
		triangles = append(triangles, tri)
	}
	if errs != nil {
		return nil, errs
	}
	return &Mesh{triangles: triangles, label: label}, nil
}

// Label returns the label of the mesh.
func (m *Mesh) Label() string {
	return m.label
}

// Len returns the number of triangles.
func (m *Mesh) Len() int {
	return len(m.triangles)
}

// Triangles returns the triangles of the mesh. The slice must not be modified.
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// Triangle returns the triangle at index i.
func (m *Mesh) Triangle(i int) *Triangle {
	return m.triangles[i]
}

// Shapes returns the triangles of the mesh as Shapes, in mesh order.
func (m *Mesh) Shapes() []Shape {
	return lo.Map(m.triangles, func(t *Triangle, _ int) Shape { return t })
}

// BoundingBox returns the box around every triangle in the mesh.
func (m *Mesh) BoundingBox() (AABB, error) {
	if len(m.triangles) == 0 {
		return AABB{}, errors.Wrap(ErrEmptyInput, "mesh has no triangles")
	}
	return UnionAABB(lo.Map(m.triangles, func(t *Triangle, _ int) AABB { return t.BoundingBox() })...)
}
