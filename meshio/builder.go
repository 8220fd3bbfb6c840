// Package meshio reads triangle meshes from text, PLY and STL sources and tessellates procedural
// SDF solids.
package meshio

import (
	"github.com/golang/geo/r3"

	"go.viam.com/meshprox/spatialmath"
)

// Builder produces the vertex triples of a mesh, in mesh order.
type Builder interface {
	Build() ([][3]r3.Vector, error)
}

// NewMesh runs the builder and constructs a mesh from its output. A builder error is returned as
// is, before any triangle is constructed.
func NewMesh(b Builder, label string) (*spatialmath.Mesh, error) {
	vertices, err := b.Build()
	if err != nil {
		return nil, err
	}
	return spatialmath.NewMeshFromVertices(vertices, label)
}

// StaticBuilder is a Builder over vertices that are already in memory.
type StaticBuilder [][3]r3.Vector

// Build returns a copy of the vertices.
func (b StaticBuilder) Build() ([][3]r3.Vector, error) {
	return append([][3]r3.Vector(nil), b...), nil
}
