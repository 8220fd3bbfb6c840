package meshio

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/meshprox/logging"
	"go.viam.com/meshprox/spatialmath"
)

// defaultSDFCells is the marching cubes resolution along the longest side of the solid.
const defaultSDFCells = 64

// SDFBuilder tessellates a signed distance field solid with uniform marching cubes. Marching
// cubes emits zero area slivers where the surface grazes a cell corner; those are dropped.
type SDFBuilder struct {
	SDF sdf.SDF3
	// Cells defaults to 64 when zero.
	Cells  int
	Logger logging.Logger
}

// Build renders the solid.
func (b SDFBuilder) Build() ([][3]r3.Vector, error) {
	if b.SDF == nil {
		return nil, errors.New("no sdf to tessellate")
	}
	cells := b.Cells
	if cells == 0 {
		cells = defaultSDFCells
	}
	if cells < 0 {
		return nil, errors.Errorf("invalid marching cubes resolution %d", cells)
	}

	triangles := render.ToTriangles(b.SDF, render.NewMarchingCubesUniform(cells))
	vertices := make([][3]r3.Vector, 0, len(triangles))
	dropped := 0
	for _, tri := range triangles {
		v := [3]r3.Vector{
			{X: tri[0].X, Y: tri[0].Y, Z: tri[0].Z},
			{X: tri[1].X, Y: tri[1].Y, Z: tri[1].Z},
			{X: tri[2].X, Y: tri[2].Y, Z: tri[2].Z},
		}
		if _, err := spatialmath.NewTriangle(v[0], v[1], v[2]); err != nil {
			dropped++
			continue
		}
		vertices = append(vertices, v)
	}
	if b.Logger != nil {
		b.Logger.Debugw("tessellated sdf", "cells", cells, "triangles", len(vertices), "dropped", dropped)
	}
	return vertices, nil
}
