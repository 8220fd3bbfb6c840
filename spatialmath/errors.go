package spatialmath

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDegenerateGeometry is returned when a computation needs a direction from a vector with
	// (near) zero length, e.g. the normal of a triangle whose vertices are collinear.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrEmptyInput is returned when an operation needs at least one element, such as the union of
	// zero boxes or an index over a mesh with no triangles.
	ErrEmptyInput = errors.New("empty input")
)

func newBadGeometryDimensionsError(g interface{}) error {
	return fmt.Errorf("invalid dimension(s) for geometry type %T", g)
}

func newDegenerateTriangleError(p0, p1, p2 fmt.Stringer) error {
	return errors.Wrapf(ErrDegenerateGeometry, "triangle (%v, %v, %v) has no area", p0, p1, p2)
}
