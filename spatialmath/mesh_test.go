package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.uber.org/multierr"
)

func makeSimpleTriangleMesh(t *testing.T) *Mesh {
	t.Helper()
	m, err := NewMeshFromVertices([][3]r3.Vector{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 0.6, Y: 0.6, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 0, Y: 0, Z: 10}, {X: 1, Y: 0, Z: 10}, {X: 0, Y: 1, Z: 10}},
	}, "simple")
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestNewMesh(t *testing.T) {
	tri := makeTestTriangle(t, r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 0, Z: 0}, r3.Vector{X: 0, Y: 1, Z: 0})
	triangles := []*Triangle{tri}
	mesh := NewMesh(triangles, "test_mesh")

	test.That(t, mesh.Label(), test.ShouldEqual, "test_mesh")
	test.That(t, mesh.Len(), test.ShouldEqual, 1)
	test.That(t, mesh.Triangle(0), test.ShouldEqual, tri)

	// the mesh keeps its own copy of the triangle list
	triangles[0] = nil
	test.That(t, mesh.Triangle(0), test.ShouldEqual, tri)
}

func TestNewMeshFromVertices(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		m := makeSimpleTriangleMesh(t)
		test.That(t, m.Len(), test.ShouldEqual, 3)
		test.That(t, m.Triangle(2).Points()[0], test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 10})
		test.That(t, m.Shapes()[1], test.ShouldEqual, m.Triangle(1))
	})

	t.Run("degenerate triangles abort construction", func(t *testing.T) {
		m, err := NewMeshFromVertices([][3]r3.Vector{
			{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
			{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}},
			{{X: 3, Y: 3, Z: 3}, {X: 3, Y: 3, Z: 3}, {X: 0, Y: 1, Z: 0}},
		}, "bad")
		test.That(t, m, test.ShouldBeNil)
		test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
		test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
		test.That(t, err.Error(), test.ShouldContainSubstring, "triangle 1")
		test.That(t, err.Error(), test.ShouldContainSubstring, "triangle 2")
	})
}

func TestMeshBoundingBox(t *testing.T) {
	box, err := makeSimpleTriangleMesh(t).BoundingBox()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, box.Min(), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, box.Max(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 10})

	_, err = NewMesh(nil, "").BoundingBox()
	test.That(t, errors.Is(err, ErrEmptyInput), test.ShouldBeTrue)
}

func TestNearestShape(t *testing.T) {
	m := makeSimpleTriangleMesh(t)

	pt, dist, idx := NearestShape(m.Shapes(), r3.Vector{X: 0.1, Y: 0.1, Z: 8}, math.Inf(1))
	test.That(t, idx, test.ShouldEqual, 2)
	test.That(t, dist, test.ShouldAlmostEqual, 2)
	test.That(t, R3VectorAlmostEqual(pt, r3.Vector{X: 0.1, Y: 0.1, Z: 10}, 1e-9), test.ShouldBeTrue)

	pt, dist, idx = NearestShape(m.Shapes(), r3.Vector{X: 0.1, Y: 0.1, Z: 3}, math.Inf(1))
	test.That(t, idx, test.ShouldEqual, 0)
	test.That(t, dist, test.ShouldAlmostEqual, 3)
	test.That(t, R3VectorAlmostEqual(pt, r3.Vector{X: 0.1, Y: 0.1, Z: 0}, 1e-9), test.ShouldBeTrue)

	_, dist, idx = NearestShape(m.Shapes(), r3.Vector{X: 0.1, Y: 0.1, Z: 5}, 4)
	test.That(t, idx, test.ShouldEqual, -1)
	test.That(t, dist, test.ShouldEqual, 4)

	// boxes are shapes too
	box, err := NewAABBFromBounds(r3.Vector{X: 5, Y: 5, Z: 5}, r3.Vector{X: 6, Y: 6, Z: 6})
	test.That(t, err, test.ShouldBeNil)
	_, dist, idx = NearestShape([]Shape{m.Triangle(0), box}, r3.Vector{X: 5.5, Y: 5.5, Z: 7}, math.Inf(1))
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, dist, test.ShouldEqual, 1)
}
