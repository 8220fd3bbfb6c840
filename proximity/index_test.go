package proximity

import (
	"math"
	"math/rand"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/meshprox/logging"
	"go.viam.com/meshprox/meshio"
	"go.viam.com/meshprox/spatialmath"
)

func makeTestMesh(t *testing.T, vertices [][3]r3.Vector) *spatialmath.Mesh {
	t.Helper()
	mesh, err := spatialmath.NewMeshFromVertices(vertices, "test")
	test.That(t, err, test.ShouldBeNil)
	return mesh
}

func makeTestIndex(t *testing.T, mesh *spatialmath.Mesh) *Index {
	t.Helper()
	idx, err := NewIndex(mesh, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	checkIndexInvariants(t, idx)
	return idx
}

func sphereMesh(t *testing.T, radius float64, cells int) *spatialmath.Mesh {
	t.Helper()
	sphere, err := sdf.Sphere3D(radius)
	test.That(t, err, test.ShouldBeNil)
	mesh, err := meshio.NewMesh(meshio.SDFBuilder{SDF: sphere, Cells: cells}, "sphere")
	test.That(t, err, test.ShouldBeNil)
	return mesh
}

func randomVertices(rng *rand.Rand, n int, center r3.Vector, spread, size float64) [][3]r3.Vector {
	randIn := func(c r3.Vector, half float64) r3.Vector {
		return r3.Vector{
			X: c.X + half*(2*rng.Float64()-1),
			Y: c.Y + half*(2*rng.Float64()-1),
			Z: c.Z + half*(2*rng.Float64()-1),
		}
	}
	vertices := make([][3]r3.Vector, 0, n)
	for len(vertices) < n {
		p0 := randIn(center, spread)
		tri := [3]r3.Vector{p0, randIn(p0, size), randIn(p0, size)}
		if _, err := spatialmath.NewTriangle(tri[0], tri[1], tri[2]); err == nil {
			vertices = append(vertices, tri)
		}
	}
	return vertices
}

// checkIndexInvariants asserts that every triangle lives in exactly one leaf, that every box on the
// path from a leaf to the root contains the leaf's triangles, and that the links are consistent.
func checkIndexInvariants(t *testing.T, idx *Index) {
	t.Helper()
	seen := make([]int, idx.mesh.Len())
	test.That(t, idx.nodes[0].parent, test.ShouldEqual, noNode)
	for id := range idx.nodes {
		n := &idx.nodes[id]
		for _, child := range []int{n.left, n.right} {
			if child != noNode {
				test.That(t, idx.nodes[child].parent, test.ShouldEqual, id)
			}
		}
		if !n.isLeaf() {
			test.That(t, n.indices, test.ShouldBeNil)
			continue
		}
		test.That(t, n.indices, test.ShouldNotBeEmpty)
		for _, i := range n.indices {
			seen[i]++
			for ancestor := id; ancestor != noNode; ancestor = idx.nodes[ancestor].parent {
				for _, pt := range idx.mesh.Triangle(i).Points() {
					test.That(t, idx.nodes[ancestor].box.ContainsPoint(pt), test.ShouldBeTrue)
				}
			}
		}
	}
	for _, count := range seen {
		test.That(t, count, test.ShouldEqual, 1)
	}
}

func TestNewIndex(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("empty mesh", func(t *testing.T) {
		idx, err := NewIndex(spatialmath.NewMesh(nil, "empty"), logger)
		test.That(t, idx, test.ShouldBeNil)
		test.That(t, errors.Is(err, spatialmath.ErrEmptyInput), test.ShouldBeTrue)

		_, err = NewIndex(nil, logger)
		test.That(t, errors.Is(err, spatialmath.ErrEmptyInput), test.ShouldBeTrue)
	})

	t.Run("single triangle is a leaf", func(t *testing.T) {
		idx := makeTestIndex(t, makeTestMesh(t, [][3]r3.Vector{
			{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		}))
		test.That(t, idx.nodes, test.ShouldHaveLength, 1)
		test.That(t, idx.nodes[0].isLeaf(), test.ShouldBeTrue)
		test.That(t, idx.nodes[0].indices, test.ShouldResemble, []int{0})
		test.That(t, idx.Bounds().Min(), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
		test.That(t, idx.Bounds().Max(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 0})
	})

	t.Run("many triangles creates internal nodes", func(t *testing.T) {
		vertices := make([][3]r3.Vector, 10)
		for i := range vertices {
			x := float64(i)
			vertices[i] = [3]r3.Vector{{X: x, Y: 0, Z: 0}, {X: x + 1, Y: 0, Z: 0}, {X: x, Y: 1, Z: 0}}
		}
		idx := makeTestIndex(t, makeTestMesh(t, vertices))
		test.That(t, idx.nodes[0].isLeaf(), test.ShouldBeFalse)
		test.That(t, idx.nodes[0].left, test.ShouldNotEqual, noNode)
		test.That(t, idx.nodes[0].right, test.ShouldNotEqual, noNode)
		test.That(t, idx.TriangleBox(3).Min(), test.ShouldResemble, r3.Vector{X: 3, Y: 0, Z: 0})
	})

	t.Run("duplicate triangles stay together", func(t *testing.T) {
		tri := [3]r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
		vertices := [][3]r3.Vector{tri, tri, tri, tri, tri}
		idx := makeTestIndex(t, makeTestMesh(t, vertices))
		test.That(t, idx.nodes, test.ShouldHaveLength, 1)
		test.That(t, idx.nodes[0].indices, test.ShouldResemble, []int{0, 1, 2, 3, 4})

		res := idx.ClosestPoint(r3.Vector{X: 0.25, Y: 0.25, Z: 1})
		test.That(t, res.Found, test.ShouldBeTrue)
		test.That(t, res.Triangle, test.ShouldEqual, 0)
	})

	t.Run("a triangle spanning the node goes right", func(t *testing.T) {
		idx := makeTestIndex(t, makeTestMesh(t, [][3]r3.Vector{
			{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
			{{X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
		}))
		root := idx.nodes[0]
		test.That(t, idx.nodes[root.left].indices, test.ShouldResemble, []int{1})
		test.That(t, idx.nodes[root.right].indices, test.ShouldResemble, []int{0})
	})

	t.Run("clusters of tiny triangles", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		vertices := randomVertices(rng, 60, r3.Vector{}, 1e-3, 1e-4)
		vertices = append(vertices, [3]r3.Vector{{X: 5, Y: 5, Z: 5}, {X: 6, Y: 5, Z: 5}, {X: 5, Y: 6, Z: 5}})
		mesh := makeTestMesh(t, vertices)
		idx := makeTestIndex(t, mesh)

		for i := 0; i < 50; i++ {
			pt := r3.Vector{X: 2e-3 * (rng.Float64() - 0.5), Y: 2e-3 * (rng.Float64() - 0.5), Z: 2e-3 * (rng.Float64() - 0.5)}
			assertMatchesBruteForce(t, idx, pt, math.Inf(1))
		}
	})

	t.Run("splits that round back to the parent box stop", func(t *testing.T) {
		// Far from the origin the box is a few float steps wide, well above the extent guard,
		// and its midpoint rounds onto the max bound.
		b := math.Nextafter(1e12, math.Inf(1))
		step := math.Nextafter(b, math.Inf(1)) - b
		tri := [3]r3.Vector{{X: b, Y: b, Z: b}, {X: b + step, Y: b, Z: b}, {X: b, Y: b + step, Z: b}}
		idx := makeTestIndex(t, makeTestMesh(t, [][3]r3.Vector{tri, tri}))
		test.That(t, step, test.ShouldBeGreaterThan, minSplitExtent)
		test.That(t, idx.nodes, test.ShouldHaveLength, 1)
		test.That(t, idx.nodes[0].indices, test.ShouldResemble, []int{0, 1})

		res := idx.ClosestPoint(r3.Vector{X: b, Y: b, Z: b + 1})
		test.That(t, res.Found, test.ShouldBeTrue)
		test.That(t, res.Distance, test.ShouldAlmostEqual, 1, 1e-3)
	})

	t.Run("build is logged", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		_, err := NewIndex(makeTestMesh(t, randomVertices(rand.New(rand.NewSource(1)), 20, r3.Vector{}, 1, 0.3)), logger)
		test.That(t, err, test.ShouldBeNil)
		entries := logs.FilterMessage("built proximity index").All()
		test.That(t, entries, test.ShouldHaveLength, 1)
		test.That(t, entries[0].ContextMap()["triangles"], test.ShouldEqual, int64(20))
	})
}

func TestIndexStats(t *testing.T) {
	idx := makeTestIndex(t, makeTestMesh(t, [][3]r3.Vector{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 100, Y: 0, Z: 0}, {X: 101, Y: 0, Z: 0}, {X: 100, Y: 1, Z: 0}},
	}))
	stats := idx.Stats()
	test.That(t, stats, test.ShouldResemble, IndexStats{
		Triangles:      2,
		Nodes:          3,
		Leaves:         2,
		MaxDepth:       1,
		MeanLeafSize:   1,
		StdDevLeafSize: 0,
	})

	single := makeTestIndex(t, makeTestMesh(t, [][3]r3.Vector{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	})).Stats()
	test.That(t, single.Leaves, test.ShouldEqual, 1)
	test.That(t, single.MaxDepth, test.ShouldEqual, 0)
	test.That(t, single.MeanLeafSize, test.ShouldEqual, 1)
	test.That(t, single.StdDevLeafSize, test.ShouldEqual, 0)

	sphere := makeTestIndex(t, sphereMesh(t, 2, 12)).Stats()
	test.That(t, sphere.Leaves, test.ShouldBeGreaterThan, 1)
	test.That(t, sphere.MaxDepth, test.ShouldBeGreaterThan, 1)
	test.That(t, sphere.MeanLeafSize*float64(sphere.Leaves), test.ShouldAlmostEqual, float64(sphere.Triangles), 1e-6)
}
