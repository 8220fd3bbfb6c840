// Package proximity answers nearest-point queries against a static triangle mesh using a bounding
// volume hierarchy built once over the mesh's triangles.
package proximity

import (
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/meshprox/logging"
	"go.viam.com/meshprox/spatialmath"
)

// noNode marks a missing child or parent.
const noNode = -1

// A node whose largest extent is at or below this length is never split again.
const minSplitExtent = 1e-9

// node is an element of the index's node arena. Leaves are the nodes that have neither child and
// only they carry triangle indices.
type node struct {
	box         spatialmath.AABB
	left, right int
	parent      int
	indices     []int
}

func (n *node) isLeaf() bool {
	return n.left == noNode && n.right == noNode
}

// Index is a bounding volume hierarchy over the triangles of a mesh. It is read-only once built, so
// any number of goroutines may query it concurrently.
type Index struct {
	mesh          *spatialmath.Mesh
	triangleBoxes []spatialmath.AABB
	nodes         []node
}

// NewIndex builds the hierarchy for the given mesh. An empty or nil mesh is rejected with
// spatialmath.ErrEmptyInput.
func NewIndex(mesh *spatialmath.Mesh, logger logging.Logger) (*Index, error) {
	if mesh == nil || mesh.Len() == 0 {
		return nil, errors.Wrap(spatialmath.ErrEmptyInput, "cannot index a mesh without triangles")
	}
	start := time.Now()

	idx := &Index{
		mesh:          mesh,
		triangleBoxes: lo.Map(mesh.Triangles(), func(t *spatialmath.Triangle, _ int) spatialmath.AABB { return t.BoundingBox() }),
	}
	rootBox, err := spatialmath.UnionAABB(idx.triangleBoxes...)
	if err != nil {
		return nil, err
	}
	all := make([]int, mesh.Len())
	for i := range all {
		all[i] = i
	}
	idx.partition(idx.addNode(rootBox, all, noNode))

	stats := idx.Stats()
	logger.Debugw("built proximity index",
		"mesh", mesh.Label(),
		"triangles", mesh.Len(),
		"nodes", stats.Nodes,
		"leaves", stats.Leaves,
		"depth", stats.MaxDepth,
		"duration", time.Since(start),
	)
	return idx, nil
}

func (idx *Index) addNode(box spatialmath.AABB, indices []int, parent int) int {
	idx.nodes = append(idx.nodes, node{box: box, left: noNode, right: noNode, parent: parent, indices: indices})
	return len(idx.nodes) - 1
}

// partition splits a node at the spatial median of its largest axis. Triangles entirely inside
// the lower half go left under the lower half box. The rest go right under their tight bounds,
// unless that would reproduce the parent's triangle set.
func (idx *Index) partition(id int) {
	indices := idx.nodes[id].indices
	if len(indices) <= 1 {
		return
	}
	extent, axis := idx.nodes[id].box.LargestAxis()
	if extent <= minSplitExtent {
		return
	}

	lower := idx.nodes[id].box.LowerHalf(axis)
	if lower.Max() == idx.nodes[id].box.Max() {
		// the split plane rounded onto the max bound, so the left child would be this node again
		return
	}
	var inside, outside []int
	for _, i := range indices {
		if idx.mesh.Triangle(i).InsideAABB(lower) {
			inside = append(inside, i)
		} else {
			outside = append(outside, i)
		}
	}

	if len(inside) > 0 {
		child := idx.addNode(lower, inside, id)
		idx.nodes[id].left = child
		idx.partition(child)
	}
	if len(outside) > 0 && len(outside) != len(indices) {
		// non-empty, so the union cannot fail
		box, _ := spatialmath.UnionAABB(lo.Map(outside, func(i, _ int) spatialmath.AABB { return idx.triangleBoxes[i] })...)
		child := idx.addNode(box, outside, id)
		idx.nodes[id].right = child
		idx.partition(child)
	}
	if !idx.nodes[id].isLeaf() {
		idx.nodes[id].indices = nil
	}
}

// Mesh returns the indexed mesh.
func (idx *Index) Mesh() *spatialmath.Mesh {
	return idx.mesh
}

// TriangleBox returns the precomputed bounding box of triangle i.
func (idx *Index) TriangleBox(i int) spatialmath.AABB {
	return idx.triangleBoxes[i]
}

// Bounds returns the box around the whole mesh.
func (idx *Index) Bounds() spatialmath.AABB {
	return idx.nodes[0].box
}
