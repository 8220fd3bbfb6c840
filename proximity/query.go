package proximity

import (
	"math"

	"github.com/golang/geo/r3"
)

// Result is the answer to a nearest-point query. When Found is false, Point is the zero vector,
// Distance is the threshold the query ran with and Triangle is -1.
type Result struct {
	Point    r3.Vector
	Distance float64
	Found    bool
	// Triangle is the mesh index of the triangle Point lies on.
	Triangle int
}

func notFound(maxDist float64) Result {
	return Result{Distance: maxDist, Triangle: -1}
}

// QueryStats counts the work done by a single query.
type QueryStats struct {
	NodesVisited     int
	SubtreesPruned   int
	TrianglesTested  int
	TrianglesSkipped int
}

// query is the per-call traversal state. The index itself is never written to.
type query struct {
	idx   *Index
	point r3.Vector
	stats QueryStats
}

// Query returns the closest point on the mesh to point, if one is within maxDist. A point exactly
// maxDist away is not found. A NaN or negative maxDist finds nothing.
func (idx *Index) Query(point r3.Vector, maxDist float64) Result {
	res, _ := idx.QueryWithStats(point, maxDist)
	return res
}

// ClosestPoint returns the closest point on the mesh to point, with no distance limit.
func (idx *Index) ClosestPoint(point r3.Vector) Result {
	return idx.Query(point, math.Inf(1))
}

// QueryWithStats is Query, also reporting how much of the hierarchy was searched.
func (idx *Index) QueryWithStats(point r3.Vector, maxDist float64) (Result, QueryStats) {
	if math.IsNaN(maxDist) || maxDist < 0 {
		return notFound(maxDist), QueryStats{}
	}
	q := &query{idx: idx, point: point}
	return q.visit(0, notFound(maxDist)), q.stats
}

// visit searches the subtree rooted at id for anything strictly closer than best.
func (q *query) visit(id int, best Result) Result {
	q.stats.NodesVisited++
	n := &q.idx.nodes[id]

	if n.isLeaf() {
		for _, i := range n.indices {
			if _, bound := q.idx.triangleBoxes[i].ClosestPointAndDistance(q.point, best.Distance); bound >= best.Distance {
				q.stats.TrianglesSkipped++
				continue
			}
			q.stats.TrianglesTested++
			pt, dist := q.idx.mesh.Triangle(i).ClosestPointAndDistance(q.point, best.Distance)
			if dist < best.Distance {
				best = Result{Point: pt, Distance: dist, Found: true, Triangle: i}
			}
		}
		return best
	}

	first, firstBound := q.bound(n.left, best.Distance)
	second, secondBound := q.bound(n.right, best.Distance)
	if secondBound < firstBound {
		first, second = second, first
		firstBound, secondBound = secondBound, firstBound
	}

	for _, child := range []struct {
		id    int
		bound float64
	}{{first, firstBound}, {second, secondBound}} {
		if child.id == noNode {
			continue
		}
		if child.bound < best.Distance {
			best = q.visit(child.id, best)
		} else {
			q.stats.SubtreesPruned++
		}
	}
	return best
}

// bound is the distance from the query point to a child's box, +Inf for a missing child or one
// beyond maxDist.
func (q *query) bound(id int, maxDist float64) (int, float64) {
	if id == noNode {
		return noNode, math.Inf(1)
	}
	_, dist := q.idx.nodes[id].box.ClosestPointAndDistance(q.point, maxDist)
	return id, dist
}
