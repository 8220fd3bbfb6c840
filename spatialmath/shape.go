package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Shape is anything that can answer a thresholded closest point query and be bounded by a box.
type Shape interface {
	// ClosestPointAndDistance returns the closest point on the shape to pt and its distance, or the
	// zero vector and +Inf if the shape is farther than maxDist.
	ClosestPointAndDistance(pt r3.Vector, maxDist float64) (r3.Vector, float64)
	BoundingBox() AABB
}

var (
	_ Shape = (*Triangle)(nil)
	_ Shape = AABB{}
)

// NearestShape checks every shape and returns the closest point found within maxDist, its distance
// and the index of the shape it belongs to. The index is -1 if nothing was within maxDist, in
// which case the returned distance is maxDist.
func NearestShape(shapes []Shape, pt r3.Vector, maxDist float64) (r3.Vector, float64, int) {
	var closest r3.Vector
	best := -1
	for i, s := range shapes {
		if p, d := s.ClosestPointAndDistance(pt, maxDist); d < maxDist {
			closest, maxDist, best = p, d, i
		}
	}
	return closest, maxDist, best
}
