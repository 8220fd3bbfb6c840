package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Ordered list of box vertices, as signs applied to the half extents.
var boxVertices = [8]r3.Vector{
	{1, 1, 1},
	{1, 1, -1},
	{1, -1, 1},
	{1, -1, -1},
	{-1, 1, 1},
	{-1, 1, -1},
	{-1, -1, 1},
	{-1, -1, -1},
}

// AABB is an axis aligned bounding box. It is stored both as center and half extents and as a
// min/max range; the constructors keep the two consistent and the value is never modified after.
type AABB struct {
	center      r3.Vector
	halfExtents r3.Vector
	min         r3.Vector
	max         r3.Vector
}

// NewAABB instantiates a box from its center and half extents. Negative half extents are not
// allowed; zero is, since a flat triangle has a flat bounding box.
func NewAABB(center, halfExtents r3.Vector) (AABB, error) {
	if halfExtents.X < 0 || halfExtents.Y < 0 || halfExtents.Z < 0 {
		return AABB{}, newBadGeometryDimensionsError(AABB{})
	}
	return AABB{
		center:      center,
		halfExtents: halfExtents,
		min:         center.Sub(halfExtents),
		max:         center.Add(halfExtents),
	}, nil
}

// NewAABBFromBounds instantiates a box spanning [min, max] on every axis.
func NewAABBFromBounds(min, max r3.Vector) (AABB, error) {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return AABB{}, newBadGeometryDimensionsError(AABB{})
	}
	return aabbFromBounds(min, max), nil
}

// aabbFromBounds skips validation; callers guarantee min <= max.
func aabbFromBounds(min, max r3.Vector) AABB {
	return AABB{
		center:      min.Add(max).Mul(0.5),
		halfExtents: max.Sub(min).Mul(0.5),
		min:         min,
		max:         max,
	}
}

// UnionAABB returns the tightest box enclosing every given box. The union of nothing is undefined
// and returns ErrEmptyInput.
func UnionAABB(boxes ...AABB) (AABB, error) {
	if len(boxes) == 0 {
		return AABB{}, errors.Wrap(ErrEmptyInput, "cannot compute the union of zero boxes")
	}
	minPt, maxPt := boxes[0].min, boxes[0].max
	for _, b := range boxes[1:] {
		minPt = r3.Vector{X: math.Min(minPt.X, b.min.X), Y: math.Min(minPt.Y, b.min.Y), Z: math.Min(minPt.Z, b.min.Z)}
		maxPt = r3.Vector{X: math.Max(maxPt.X, b.max.X), Y: math.Max(maxPt.Y, b.max.Y), Z: math.Max(maxPt.Z, b.max.Z)}
	}
	return aabbFromBounds(minPt, maxPt), nil
}

// Center returns the center of the box.
func (b AABB) Center() r3.Vector {
	return b.center
}

// HalfExtents returns half the size of the box along each axis.
func (b AABB) HalfExtents() r3.Vector {
	return b.halfExtents
}

// Min returns the corner with the smallest coordinates.
func (b AABB) Min() r3.Vector {
	return b.min
}

// Max returns the corner with the largest coordinates.
func (b AABB) Max() r3.Vector {
	return b.max
}

// Vertices returns the eight corners of the box.
func (b AABB) Vertices() [8]r3.Vector {
	var verts [8]r3.Vector
	for i, sign := range boxVertices {
		verts[i] = b.center.Add(r3.Vector{
			X: sign.X * b.halfExtents.X,
			Y: sign.Y * b.halfExtents.Y,
			Z: sign.Z * b.halfExtents.Z,
		})
	}
	return verts
}

// String returns a human readable string that represents the box.
func (b AABB) String() string {
	return fmt.Sprintf("Type: AABB | Min: X:%.3f, Y:%.3f, Z:%.3f | Max: X:%.3f, Y:%.3f, Z:%.3f",
		b.min.X, b.min.Y, b.min.Z, b.max.X, b.max.Y, b.max.Z)
}

// BoundingBox returns the box itself.
func (b AABB) BoundingBox() AABB {
	return b
}

// ContainsPoint returns true if pt lies inside the box or on its boundary. Each bound gets a small
// amount of slack so points computed to lie on a face are not rejected by rounding.
func (b AABB) ContainsPoint(pt r3.Vector) bool {
	return pt.X >= b.min.X-containsEpsilon && pt.X <= b.max.X+containsEpsilon &&
		pt.Y >= b.min.Y-containsEpsilon && pt.Y <= b.max.Y+containsEpsilon &&
		pt.Z >= b.min.Z-containsEpsilon && pt.Z <= b.max.Z+containsEpsilon
}

// ClosestPointAndDistance returns the point in or on the box closest to pt and its distance from pt.
// If that distance is larger than maxDist, the zero vector and +Inf are returned instead, so the box
// can be used as a discard test without further branching.
func (b AABB) ClosestPointAndDistance(pt r3.Vector, maxDist float64) (r3.Vector, float64) {
	closest := r3.Vector{
		X: clamp(pt.X, b.min.X, b.max.X),
		Y: clamp(pt.Y, b.min.Y, b.max.Y),
		Z: clamp(pt.Z, b.min.Z, b.max.Z),
	}
	dist := pt.Sub(closest).Norm()
	if dist > maxDist {
		return r3.Vector{}, math.Inf(1)
	}
	return closest, dist
}

// LargestAxis returns the full length of the box along its longest axis, and that axis (0=x, 1=y,
// 2=z). Ties go to the earlier axis.
func (b AABB) LargestAxis() (float64, int) {
	axis := 0
	if b.halfExtents.Y > axisValue(b.halfExtents, axis) {
		axis = 1
	}
	if b.halfExtents.Z > axisValue(b.halfExtents, axis) {
		axis = 2
	}
	return 2 * axisValue(b.halfExtents, axis), axis
}

// LowerHalf returns the box cut in half along axis, keeping the half nearest the min corner. The
// other two axes are unchanged. When the extent is below the float spacing at the box's
// coordinates the midpoint rounds onto the max bound and the box comes back unchanged.
func (b AABB) LowerHalf(axis int) AABB {
	mid := math.Min(axisValue(b.min, axis)+axisValue(b.halfExtents, axis), axisValue(b.max, axis))
	return aabbFromBounds(b.min, withAxisValue(b.max, axis, mid))
}
