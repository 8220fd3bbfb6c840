package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Triangle is three vertices together with the quantities every distance query needs: the edge
// vectors, the unit normal, and the coefficients of the barycentric normal equations.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	e0 r3.Vector // p1 - p0
	e1 r3.Vector // p2 - p0
	e2 r3.Vector // p2 - p1

	normal r3.Vector

	// e0·e0, e0·e1, e1·e1 and the determinant of the resulting 2x2 system.
	a, b, c, det float64
}

// NewTriangle instantiates a triangle. Collinear or coincident vertices have no normal, and the
// returned error wraps ErrDegenerateGeometry.
func NewTriangle(p0, p1, p2 r3.Vector) (*Triangle, error) {
	e0 := p1.Sub(p0)
	e1 := p2.Sub(p0)
	normal, err := Normalize(e0.Cross(e1))
	if err != nil {
		return nil, newDegenerateTriangleError(p0, p1, p2)
	}
	a := e0.Norm2()
	b := e0.Dot(e1)
	c := e1.Norm2()
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		e0:     e0,
		e1:     e1,
		e2:     p2.Sub(p1),
		normal: normal,
		a:      a,
		b:      b,
		c:      c,
		det:    a*c - b*b,
	}, nil
}

// Points returns the three vertices of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal, oriented by the right hand rule over p0, p1, p2.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Edges returns p1-p0, p2-p0 and p2-p1.
func (t *Triangle) Edges() [3]r3.Vector {
	return [3]r3.Vector{t.e0, t.e1, t.e2}
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.e0.Cross(t.e1).Norm()
}

// Centroid returns the centroid of the triangle.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// BoundingBox returns the tightest axis aligned box around the three vertices.
func (t *Triangle) BoundingBox() AABB {
	return aabbFromBounds(
		r3.Vector{
			X: math.Min(t.p0.X, math.Min(t.p1.X, t.p2.X)),
			Y: math.Min(t.p0.Y, math.Min(t.p1.Y, t.p2.Y)),
			Z: math.Min(t.p0.Z, math.Min(t.p1.Z, t.p2.Z)),
		},
		r3.Vector{
			X: math.Max(t.p0.X, math.Max(t.p1.X, t.p2.X)),
			Y: math.Max(t.p0.Y, math.Max(t.p1.Y, t.p2.Y)),
			Z: math.Max(t.p0.Z, math.Max(t.p1.Z, t.p2.Z)),
		},
	)
}

// InsideAABB returns true if all three vertices lie within box.
func (t *Triangle) InsideAABB(box AABB) bool {
	return box.ContainsPoint(t.p0) && box.ContainsPoint(t.p1) && box.ContainsPoint(t.p2)
}

// ProjectOntoPlane drops pt onto the plane of the triangle. It returns the projected point and the
// signed height of pt above the plane, positive on the side the normal points to.
func (t *Triangle) ProjectOntoPlane(pt r3.Vector) (r3.Vector, float64) {
	signed := t.normal.Dot(t.p0.Sub(pt))
	return pt.Add(t.normal.Mul(signed)), -signed
}

// Barycentric returns (u, v) such that p0 + u*e0 + v*e1 is the projection of pt onto the plane of
// the triangle. ok is false if the system is singular.
func (t *Triangle) Barycentric(pt r3.Vector) (u, v float64, ok bool) {
	if t.det <= 0 {
		return 0, 0, false
	}
	d := pt.Sub(t.p0)
	x := t.e0.Dot(d)
	y := t.e1.Dot(d)
	u = (t.c*x - t.b*y) / t.det
	v = (t.a*y - t.b*x) / t.det
	return u, v, true
}

// PointFromBarycentric returns p0 + u*e0 + v*e1.
func (t *Triangle) PointFromBarycentric(u, v float64) r3.Vector {
	return t.p0.Add(t.e0.Mul(u)).Add(t.e1.Mul(v))
}

// ClosestPointAndDistance returns the point on the triangle closest to pt and the distance between
// them. If no point of the triangle lies within maxDist of pt, the zero vector and +Inf are returned.
func (t *Triangle) ClosestPointAndDistance(pt r3.Vector, maxDist float64) (r3.Vector, float64) {
	projected, height := t.ProjectOntoPlane(pt)
	planeDist := math.Abs(height)
	if planeDist > maxDist {
		return r3.Vector{}, math.Inf(1)
	}

	if u, v, ok := t.Barycentric(projected); ok {
		if u >= -floatEpsilon && v >= -floatEpsilon && u+v <= 1+floatEpsilon {
			return projected, planeDist
		}
	}

	// The projection falls outside the triangle so the closest point is on an edge. Offsets are
	// measured in the plane from the projected point.
	closestPt := ClosestPointSegmentPoint(t.p0, t.p1, projected)
	bestOffset := projected.Sub(closestPt).Norm2()

	newPt := ClosestPointSegmentPoint(t.p0, t.p2, projected)
	if offset := projected.Sub(newPt).Norm2(); offset < bestOffset {
		closestPt = newPt
		bestOffset = offset
	}

	newPt = ClosestPointSegmentPoint(t.p1, t.p2, projected)
	if offset := projected.Sub(newPt).Norm2(); offset < bestOffset {
		closestPt = newPt
		bestOffset = offset
	}

	dist := math.Sqrt(bestOffset + planeDist*planeDist)
	if dist > maxDist {
		return r3.Vector{}, math.Inf(1)
	}
	return closestPt, dist
}

// ClosestPointSegmentPoint takes a line segment defined by two points and a third point, and
// returns the point on the segment closest to the third point.
func ClosestPointSegmentPoint(segStart, segEnd, pt r3.Vector) r3.Vector {
	seg := segEnd.Sub(segStart)
	lenSq := seg.Norm2()
	if lenSq == 0 {
		return segStart
	}
	along := clamp(pt.Sub(segStart).Dot(seg)/lenSq, 0, 1)
	return segStart.Add(seg.Mul(along))
}
