package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const (
	// normEpsilon is the smallest vector length that can still be normalized.
	normEpsilon = 1e-12
	// floatEpsilon is the barycentric slack used to accept points on a triangle's boundary.
	floatEpsilon = 1e-6
	// containsEpsilon is the slack applied to each bound of a box in ContainsPoint.
	containsEpsilon = 1e-10
)

// Normalize returns v scaled to unit length. Vectors shorter than 1e-12 have no direction and
// produce an error wrapping ErrDegenerateGeometry.
func Normalize(v r3.Vector) (r3.Vector, error) {
	n := v.Norm()
	if n < normEpsilon || math.IsNaN(n) {
		return r3.Vector{}, errors.Wrapf(ErrDegenerateGeometry, "cannot normalize vector %v of length %g", v, n)
	}
	return v.Mul(1 / n), nil
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// axisValue returns the x, y or z component of v for axis 0, 1 or 2.
func axisValue(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// withAxisValue returns a copy of v with the component for axis replaced by val.
func withAxisValue(v r3.Vector, axis int, val float64) r3.Vector {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

func clamp(val, low, high float64) float64 {
	if val < low {
		return low
	}
	if val > high {
		return high
	}
	return val
}
