package proximity

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/meshprox/spatialmath"
)

// BruteForce checks every triangle of the mesh. It answers the same question as Index.Query
// without building anything and is the reference the index is verified against.
func BruteForce(mesh *spatialmath.Mesh, point r3.Vector, maxDist float64) Result {
	if math.IsNaN(maxDist) || maxDist < 0 {
		return notFound(maxDist)
	}
	pt, dist, i := spatialmath.NearestShape(mesh.Shapes(), point, maxDist)
	if i < 0 {
		return notFound(maxDist)
	}
	return Result{Point: pt, Distance: dist, Found: true, Triangle: i}
}
