package meshio

import (
	"io"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// PLYBuilder reads the vertex and face elements of a PLY stream. Faces with more than three
// vertices are split into a fan of triangles around their first vertex.
type PLYBuilder struct {
	Reader io.Reader
}

// Build parses the whole stream.
func (b PLYBuilder) Build() (vertices [][3]r3.Vector, err error) {
	// goply reports malformed input by panicking
	defer func() {
		if r := recover(); r != nil {
			vertices = nil
			err = errors.Errorf("malformed ply data: %v", r)
		}
	}()

	ply := goply.New(b.Reader)

	var points []r3.Vector
	for i, elem := range ply.Elements("vertex") {
		pt, err := plyPoint(elem)
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
		points = append(points, pt)
	}

	for i, elem := range ply.Elements("face") {
		indices, err := plyFaceIndices(elem, len(points))
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
		for k := 1; k+1 < len(indices); k++ {
			vertices = append(vertices, [3]r3.Vector{points[indices[0]], points[indices[k]], points[indices[k+1]]})
		}
	}
	return vertices, nil
}

func plyPoint(elem map[string]interface{}) (r3.Vector, error) {
	var coords [3]float64
	for i, name := range []string{"x", "y", "z"} {
		raw, ok := elem[name]
		if !ok {
			return r3.Vector{}, errors.Errorf("missing property %q", name)
		}
		val, err := cast.ToFloat64E(raw)
		if err != nil {
			return r3.Vector{}, err
		}
		coords[i] = val
	}
	return r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func plyFaceIndices(elem map[string]interface{}, numPoints int) ([]int, error) {
	raw, ok := elem["vertex_indices"]
	if !ok {
		raw, ok = elem["vertex_index"]
	}
	if !ok {
		return nil, errors.New("missing property \"vertex_indices\"")
	}
	indices, err := cast.ToIntSliceE(raw)
	if err != nil {
		return nil, err
	}
	if len(indices) < 3 {
		return nil, errors.Errorf("face has %d vertices, need at least 3", len(indices))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= numPoints {
			return nil, errors.Errorf("vertex index %d out of range [0, %d)", idx, numPoints)
		}
	}
	return indices, nil
}
