package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/meshprox/logging"
	"go.viam.com/meshprox/spatialmath"
)

// NewMeshFromFile loads a mesh, choosing the format by file extension. The mesh is labeled with
// the path.
func NewMeshFromFile(path string, logger logging.Logger) (*spatialmath.Mesh, error) {
	mesh, err := newMeshFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load mesh from %s", path)
	}
	logger.Debugw("loaded mesh", "path", path, "triangles", mesh.Len())
	return mesh, nil
}

func newMeshFromFile(path string) (*spatialmath.Mesh, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b Builder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".triangles", ".tri", ".txt":
		b = TrianglesBuilder{f}
	case ".ply":
		b = PLYBuilder{f}
	case ".stl":
		b = STLBuilder{f}
	default:
		return nil, errors.Errorf("unsupported mesh file format: %q (must be .triangles, .tri, .txt, .ply or .stl)", ext)
	}
	return NewMesh(b, path)
}
