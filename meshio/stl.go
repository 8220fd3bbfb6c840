package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// STLBuilder reads ASCII or binary STL. Facet normals are ignored; they are recomputed from the
// vertex order.
type STLBuilder struct {
	Reader io.Reader
}

// stlFacet is one 50-byte little-endian binary record: a float32 normal (12 bytes), three float32
// vertices (36 bytes) and a uint16 attribute byte count (2 bytes). The file itself is an 80-byte
// header and a uint32 facet count followed by the records.
type stlFacet struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// Build parses the whole stream.
func (b STLBuilder) Build() ([][3]r3.Vector, error) {
	data, err := io.ReadAll(b.Reader)
	if err != nil {
		return nil, err
	}
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	return parseASCIISTL(data)
}

// Binary files may also start with "solid", so the size implied by the facet count decides.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if uint64(len(data)) == stlHeaderSize+4+uint64(count)*stlTriangleSize {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid"))
}

func parseBinarySTL(data []byte) ([][3]r3.Vector, error) {
	reader := bytes.NewReader(data[stlHeaderSize:])
	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if uint64(reader.Len()) < uint64(count)*stlTriangleSize {
		return nil, errors.Errorf("binary stl declares %d facets but holds %d bytes of facet data", count, reader.Len())
	}

	vertices := make([][3]r3.Vector, 0, count)
	for i := uint32(0); i < count; i++ {
		var facet stlFacet
		if err := binary.Read(reader, binary.LittleEndian, &facet); err != nil {
			return nil, errors.Wrapf(err, "facet %d", i)
		}
		var tri [3]r3.Vector
		for j, v := range facet.Vertices {
			tri[j] = r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		vertices = append(vertices, tri)
	}
	return vertices, nil
}

func parseASCIISTL(data []byte) ([][3]r3.Vector, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Split(bufio.ScanWords)

	var vertices [][3]r3.Vector
	var facet []r3.Vector
	inFacet := false
	for scanner.Scan() {
		switch scanner.Text() {
		case "facet":
			if inFacet {
				return nil, errors.Errorf("facet %d is not closed", len(vertices))
			}
			inFacet = true
			facet = facet[:0]
		case "vertex":
			if !inFacet {
				return nil, errors.Errorf("vertex outside of a facet after facet %d", len(vertices))
			}
			var coords [3]float64
			for i := range coords {
				if !scanner.Scan() {
					return nil, errors.Errorf("facet %d: truncated vertex", len(vertices))
				}
				val, err := strconv.ParseFloat(scanner.Text(), 64)
				if err != nil {
					return nil, errors.Wrapf(err, "facet %d", len(vertices))
				}
				coords[i] = val
			}
			facet = append(facet, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
		case "endfacet":
			if !inFacet || len(facet) != 3 {
				return nil, errors.Errorf("facet %d has %d vertices, need 3", len(vertices), len(facet))
			}
			vertices = append(vertices, [3]r3.Vector{facet[0], facet[1], facet[2]})
			inFacet = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inFacet {
		return nil, errors.Errorf("facet %d is not closed", len(vertices))
	}
	return vertices, nil
}
