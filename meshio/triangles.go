package meshio

import (
	"bufio"
	"io"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// TrianglesBuilder reads whitespace separated numbers, nine per triangle: the x, y and z of each
// of the three vertices in turn. Line breaks carry no meaning.
type TrianglesBuilder struct {
	Reader io.Reader
}

// Build parses the whole stream.
func (b TrianglesBuilder) Build() ([][3]r3.Vector, error) {
	scanner := bufio.NewScanner(b.Reader)
	scanner.Split(bufio.ScanWords)

	var vertices [][3]r3.Vector
	var coords [9]float64
	n := 0
	for scanner.Scan() {
		val, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "triangle %d", len(vertices))
		}
		coords[n] = val
		n++
		if n == len(coords) {
			vertices = append(vertices, [3]r3.Vector{
				{X: coords[0], Y: coords[1], Z: coords[2]},
				{X: coords[3], Y: coords[4], Z: coords[5]},
				{X: coords[6], Y: coords[7], Z: coords[8]},
			})
			n = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n != 0 {
		return nil, errors.Errorf("triangle %d is incomplete, got %d of 9 coordinates", len(vertices), n)
	}
	return vertices, nil
}
