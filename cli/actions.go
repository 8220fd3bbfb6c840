package cli

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/meshprox/logging"
	"go.viam.com/meshprox/meshio"
	"go.viam.com/meshprox/proximity"
)

// Log lines go to ErrWriter so they never interleave with table output.
func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(generalFlagDebug) {
		return logging.NewDebugLogger("meshprox", c.App.ErrWriter)
	}
	return logging.NewLogger("meshprox", c.App.ErrWriter)
}

func loadIndex(c *cli.Context, logger logging.Logger) (*proximity.Index, error) {
	mesh, err := meshio.NewMeshFromFile(c.String(meshFlagPath), logger)
	if err != nil {
		return nil, err
	}
	return proximity.NewIndex(mesh, logger.Sublogger("proximity"))
}

// parsePoints reads "x,y,z" triples. The flag library may already have split the values on
// commas, so all values are rejoined and read back three coordinates at a time.
func parsePoints(values []string) ([]r3.Vector, error) {
	joined := strings.Join(values, ",")
	coords := strings.Split(joined, ",")
	if len(coords)%3 != 0 {
		return nil, errors.Errorf("points %q must be x,y,z triples", joined)
	}
	points := make([]r3.Vector, 0, len(coords)/3)
	for _, triple := range lo.Chunk(coords, 3) {
		var vals [3]float64
		for i, coord := range triple {
			val, err := cast.ToFloat64E(strings.TrimSpace(coord))
			if err != nil {
				return nil, errors.Wrapf(err, "point %d", len(points))
			}
			vals[i] = val
		}
		points = append(points, r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]})
	}
	return points, nil
}

func formatPoint(pt r3.Vector) string {
	return fmt.Sprintf("%.6g, %.6g, %.6g", pt.X, pt.Y, pt.Z)
}

// queryAll runs one index query per point, spread over the given number of workers.
func queryAll(idx *proximity.Index, points []r3.Vector, maxDist float64, workers int) []proximity.Result {
	results := make([]proximity.Result, len(points))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, pt := range points {
		g.Go(func() error {
			results[i] = idx.Query(pt, maxDist)
			return nil
		})
	}
	//nolint:errcheck
	g.Wait()
	return results
}

// QueryAction prints the closest mesh point to every --point.
func QueryAction(c *cli.Context) error {
	logger := newLogger(c)
	idx, err := loadIndex(c, logger)
	if err != nil {
		return err
	}

	points, err := parsePoints(c.StringSlice(queryFlagPoint))
	if err != nil {
		return err
	}

	maxDist := c.Float64(queryFlagMaxDist)
	results := queryAll(idx, points, maxDist, c.Int(queryFlagWorkers))

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"#", "Point", "Closest", "Distance", "Triangle", "Found"})
	for i, res := range results {
		if !res.Found {
			t.AppendRow(table.Row{i, formatPoint(points[i]), "", "", "", false})
			continue
		}
		t.AppendRow(table.Row{i, formatPoint(points[i]), formatPoint(res.Point), fmt.Sprintf("%.6g", res.Distance), res.Triangle, true})
	}
	t.Render()
	return nil
}

// StatsAction prints the shape of the index built over --mesh.
func StatsAction(c *cli.Context) error {
	logger := newLogger(c)
	idx, err := loadIndex(c, logger)
	if err != nil {
		return err
	}
	stats := idx.Stats()
	bounds := idx.Bounds()

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Statistic", "Value"})
	t.AppendRows([]table.Row{
		{"Mesh", idx.Mesh().Label()},
		{"Triangles", stats.Triangles},
		{"Bounds min", formatPoint(bounds.Min())},
		{"Bounds max", formatPoint(bounds.Max())},
		{"Nodes", stats.Nodes},
		{"Leaves", stats.Leaves},
		{"Max depth", stats.MaxDepth},
		{"Mean leaf size", fmt.Sprintf("%.3f", stats.MeanLeafSize)},
		{"Leaf size std dev", fmt.Sprintf("%.3f", stats.StdDevLeafSize)},
	})
	t.Render()
	return nil
}

// VerifyAction checks indexed queries against brute force on random points around the mesh. Half
// the points use an unbounded threshold and half a threshold drawn from the mesh's size.
func VerifyAction(c *cli.Context) error {
	logger := newLogger(c)
	idx, err := loadIndex(c, logger)
	if err != nil {
		return err
	}

	samples := c.Int(verifyFlagSamples)
	if samples <= 0 {
		return errors.Errorf("--%s must be positive, got %d", verifyFlagSamples, samples)
	}
	tolerance := c.Float64(verifyFlagTolerance)

	bounds := idx.Bounds()
	diagonal := bounds.Max().Sub(bounds.Min()).Norm()
	pad := 0.1 * diagonal
	lower := bounds.Min().Sub(r3.Vector{X: pad, Y: pad, Z: pad})
	size := bounds.Max().Sub(bounds.Min()).Add(r3.Vector{X: 2 * pad, Y: 2 * pad, Z: 2 * pad})

	//nolint:gosec
	rng := rand.New(rand.NewSource(c.Int64(verifyFlagSeed)))
	points := make([]r3.Vector, samples)
	thresholds := make([]float64, samples)
	for i := range points {
		points[i] = r3.Vector{
			X: lower.X + size.X*rng.Float64(),
			Y: lower.Y + size.Y*rng.Float64(),
			Z: lower.Z + size.Z*rng.Float64(),
		}
		thresholds[i] = math.Inf(1)
		if i%2 == 1 {
			thresholds[i] = pad * rng.Float64()
		}
	}

	// Workers only record disagreements; they are logged once every query is done.
	type mismatch struct {
		index, bruteForce proximity.Result
	}
	mismatches := make([]*mismatch, samples)
	var g errgroup.Group
	g.SetLimit(max(c.Int(queryFlagWorkers), 1))
	for i := range points {
		g.Go(func() error {
			got := idx.Query(points[i], thresholds[i])
			expected := proximity.BruteForce(idx.Mesh(), points[i], thresholds[i])
			if got.Found != expected.Found || (got.Found && math.Abs(got.Distance-expected.Distance) > tolerance) {
				mismatches[i] = &mismatch{index: got, bruteForce: expected}
			}
			return nil
		})
	}
	//nolint:errcheck
	g.Wait()

	for i, m := range mismatches {
		if m == nil {
			continue
		}
		logger.Debugw("query disagrees with brute force",
			"point", formatPoint(points[i]),
			"threshold", thresholds[i],
			"index", m.index.Distance,
			"bruteForce", m.bruteForce.Distance,
		)
	}

	failed := lo.CountBy(mismatches, func(m *mismatch) bool { return m != nil })
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Mesh", "Triangles", "Samples", "Seed", "Mismatches"})
	t.AppendRow(table.Row{idx.Mesh().Label(), idx.Mesh().Len(), samples, c.Int64(verifyFlagSeed), failed})
	t.Render()

	if failed > 0 {
		return errors.Errorf("%d of %d queries disagree with brute force", failed, samples)
	}
	logger.Infof("all %d queries agree with brute force", samples)
	return nil
}
