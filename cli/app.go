// Package cli contains the meshprox command line actions.
package cli

import (
	"io"
	"math"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagDebug = "debug"

	meshFlagPath        = "mesh"
	queryFlagMaxDist    = "max-distance"
	queryFlagPoint      = "point"
	queryFlagWorkers    = "workers"
	verifyFlagSamples   = "samples"
	verifyFlagSeed      = "seed"
	verifyFlagTolerance = "tolerance"
)

var meshFlag = &cli.StringFlag{
	Name:     meshFlagPath,
	Aliases:  []string{"m"},
	Required: true,
	Usage:    "load the mesh from `FILE` (.triangles, .tri, .txt, .ply or .stl)",
}

var workersFlag = &cli.IntFlag{
	Name:  queryFlagWorkers,
	Value: 4,
	Usage: "number of concurrent queries",
}

var app = &cli.App{
	Name:            "meshprox",
	Usage:           "nearest-point queries against triangle meshes",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "query",
			Usage:     "find the closest point on the mesh to each query point",
			UsageText: "meshprox query --mesh FILE --point x,y,z [--point x,y,z ...] [--max-distance D]",
			Flags: []cli.Flag{
				meshFlag,
				&cli.StringSliceFlag{
					Name:     queryFlagPoint,
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "query point as `x,y,z`, repeatable",
				},
				&cli.Float64Flag{
					Name:  queryFlagMaxDist,
					Value: math.Inf(1),
					Usage: "ignore surface points farther than this",
				},
				workersFlag,
			},
			Action: QueryAction,
		},
		{
			Name:   "stats",
			Usage:  "print statistics about the mesh's proximity index",
			Flags:  []cli.Flag{meshFlag},
			Action: StatsAction,
		},
		{
			Name:  "verify",
			Usage: "compare indexed queries against a brute force search on random points",
			Flags: []cli.Flag{
				meshFlag,
				&cli.IntFlag{
					Name:  verifyFlagSamples,
					Value: 1000,
					Usage: "number of random query points",
				},
				&cli.Int64Flag{
					Name:  verifyFlagSeed,
					Value: 1,
					Usage: "random seed for the query points",
				},
				&cli.Float64Flag{
					Name:  verifyFlagTolerance,
					Value: 1e-6,
					Usage: "largest allowed difference between the two distances",
				},
				workersFlag,
			},
			Action: VerifyAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
