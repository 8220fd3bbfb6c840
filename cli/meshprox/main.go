// Package main is the meshprox command itself.
package main

import (
	"os"

	"go.viam.com/meshprox/cli"
	"go.viam.com/meshprox/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.NewLogger("meshprox", os.Stderr).Fatal(err)
	}
}
