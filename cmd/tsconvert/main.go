// Package main provides the entry point for the tsconvert CLI.
package main

import (
	"os"

	"github.com/tskit-dev/tsconvert/internal/cli"
	"github.com/tskit-dev/tsconvert/internal/logging"
)

func main() {
	log := logging.NewConsoleLogger(os.Stderr)

	app := cli.New(log)
	if err := app.Execute(); err != nil {
		log.Error().Msgf("Error: %v", err)
		os.Exit(1)
	}
}
