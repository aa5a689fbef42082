// Package main is the schemafix command.
package main

import (
	"os"

	"github.com/leapstack-labs/schemafix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
