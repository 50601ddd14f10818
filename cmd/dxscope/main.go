// Package main is the entrypoint for the dxscope CLI.
// It delegates all command handling to the cli package.
package main

import (
	"os"

	"github.com/nyashahama/dx-scoping-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
