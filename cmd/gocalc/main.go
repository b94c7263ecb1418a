// Command gocalc is a command-line calculator with a symbolic and a numeric
// engine.
package main

import (
	"os"

	"github.com/njchilds90/gocalc/internal/logging"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		logging.PresentError(os.Stderr, "", err)
		os.Exit(1)
	}
}
