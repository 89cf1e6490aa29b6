// Command homotopy checks diagram signatures and runs proof scenarios.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/homotopy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors have already been reported by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
