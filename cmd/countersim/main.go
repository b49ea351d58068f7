// Command countersim runs the counter contract simulator.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/countersim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
